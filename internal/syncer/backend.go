package syncer

import (
	"context"

	"github.com/xrclskn/biolink/internal/models"
)

// Backend is the persistence boundary the engine talks to. Errors should be
// *errors.AppError values so callers can tell not-found and conflicts apart
// from transport failures.
type Backend interface {
	GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error)
	SaveProfile(ctx context.Context, req models.SaveRequest) (*models.SaveResponse, error)
	DeleteSocialLink(ctx context.Context, id string) error
	CheckUsername(ctx context.Context, candidate string) (bool, error)
}
