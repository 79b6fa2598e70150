package repository

import (
	"context"

	"github.com/xrclskn/biolink/internal/models"
)

// ProfileChanges is one save applied atomically. Links lists only inserted
// or edited links; SocialLinks is the complete new social list.
type ProfileChanges struct {
	Profile       models.StoredProfile
	Create        bool
	Links         []models.StoredLink
	DeleteLinkIDs []string
	// LinkOrder, when set, holds every link id in display order.
	LinkOrder   []string
	SocialLinks []models.StoredSocialLink
}

// ProfileRepository handles profile data access
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.StoredProfile, error)
	GetByUsername(ctx context.Context, username string) (*models.StoredProfile, error)
	UsernameOwner(ctx context.Context, username string) (string, error)
	LinkByShortCode(ctx context.Context, code string) (*models.StoredLink, error)
	Save(ctx context.Context, changes ProfileChanges) error
	DeleteSocialLink(ctx context.Context, profileID, id string) (bool, error)
}
