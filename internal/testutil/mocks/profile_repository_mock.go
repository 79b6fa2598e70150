package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/repository"
)

// MockProfileRepository is a mock implementation of repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.StoredProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredProfile), args.Error(1)
}

func (m *MockProfileRepository) GetByUsername(ctx context.Context, username string) (*models.StoredProfile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredProfile), args.Error(1)
}

func (m *MockProfileRepository) UsernameOwner(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

func (m *MockProfileRepository) LinkByShortCode(ctx context.Context, code string) (*models.StoredLink, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredLink), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, changes repository.ProfileChanges) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

func (m *MockProfileRepository) DeleteSocialLink(ctx context.Context, profileID, id string) (bool, error) {
	args := m.Called(ctx, profileID, id)
	return args.Bool(0), args.Error(1)
}
