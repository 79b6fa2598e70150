package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xrclskn/biolink/internal/models"
)

// MockBackend is a mock implementation of syncer.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProfileResponse), args.Error(1)
}

func (m *MockBackend) SaveProfile(ctx context.Context, req models.SaveRequest) (*models.SaveResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SaveResponse), args.Error(1)
}

func (m *MockBackend) DeleteSocialLink(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) CheckUsername(ctx context.Context, candidate string) (bool, error) {
	args := m.Called(ctx, candidate)
	return args.Bool(0), args.Error(1)
}
