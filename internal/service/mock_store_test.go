package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-society-hub/internal/model"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Register(ctx context.Context, u model.NewUser) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCredentialStore) LookupCredential(ctx context.Context, username string, clientIP string, userAgent string) (model.CredentialLookup, error) {
	args := m.Called(ctx, username, clientIP, userAgent)
	return args.Get(0).(model.CredentialLookup), args.Error(1)
}

func (m *MockCredentialStore) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCredentialStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCredentialStore) Update(ctx context.Context, userID int64, email *string, phone *string) error {
	args := m.Called(ctx, userID, email, phone)
	return args.Error(0)
}

func (m *MockCredentialStore) ChangePassword(ctx context.Context, userID int64, newHash []byte, newSalt []byte) error {
	args := m.Called(ctx, userID, newHash, newSalt)
	return args.Error(0)
}
