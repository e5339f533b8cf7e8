package mocks

import (
	"context"

	"github.com/you/offersvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	LoginWithPhoneFunc func(ctx context.Context, phone, code string) (*domain.AuthResult, error)
	LogoutFunc         func(ctx context.Context, sessionID string) error
	GetUserProfileFunc func(ctx context.Context, userID uint) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// LoginWithPhone performs a phone login
func (m *MockAuthService) LoginWithPhone(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	if m.LoginWithPhoneFunc != nil {
		return m.LoginWithPhoneFunc(ctx, phone, code)
	}
	// Default behavior: fresh user logged in
	user := &domain.User{ID: 1, Name: "User", Phone: phone, IsVerified: true}
	return &domain.AuthResult{
		User:         user,
		AccessToken:  "access_token",
		RefreshToken: "refresh_token",
		SessionID:    "session_1",
		ExpiresIn:    900,
	}, nil
}

// Logout deletes a session
func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	// Default behavior: success
	return nil
}

// GetUserProfile returns a user by id
func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
