package mocks

import (
	"context"

	"github.com/you/offersvc/domain"
)

// MockVerificationService implements domain.VerificationService interface for testing
type MockVerificationService struct {
	SendCodeFunc   func(ctx context.Context, phone string) error
	VerifyCodeFunc func(ctx context.Context, phone, code string) (string, error)
	CancelFunc     func(phone string)
}

// NewMockVerificationService creates a new MockVerificationService with default behaviors
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

// SendCode sends a verification code
func (m *MockVerificationService) SendCode(ctx context.Context, phone string) error {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(ctx, phone)
	}
	// Default behavior: success
	return nil
}

// VerifyCode verifies a code and returns the subject id
func (m *MockVerificationService) VerifyCode(ctx context.Context, phone, code string) (string, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, phone, code)
	}
	// Default behavior: verified
	return "subject-" + phone, nil
}

// Cancel resets a session
func (m *MockVerificationService) Cancel(phone string) {
	if m.CancelFunc != nil {
		m.CancelFunc(phone)
	}
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*MockVerificationService)(nil)
