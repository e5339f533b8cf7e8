package mocks

import (
	"context"
	"sync/atomic"

	"github.com/you/offersvc/domain"
)

// MockIdentityProvider implements domain.IdentityProvider for testing.
// Call counters are atomic so tests can assert on them across goroutines.
type MockIdentityProvider struct {
	SendOneTimeCodeFunc   func(ctx context.Context, phoneE164 string) error
	VerifyOneTimeCodeFunc func(ctx context.Context, phoneE164, code string) (string, error)

	sendCalls   atomic.Int64
	verifyCalls atomic.Int64
}

// NewMockIdentityProvider creates a new MockIdentityProvider with default behaviors
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{}
}

// SendOneTimeCode sends a one-time code
func (m *MockIdentityProvider) SendOneTimeCode(ctx context.Context, phoneE164 string) error {
	m.sendCalls.Add(1)
	if m.SendOneTimeCodeFunc != nil {
		return m.SendOneTimeCodeFunc(ctx, phoneE164)
	}
	// Default behavior: success
	return nil
}

// VerifyOneTimeCode checks a one-time code
func (m *MockIdentityProvider) VerifyOneTimeCode(ctx context.Context, phoneE164, code string) (string, error) {
	m.verifyCalls.Add(1)
	if m.VerifyOneTimeCodeFunc != nil {
		return m.VerifyOneTimeCodeFunc(ctx, phoneE164, code)
	}
	// Default behavior: approved
	return "subject-" + phoneE164, nil
}

// SendCalls reports how many times SendOneTimeCode was invoked
func (m *MockIdentityProvider) SendCalls() int64 { return m.sendCalls.Load() }

// VerifyCalls reports how many times VerifyOneTimeCode was invoked
func (m *MockIdentityProvider) VerifyCalls() int64 { return m.verifyCalls.Load() }

// Compile-time interface compliance verification
var _ domain.IdentityProvider = (*MockIdentityProvider)(nil)
