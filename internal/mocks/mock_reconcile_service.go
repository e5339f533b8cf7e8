package mocks

import (
	"context"

	"github.com/you/offersvc/domain"
)

// MockReconcileService implements domain.ReconcileService interface for testing
type MockReconcileService struct {
	ReconcileFunc func(ctx context.Context, subjectID, phone string) (*domain.ReconcileResult, error)
}

// NewMockReconcileService creates a new MockReconcileService with default behaviors
func NewMockReconcileService() *MockReconcileService {
	return &MockReconcileService{}
}

// Reconcile returns the durable record for a verified identity
func (m *MockReconcileService) Reconcile(ctx context.Context, subjectID, phone string) (*domain.ReconcileResult, error) {
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(ctx, subjectID, phone)
	}
	// Default behavior: fresh record
	return &domain.ReconcileResult{
		IsExisting: false,
		Persisted:  true,
		User:       &domain.User{ID: 1, Name: "User", Phone: phone, IsVerified: true},
	}, nil
}

// Compile-time interface compliance verification
var _ domain.ReconcileService = (*MockReconcileService)(nil)
