package mocks

import (
	"context"

	"github.com/you/offersvc/domain"
)

// MockListingRepository implements domain.ListingRepository interface for testing
type MockListingRepository struct {
	FindByIDFunc func(ctx context.Context, carID uint) (*domain.Listing, error)
}

// NewMockListingRepository creates a new MockListingRepository with default behaviors
func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{}
}

// FindByID finds a listing by ID
func (m *MockListingRepository) FindByID(ctx context.Context, carID uint) (*domain.Listing, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, carID)
	}
	// Default behavior: not found
	return nil, domain.ErrListingNotFound
}

// Compile-time interface compliance verification
var _ domain.ListingRepository = (*MockListingRepository)(nil)
