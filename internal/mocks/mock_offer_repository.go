package mocks

import (
	"context"

	"github.com/you/offersvc/domain"
)

// MockOfferRepository implements domain.OfferRepository interface for testing
type MockOfferRepository struct {
	CreateFunc       func(ctx context.Context, offer *domain.Offer) error
	FindByIDFunc     func(ctx context.Context, id uint) (*domain.Offer, error)
	FindLatestFunc   func(ctx context.Context, carID, buyerID uint) (*domain.Offer, error)
	UpdateStatusFunc func(ctx context.Context, id uint, from, to domain.OfferStatus) (int64, error)
}

// NewMockOfferRepository creates a new MockOfferRepository with default behaviors
func NewMockOfferRepository() *MockOfferRepository {
	return &MockOfferRepository{}
}

// Create creates a new offer
func (m *MockOfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, offer)
	}
	// Default behavior: success
	return nil
}

// FindByID finds an offer by ID
func (m *MockOfferRepository) FindByID(ctx context.Context, id uint) (*domain.Offer, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrOfferNotFound
}

// FindLatest finds the most recent offer for a (car, buyer) pair
func (m *MockOfferRepository) FindLatest(ctx context.Context, carID, buyerID uint) (*domain.Offer, error) {
	if m.FindLatestFunc != nil {
		return m.FindLatestFunc(ctx, carID, buyerID)
	}
	// Default behavior: not found
	return nil, domain.ErrOfferNotFound
}

// UpdateStatus performs a conditional status transition
func (m *MockOfferRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.OfferStatus) (int64, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to)
	}
	// Default behavior: one row updated
	return 1, nil
}

// Compile-time interface compliance verification
var _ domain.OfferRepository = (*MockOfferRepository)(nil)
