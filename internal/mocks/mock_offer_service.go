package mocks

import (
	"context"

	"github.com/you/offersvc/domain"
)

// MockOfferService implements domain.OfferService interface for testing
type MockOfferService struct {
	SubmitFunc  func(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error)
	RespondFunc func(ctx context.Context, offerID, actingUserID uint, decision domain.OfferDecision) (*domain.Offer, error)
	StatusFunc  func(ctx context.Context, carID, buyerID uint) (domain.OfferStatus, error)
	ActionsFunc func(ctx context.Context, carID, buyerID uint) (domain.ActionSet, error)
}

// NewMockOfferService creates a new MockOfferService with default behaviors
func NewMockOfferService() *MockOfferService {
	return &MockOfferService{}
}

// Submit submits an offer
func (m *MockOfferService) Submit(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, carID, buyerID, amount, message)
	}
	// Default behavior: pending offer
	return &domain.Offer{ID: 1, CarID: carID, BuyerID: buyerID, Amount: amount, Message: message, Status: domain.OfferStatusPending}, nil
}

// Respond resolves a pending offer
func (m *MockOfferService) Respond(ctx context.Context, offerID, actingUserID uint, decision domain.OfferDecision) (*domain.Offer, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, offerID, actingUserID, decision)
	}
	// Default behavior: accepted
	return &domain.Offer{ID: offerID, SellerID: actingUserID, Status: domain.OfferStatusAccepted}, nil
}

// Status returns the latest offer status
func (m *MockOfferService) Status(ctx context.Context, carID, buyerID uint) (domain.OfferStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, carID, buyerID)
	}
	// Default behavior: no offer
	return domain.OfferStatusNone, nil
}

// Actions returns the derived action gate
func (m *MockOfferService) Actions(ctx context.Context, carID, buyerID uint) (domain.ActionSet, error) {
	if m.ActionsFunc != nil {
		return m.ActionsFunc(ctx, carID, buyerID)
	}
	status, err := m.Status(ctx, carID, buyerID)
	if err != nil {
		return domain.ActionSet{}, err
	}
	return domain.AvailableActions(status), nil
}

// Compile-time interface compliance verification
var _ domain.OfferService = (*MockOfferService)(nil)
