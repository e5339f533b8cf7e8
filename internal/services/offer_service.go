package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/you/offersvc/domain"
)

// OfferServiceImpl implements domain.OfferService
type OfferServiceImpl struct {
	offerRepo   domain.OfferRepository
	listingRepo domain.ListingRepository
	audit       domain.AuditLogger
	logger      *zap.Logger
}

// NewOfferService creates a new offer service
func NewOfferService(offerRepo domain.OfferRepository, listingRepo domain.ListingRepository, audit domain.AuditLogger, logger *zap.Logger) domain.OfferService {
	return &OfferServiceImpl{
		offerRepo:   offerRepo,
		listingRepo: listingRepo,
		audit:       audit,
		logger:      logger,
	}
}

// Submit implements domain.OfferService. The asking price is snapshotted
// from the listing at submission time. A blocked classification vetoes
// the submission before anything is written; a store failure here is a
// hard failure, never degraded, since a lost offer write is not
// acceptable.
func (s *OfferServiceImpl) Submit(ctx context.Context, carID, buyerID uint, amount int64, message string) (*domain.Offer, error) {
	listing, err := s.listingRepo.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	if listing.SellerID == buyerID {
		return nil, domain.ErrSelfOffer
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	// Same classifier the entry surface shows live; the two can never
	// disagree.
	assessment := domain.ClassifyPrice(listing.AskingPrice, amount)
	if assessment.Class == domain.PriceBlocked {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OfferBlockedEvent).
			WithUser(buyerID).WithOffer(0, carID).
			WithMetadata("percent_below_asking", assessment.PercentBelowAsking))
		return nil, &domain.OfferBlockedError{PercentBelowAsking: assessment.PercentBelowAsking}
	}

	offer := &domain.Offer{
		CarID:       carID,
		BuyerID:     buyerID,
		SellerID:    listing.SellerID,
		Amount:      amount,
		AskingPrice: listing.AskingPrice,
		Message:     message,
		Status:      domain.OfferStatusPending,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OfferSubmittedEvent).
		WithUser(buyerID).WithOffer(offer.ID, carID).
		WithMetadata("amount", amount))
	return offer, nil
}

// Respond implements domain.OfferService. Authorization is checked at
// transition time against both the offer's seller snapshot and the
// listing's current owner. The transition itself is a conditional
// single-row update; a lost race surfaces as ErrOfferResolved.
func (s *OfferServiceImpl) Respond(ctx context.Context, offerID, actingUserID uint, decision domain.OfferDecision) (*domain.Offer, error) {
	var target domain.OfferStatus
	switch decision {
	case domain.DecisionAccept:
		target = domain.OfferStatusAccepted
	case domain.DecisionReject:
		target = domain.OfferStatusRejected
	default:
		return nil, fmt.Errorf("unknown offer decision %q", decision)
	}

	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if actingUserID != offer.SellerID {
		return nil, domain.ErrNotSeller
	}

	listing, err := s.listingRepo.FindByID(ctx, offer.CarID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actingUserID {
		// Ownership changed since submission; the old seller may not
		// resolve the offer.
		return nil, domain.ErrNotSeller
	}

	if offer.Status != domain.OfferStatusPending {
		return nil, domain.ErrOfferResolved
	}

	affected, err := s.offerRepo.UpdateStatus(ctx, offerID, domain.OfferStatusPending, target)
	if err != nil {
		return nil, fmt.Errorf("failed to update offer status: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrOfferResolved
	}

	offer.Status = target

	eventType := domain.OfferAcceptedEvent
	if target == domain.OfferStatusRejected {
		eventType = domain.OfferRejectedEvent
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(eventType).
		WithUser(actingUserID).WithOffer(offer.ID, offer.CarID))

	return offer, nil
}

// Status implements domain.OfferService. This is a point-in-time read;
// it may be stale relative to a concurrent transition by the other party.
func (s *OfferServiceImpl) Status(ctx context.Context, carID, buyerID uint) (domain.OfferStatus, error) {
	offer, err := s.offerRepo.FindLatest(ctx, carID, buyerID)
	if err != nil {
		if errors.Is(err, domain.ErrOfferNotFound) {
			return domain.OfferStatusNone, nil
		}
		return domain.OfferStatusNone, err
	}
	return offer.Status, nil
}

// Actions implements domain.OfferService
func (s *OfferServiceImpl) Actions(ctx context.Context, carID, buyerID uint) (domain.ActionSet, error) {
	status, err := s.Status(ctx, carID, buyerID)
	if err != nil {
		return domain.ActionSet{}, err
	}
	return domain.AvailableActions(status), nil
}
