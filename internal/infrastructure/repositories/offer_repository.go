package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/offersvc/domain"
)

// OfferRepositoryImpl implements domain.OfferRepository using GORM
type OfferRepositoryImpl struct {
	db *gorm.DB
}

// DBOffer represents the database model for Offer
type DBOffer struct {
	ID          uint `gorm:"primaryKey"`
	CarID       uint `gorm:"index:idx_offers_car_buyer,priority:1"`
	BuyerID     uint `gorm:"index:idx_offers_car_buyer,priority:2"`
	SellerID    uint `gorm:"index"`
	Amount      int64
	AskingPrice int64
	Message     string    `gorm:"size:1024"`
	Status      string    `gorm:"index;size:16"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBOffer) TableName() string {
	return "offers"
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *gorm.DB) domain.OfferRepository {
	return &OfferRepositoryImpl{db: db}
}

// Create implements domain.OfferRepository
func (r *OfferRepositoryImpl) Create(ctx context.Context, offer *domain.Offer) error {
	dbOffer := r.domainToDB(offer)
	if err := r.db.WithContext(ctx).Create(dbOffer).Error; err != nil {
		return err
	}
	offer.ID = dbOffer.ID
	offer.CreatedAt = dbOffer.CreatedAt
	return nil
}

// FindByID implements domain.OfferRepository
func (r *OfferRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Offer, error) {
	var dbOffer DBOffer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbOffer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbOffer), nil
}

// FindLatest implements domain.OfferRepository
func (r *OfferRepositoryImpl) FindLatest(ctx context.Context, carID, buyerID uint) (*domain.Offer, error) {
	var dbOffer DBOffer
	err := r.db.WithContext(ctx).
		Where("car_id = ? AND buyer_id = ?", carID, buyerID).
		Order("created_at DESC, id DESC").
		First(&dbOffer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbOffer), nil
}

// UpdateStatus implements domain.OfferRepository. The WHERE clause on the
// current status makes the transition atomic: of two concurrent
// responders, exactly one observes a nonzero row count.
func (r *OfferRepositoryImpl) UpdateStatus(ctx context.Context, id uint, from, to domain.OfferStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&DBOffer{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *OfferRepositoryImpl) domainToDB(offer *domain.Offer) *DBOffer {
	return &DBOffer{
		ID:          offer.ID,
		CarID:       offer.CarID,
		BuyerID:     offer.BuyerID,
		SellerID:    offer.SellerID,
		Amount:      offer.Amount,
		AskingPrice: offer.AskingPrice,
		Message:     offer.Message,
		Status:      string(offer.Status),
	}
}

func (r *OfferRepositoryImpl) dbToDomain(dbOffer *DBOffer) *domain.Offer {
	return &domain.Offer{
		ID:          dbOffer.ID,
		CarID:       dbOffer.CarID,
		BuyerID:     dbOffer.BuyerID,
		SellerID:    dbOffer.SellerID,
		Amount:      dbOffer.Amount,
		AskingPrice: dbOffer.AskingPrice,
		Message:     dbOffer.Message,
		Status:      domain.OfferStatus(dbOffer.Status),
		CreatedAt:   dbOffer.CreatedAt,
	}
}
