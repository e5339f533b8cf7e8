package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/offersvc/domain"
)

// ListingRepositoryImpl implements domain.ListingRepository using GORM.
// The cars table is written by the catalog service; this repository only
// reads the fields the offer flow needs.
type ListingRepositoryImpl struct {
	db *gorm.DB
}

// DBListing represents the database model for Listing
type DBListing struct {
	ID          uint   `gorm:"primaryKey"`
	SellerID    uint   `gorm:"index"`
	Title       string `gorm:"size:255"`
	AskingPrice int64
	Sold        bool `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (DBListing) TableName() string {
	return "cars"
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) domain.ListingRepository {
	return &ListingRepositoryImpl{db: db}
}

// FindByID implements domain.ListingRepository
func (r *ListingRepositoryImpl) FindByID(ctx context.Context, carID uint) (*domain.Listing, error) {
	var dbListing DBListing
	err := r.db.WithContext(ctx).Where("id = ?", carID).First(&dbListing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}

	return &domain.Listing{
		ID:          dbListing.ID,
		SellerID:    dbListing.SellerID,
		Title:       dbListing.Title,
		AskingPrice: dbListing.AskingPrice,
		Sold:        dbListing.Sold,
	}, nil
}
