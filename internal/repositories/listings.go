package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/carscout/carscout/internal/entities"
	"gorm.io/gorm"
)

type Listings struct {
	db *gorm.DB
}

func NewListingsRepository(db *gorm.DB) *Listings {
	return &Listings{db: db}
}

// Upsert inserts a newly observed listing or, for a known external id, only
// advances last_seen. first_seen is never touched after the initial insert.
func (r *Listings) Upsert(ctx context.Context, candidate entities.Listing) (*entities.Listing, error) {

	now := time.Now().UTC()

	var existing entities.Listing
	err := r.db.WithContext(ctx).First(&existing, "external_id = ?", candidate.ExternalID).Error

	if err == nil {
		updateErr := r.db.WithContext(ctx).Model(&entities.Listing{}).
			Where("id = ?", existing.ID).
			Update("last_seen", now).Error
		if updateErr != nil {
			return nil, updateErr
		}
		existing.LastSeen = now
		return &existing, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	candidate.FirstSeen = now
	candidate.LastSeen = now
	candidate.IsAvailable = true
	if err = r.db.WithContext(ctx).Create(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *Listings) IsSentToAlert(ctx context.Context, alertID int, listingID int) (bool, error) {
	var sent entities.SentListing
	err := r.db.WithContext(ctx).
		Where("alert_id = ? AND listing_id = ?", alertID, listingID).
		First(&sent).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Listings) RecordAsSent(ctx context.Context, alertID int, listingID int) error {
	return r.db.WithContext(ctx).Create(&entities.SentListing{
		AlertID:   alertID,
		ListingID: listingID,
		SentAt:    time.Now().UTC(),
	}).Error
}

// RemoveUnseen drops listings last observed before the cutoff, together with
// their sent records.
func (r *Listings) RemoveUnseen(ctx context.Context, cutoff time.Time) (int64, error) {

	err := r.db.WithContext(ctx).
		Exec("DELETE FROM sent_listings WHERE listing_id IN (SELECT id FROM listings WHERE last_seen < ?)", cutoff).
		Error
	if err != nil {
		return 0, err
	}

	res := r.db.WithContext(ctx).Delete(&entities.Listing{}, "last_seen < ?", cutoff)
	return res.RowsAffected, res.Error
}
