package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type listingCleanupRepository interface {
	RemoveUnseen(ctx context.Context, cutoff time.Time) (int64, error)
}

// ListingsCleaner removes listings not observed for the retention period,
// once a day at midnight.
type ListingsCleaner struct {
	listings        listingCleanupRepository
	cron            *cron.Cron
	retentionInDays int
}

func NewListingsCleaner(listings listingCleanupRepository, retentionInDays int) (*ListingsCleaner, error) {

	if retentionInDays <= 0 {
		return nil, errors.New("retention in days must be greater than zero")
	}

	lc := &ListingsCleaner{
		listings:        listings,
		cron:            cron.New(),
		retentionInDays: retentionInDays,
	}

	_, err := lc.cron.AddFunc("0 0 * * *", lc.cleanUnseenListings)
	if err != nil {
		return nil, err
	}

	lc.cron.Start()
	log.Infof("listings cleaner started, retention in days: %d", lc.retentionInDays)
	return lc, nil
}

func (lc *ListingsCleaner) Stop() {
	lc.cron.Stop()
}

func (lc *ListingsCleaner) cleanUnseenListings() {
	cutoff := time.Now().Add(-time.Duration(lc.retentionInDays) * 24 * time.Hour)
	rowsAffected, err := lc.listings.RemoveUnseen(context.Background(), cutoff)
	if err != nil {
		log.Errorf("Failed to clean unseen listings: %v", err)
	} else {
		log.Infof("Unseen listings were cleaned at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}
