package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/carscout/carscout/internal/entities"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T) *DbContext {
	dbCtx, err := NewDbContext(":memory:")
	assert.NoError(t, err)
	assert.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func Test_Listings_Upsert_NewListingSetsBothTimestamps(t *testing.T) {

	assert := assert.New(t)
	repo := NewListingsRepository(newTestContext(t).DB)

	stored, err := repo.Upsert(context.Background(), entities.Listing{
		ExternalID: "2741159001",
		Title:      "BMW 320d Touring",
		Price:      12500,
	})
	assert.NoError(err)
	assert.NotZero(stored.ID)
	assert.False(stored.FirstSeen.IsZero())
	assert.Equal(stored.FirstSeen, stored.LastSeen)
	assert.True(stored.IsAvailable)
}

func Test_Listings_Upsert_ReobservationNeverChangesFirstSeen(t *testing.T) {

	assert := assert.New(t)
	repo := NewListingsRepository(newTestContext(t).DB)

	first, err := repo.Upsert(context.Background(), entities.Listing{ExternalID: "x1", Title: "Opel Corsa"})
	assert.NoError(err)

	time.Sleep(10 * time.Millisecond)

	second, err := repo.Upsert(context.Background(), entities.Listing{
		ExternalID: "x1",
		Title:      "Opel Corsa (edited)",
		Price:      999,
	})
	assert.NoError(err)

	assert.Equal(first.ID, second.ID)
	assert.WithinDuration(first.FirstSeen, second.FirstSeen, time.Millisecond)
	assert.False(second.LastSeen.Before(first.LastSeen))
	// re-observation leaves all other fields untouched
	assert.Equal("Opel Corsa", second.Title)
	assert.Equal(0, second.Price)
}

func Test_Listings_SentRecords_AtMostOnePerAlertListingPair(t *testing.T) {

	assert := assert.New(t)
	repo := NewListingsRepository(newTestContext(t).DB)

	sent, err := repo.IsSentToAlert(context.Background(), 1, 42)
	assert.NoError(err)
	assert.False(sent)

	assert.NoError(repo.RecordAsSent(context.Background(), 1, 42))

	sent, err = repo.IsSentToAlert(context.Background(), 1, 42)
	assert.NoError(err)
	assert.True(sent)

	// the unique index rejects a second record for the same pair
	assert.Error(repo.RecordAsSent(context.Background(), 1, 42))

	// a different alert for the same listing is a different pair
	assert.NoError(repo.RecordAsSent(context.Background(), 2, 42))
}

func Test_Listings_RemoveUnseen_DropsStaleListingsAndTheirSentRecords(t *testing.T) {

	assert := assert.New(t)
	dbCtx := newTestContext(t)
	repo := NewListingsRepository(dbCtx.DB)

	stale, err := repo.Upsert(context.Background(), entities.Listing{ExternalID: "old"})
	assert.NoError(err)
	assert.NoError(repo.RecordAsSent(context.Background(), 1, stale.ID))

	// age the stale row past the cutoff
	assert.NoError(dbCtx.DB.Model(&entities.Listing{}).Where("id = ?", stale.ID).
		Update("last_seen", time.Now().UTC().Add(-48*time.Hour)).Error)

	_, err = repo.Upsert(context.Background(), entities.Listing{ExternalID: "new"})
	assert.NoError(err)

	removed, err := repo.RemoveUnseen(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	assert.NoError(err)
	assert.EqualValues(1, removed)

	var listings int64
	assert.NoError(dbCtx.DB.Model(&entities.Listing{}).Count(&listings).Error)
	assert.EqualValues(1, listings)

	var sentRecords int64
	assert.NoError(dbCtx.DB.Model(&entities.SentListing{}).Count(&sentRecords).Error)
	assert.EqualValues(0, sentRecords)
}
