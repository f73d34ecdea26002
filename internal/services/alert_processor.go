package services

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/carscout/carscout/internal/clients/kleinanzeigen"
	"github.com/carscout/carscout/internal/entities"
	"github.com/carscout/carscout/internal/events"
	"github.com/carscout/carscout/internal/logger"
	"github.com/carscout/carscout/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type alertRepository interface {
	GetActive(ctx context.Context) ([]entities.SearchAlert, error)
	UpdateLastCheck(ctx context.Context, alertID int, checkedAt time.Time) error
}

type listingRepository interface {
	Upsert(ctx context.Context, candidate entities.Listing) (*entities.Listing, error)
	IsSentToAlert(ctx context.Context, alertID int, listingID int) (bool, error)
	RecordAsSent(ctx context.Context, alertID int, listingID int) error
}

type listingsRetriever interface {
	Retrieve(ctx context.Context, criteria kleinanzeigen.SearchCriteria, maxPages int) ([]kleinanzeigen.Listing, error)
}

type userDirectory interface {
	NotificationsEnabled(ctx context.Context, telegramID int64) (bool, error)
}

// Notifier delivers one listing to one chat. An error means the listing was
// not delivered and must stay eligible for the next cycle.
type Notifier interface {
	SendListing(chatID int64, listing entities.Listing) error
}

type ProcessorOptions struct {
	FreshnessWindow time.Duration
	PagesPerCycle   int
	AlertDelay      time.Duration
}

// AlertProcessor walks all active alerts once per cycle, sequentially, and
// notifies each owner at most once per (alert, listing) pair. The sent record
// is written only after a successful dispatch, so a failed send is retried on
// the next cycle rather than silently swallowed.
type AlertProcessor struct {
	alerts    alertRepository
	listings  listingRepository
	retriever listingsRetriever
	users     userDirectory
	notifier  Notifier
	options   ProcessorOptions
	deleted   sync.Map
}

func NewAlertProcessor(bus EventBus.Bus, alerts alertRepository, listings listingRepository,
	retriever listingsRetriever, users userDirectory, notifier Notifier,
	options ProcessorOptions) *AlertProcessor {

	processor := &AlertProcessor{
		alerts:    alerts,
		listings:  listings,
		retriever: retriever,
		users:     users,
		notifier:  notifier,
		options:   options,
	}

	err := bus.Subscribe(events.AlertDeletedTopic, func(event events.AlertDeleted) {
		processor.deleted.Store(event.AlertID, struct{}{})
	})
	if err != nil {
		log.Errorf("failed to subscribe to %v: %v", events.AlertDeletedTopic, err)
	}

	return processor
}

// RunCycle processes every active alert once. A failure on one alert or one
// listing never aborts the others; only a failed alerts query ends the cycle
// early.
func (p *AlertProcessor) RunCycle(ctx context.Context) error {

	cycleStart := time.Now()
	defer func() {
		metrics.CycleDuration.Observe(time.Since(cycleStart).Seconds())
	}()

	p.deleted.Range(func(key, _ any) bool {
		p.deleted.Delete(key)
		return true
	})

	alerts, err := p.alerts.GetActive(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to get active alerts: %v", err)
		return err
	}

	log.Infof("starting cycle over %d active alerts", len(alerts))

	for i, alert := range alerts {

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, gone := p.deleted.Load(alert.ID); gone {
			log.Debugf("skipping alert %d removed mid-cycle", alert.ID)
			continue
		}

		p.processAlert(ctx, alert)

		if err = p.alerts.UpdateLastCheck(ctx, alert.ID, time.Now().UTC()); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to update last check of alert %d: %v", alert.ID, err)
		}

		if i < len(alerts)-1 {
			time.Sleep(p.options.AlertDelay)
		}
	}

	log.Infof("cycle finished in %v", time.Since(cycleStart).Round(time.Millisecond))
	return nil
}

func (p *AlertProcessor) processAlert(ctx context.Context, alert entities.SearchAlert) {

	found, err := p.retriever.Retrieve(ctx, toCriteria(alert), p.options.PagesPerCycle)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeScraper).
			Errorf("failed to retrieve listings for alert %d: %v", alert.ID, err)
		return
	}

	candidates := lo.Map(found, func(listing kleinanzeigen.Listing, _ int) entities.Listing {
		return toEntity(listing)
	})

	sent := 0
	for _, candidate := range candidates {
		outcome, err := p.processListing(ctx, alert, candidate)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to process listing %v for alert %d: %v", candidate.ExternalID, alert.ID, err)
			return
		}
		if outcome {
			sent++
		}
	}

	log.Debugf("alert %d: %d listings retrieved, %d notifications sent", alert.ID, len(candidates), sent)
}

// processListing runs one listing through the dedup pipeline. The returned
// error covers persistence failures only; a failed dispatch is logged and
// reported as "not sent", leaving the pair unrecorded.
func (p *AlertProcessor) processListing(ctx context.Context, alert entities.SearchAlert,
	candidate entities.Listing) (bool, error) {

	metrics.ListingsProcessedCounter.Inc()

	stored, err := p.listings.Upsert(ctx, candidate)
	if err != nil {
		return false, err
	}

	if time.Since(stored.FirstSeen) > p.options.FreshnessWindow {
		return false, nil
	}

	alreadySent, err := p.listings.IsSentToAlert(ctx, alert.ID, stored.ID)
	if err != nil {
		return false, err
	}
	if alreadySent {
		return false, nil
	}

	enabled, err := p.users.NotificationsEnabled(ctx, alert.UserID)
	if err != nil {
		return false, err
	}
	if !enabled {
		return false, nil
	}

	if err = p.notifier.SendListing(alert.UserID, *stored); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("failed to send listing %v to chat %d: %v", stored.ExternalID, alert.UserID, err)
		return false, nil
	}

	metrics.NotificationsSentCounter.Inc()

	if err = p.listings.RecordAsSent(ctx, alert.ID, stored.ID); err != nil {
		return false, err
	}
	return true, nil
}

func toCriteria(alert entities.SearchAlert) kleinanzeigen.SearchCriteria {
	return kleinanzeigen.SearchCriteria{
		Brand:      alert.Brand,
		MinPrice:   alert.MinPrice,
		MaxPrice:   alert.MaxPrice,
		Location:   alert.Location,
		Radius:     alert.Radius,
		MinYear:    alert.MinYear,
		MaxMileage: alert.MaxMileage,
	}
}

func toEntity(listing kleinanzeigen.Listing) entities.Listing {
	return entities.Listing{
		ExternalID:  listing.ID,
		Title:       listing.Title,
		Price:       listing.Price,
		Location:    listing.Location,
		DatePosted:  listing.Date,
		Description: listing.Description,
		URL:         listing.URL,
		ImageURL:    listing.ImageURL,
		Mileage:     listing.Mileage,
		Year:        listing.Year,
		FuelType:    listing.FuelType,
	}
}
