package services

import (
	"context"
	"time"

	"github.com/carscout/carscout/internal/clients/kleinanzeigen"
	"github.com/carscout/carscout/internal/logger"
	"github.com/carscout/carscout/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type pageFetcher interface {
	FetchPage(ctx context.Context, searchURL string, page int) ([]byte, error)
}

// ListingsRetriever runs the fetch+parse loop for one search. An empty page
// is the end-of-results signal; there is no total count to rely on.
type ListingsRetriever struct {
	fetcher pageFetcher
	parser  kleinanzeigen.PageParser
}

func NewListingsRetriever(fetcher pageFetcher, parser kleinanzeigen.PageParser) *ListingsRetriever {
	return &ListingsRetriever{fetcher: fetcher, parser: parser}
}

// Retrieve fetches up to maxPages result pages for the criteria. A fetch
// failure aborts only the remaining pages: listings already collected are
// returned and the error stays at the log level, so a broken page never
// raises past the calling alert.
func (r *ListingsRetriever) Retrieve(ctx context.Context, criteria kleinanzeigen.SearchCriteria,
	maxPages int) ([]kleinanzeigen.Listing, error) {

	searchURL := criteria.URL()
	var listings []kleinanzeigen.Listing

	for page := 1; page <= maxPages; page++ {

		start := time.Now()
		body, err := r.fetcher.FetchPage(ctx, searchURL, page)
		metrics.CycleStepDuration.WithLabelValues("fetch").Observe(time.Since(start).Seconds())

		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeScraper).
				Errorf("failed to fetch page %d of %v: %v", page, searchURL, err)
			break
		}

		result, err := r.parser.Parse(body)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeParse).
				Errorf("failed to parse page %d of %v: %v", page, searchURL, err)
			break
		}

		if result.Dropped > 0 {
			metrics.ParseDroppedCounter.Add(float64(result.Dropped))
			log.Warnf("dropped %d malformed elements on page %d of %v", result.Dropped, page, searchURL)
		}

		if len(result.Listings) == 0 {
			break
		}

		listings = append(listings, result.Listings...)
	}

	return listings, nil
}
