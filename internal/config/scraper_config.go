package config

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ScraperConfig carries every externally supplied knob of the polling
// pipeline; none of these values are baked into the pipeline logic.
type ScraperConfig struct {
	// PolitenessDelay is the minimum spacing between outbound requests.
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" validate:"gt=0"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	// PagesPerCycle bounds result page depth per alert per cycle.
	PagesPerCycle int `mapstructure:"pages_per_cycle" validate:"gte=1"`
	// FreshnessWindow is the maximum age of first_seen for a listing to
	// still be eligible for notification.
	FreshnessWindow time.Duration `mapstructure:"freshness_window" validate:"gt=0"`
	CheckInterval   time.Duration `mapstructure:"check_interval" validate:"gt=0"`
	AlertDelay      time.Duration `mapstructure:"alert_delay" validate:"gte=0"`
	RetentionInDays int           `mapstructure:"retention_days" validate:"gte=1"`
}

func (config ScraperConfig) validate() error {
	err := validator.New().Struct(config)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return validationErrors
		}
		return err
	}
	return nil
}

func (config ScraperConfig) bindEnvironmentVariables() error {
	var errs []error

	binds := map[string]string{
		"scraper.politeness_delay": "POLITENESS_DELAY",
		"scraper.request_timeout":  "REQUEST_TIMEOUT",
		"scraper.pages_per_cycle":  "PAGES_PER_CYCLE",
		"scraper.freshness_window": "FRESHNESS_WINDOW",
		"scraper.check_interval":   "CHECK_INTERVAL",
		"scraper.alert_delay":      "ALERT_DELAY",
		"scraper.retention_days":   "RETENTION_DAYS",
	}

	for key, env := range binds {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
