package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {

	os.Setenv("MODE", "test")
	os.Setenv("TG_TOKEN", "overrideToken")
	os.Setenv("DB_CONNECTION_STRING", "override.db")
	os.Setenv("POLITENESS_DELAY", "7s")
	os.Setenv("FRESHNESS_WINDOW", "4h")
	os.Setenv("CHECK_INTERVAL", "15m")
	os.Setenv("PAGES_PER_CYCLE", "2")
	os.Setenv("RETENTION_DAYS", "14")
	os.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Get()

	assert.Equal(t, "overrideToken", cfg.Bot.Token)
	assert.Equal(t, "override.db", cfg.DB.ConnectionString)
	assert.Equal(t, 7*time.Second, cfg.Scraper.PolitenessDelay)
	assert.Equal(t, 4*time.Hour, cfg.Scraper.FreshnessWindow)
	assert.Equal(t, 15*time.Minute, cfg.Scraper.CheckInterval)
	assert.Equal(t, 2, cfg.Scraper.PagesPerCycle)
	assert.Equal(t, 14, cfg.Scraper.RetentionInDays)
	assert.Equal(t, LevelDebug, cfg.Logger.LogLevel)
}

func Test_ScraperConfig_Validate_RejectsZeroDelays(t *testing.T) {

	cfg := ScraperConfig{
		PolitenessDelay: 0,
		RequestTimeout:  30 * time.Second,
		PagesPerCycle:   1,
		FreshnessWindow: 2 * time.Hour,
		CheckInterval:   10 * time.Minute,
		RetentionInDays: 30,
	}

	assert.Error(t, cfg.validate())

	cfg.PolitenessDelay = 3 * time.Second
	assert.NoError(t, cfg.validate())
}
