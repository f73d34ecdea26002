package repositories

import (
	"fmt"
	"github.com/carscout/carscout/internal/entities"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.User{})
	if err != nil {
		return fmt.Errorf("failed to migrate User entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.SearchAlert{})
	if err != nil {
		return fmt.Errorf("failed to migrate SearchAlert entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Listing{})
	if err != nil {
		return fmt.Errorf("failed to migrate Listing entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.SentListing{})
	if err != nil {
		return fmt.Errorf("failed to migrate SentListing entity: %w", err)
	}

	// sole mechanism guaranteeing at-most-once notification per (alert, listing)
	if err = c.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_alert_listing " +
		"ON sent_listings (alert_id, listing_id);").Error; err != nil {
		return fmt.Errorf("failed to create sent listing index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
