package repositories

import (
	"context"
	"time"

	"github.com/carscout/carscout/internal/entities"
	"gorm.io/gorm"
)

type Alerts struct {
	db *gorm.DB
}

func NewAlertsRepository(db *gorm.DB) *Alerts {
	return &Alerts{db: db}
}

func (repo *Alerts) Add(ctx context.Context, alert entities.SearchAlert) error {
	return repo.db.WithContext(ctx).Create(&alert).Error
}

func (repo *Alerts) GetActive(ctx context.Context) ([]entities.SearchAlert, error) {

	var alerts []entities.SearchAlert
	if err := repo.db.WithContext(ctx).Find(&alerts, "is_active = ?", true).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (repo *Alerts) GetByUser(ctx context.Context, userID int64) ([]entities.SearchAlert, error) {

	var alerts []entities.SearchAlert
	if err := repo.db.WithContext(ctx).Find(&alerts, "user_id = ? AND is_active = ?", userID, true).
		Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (repo *Alerts) UpdateLastCheck(ctx context.Context, alertID int, checkedAt time.Time) error {
	return repo.db.WithContext(ctx).Model(&entities.SearchAlert{}).Where("id = ?", alertID).
		Update("last_check", checkedAt).Error
}

// Deactivate is how alerts go away; rows are never deleted so sent history
// stays intact.
func (repo *Alerts) Deactivate(ctx context.Context, alertID int) error {
	return repo.db.WithContext(ctx).Model(&entities.SearchAlert{}).Where("id = ?", alertID).
		Update("is_active", false).Error
}
