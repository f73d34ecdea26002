package repositories

import (
	"context"
	"errors"

	"github.com/carscout/carscout/internal/entities"
	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (repo *Users) GetOrCreate(ctx context.Context, telegramID int64, username, firstName,
	lastName string) (*entities.User, error) {

	var user entities.User
	err := repo.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = entities.User{
		TelegramID:           telegramID,
		Username:             username,
		FirstName:            firstName,
		LastName:             lastName,
		IsActive:             true,
		NotificationsEnabled: true,
	}
	if err = repo.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Users) NotificationsEnabled(ctx context.Context, telegramID int64) (bool, error) {

	var user entities.User
	err := repo.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// an unknown user has nothing to suppress
			return true, nil
		}
		return false, err
	}
	return user.NotificationsEnabled, nil
}

func (repo *Users) SetNotificationsEnabled(ctx context.Context, telegramID int64, enabled bool) error {
	return repo.db.WithContext(ctx).Model(&entities.User{}).Where("telegram_id = ?", telegramID).
		Update("notifications_enabled", enabled).Error
}
