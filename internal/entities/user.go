package entities

import "time"

type User struct {
	ID                   int
	TelegramID           int64 `gorm:"uniqueIndex"`
	Username             string
	FirstName            string
	LastName             string
	IsActive             bool `gorm:"default:true"`
	NotificationsEnabled bool `gorm:"default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
