package entities

import "time"

// SearchAlert is a user's saved search, checked on every polling cycle.
// Zero-valued criteria fields mean "not set".
type SearchAlert struct {
	ID         int
	UserID     int64
	Name       string
	Brand      string
	MinPrice   int
	MaxPrice   int
	Location   string
	Radius     int
	MinYear    int
	MaxMileage int
	Keywords   string
	IsActive   bool `gorm:"default:true"`
	LastCheck  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewSearchAlert(userID int64, brand string, minPrice, maxPrice int, location string,
	radius, minYear, maxMileage int) *SearchAlert {

	return &SearchAlert{
		UserID:     userID,
		Brand:      brand,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Location:   location,
		Radius:     radius,
		MinYear:    minYear,
		MaxMileage: maxMileage,
		IsActive:   true,
	}
}
