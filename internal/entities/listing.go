package entities

import "time"

// Listing is one car posting on kleinanzeigen.de, identified by the ad id the
// site assigns. Rows are shared across all alerts.
type Listing struct {
	ID          int
	ExternalID  string `gorm:"uniqueIndex"`
	Title       string
	Price       int
	Location    string
	DatePosted  string // verbatim source string, not normalized
	Description string
	URL         string
	ImageURL    string
	Mileage     string
	Year        string
	FuelType    string
	IsAvailable bool `gorm:"default:true"`
	FirstSeen   time.Time
	LastSeen    time.Time
}

// SentListing records that an alert was already notified about a listing.
// Uniqueness of (alert_id, listing_id) is enforced by a raw index in Migrate.
type SentListing struct {
	ID        int
	AlertID   int
	ListingID int
	SentAt    time.Time
}
