package bot

import (
	"fmt"
	"strconv"

	"github.com/carscout/carscout/internal/entities"
)

const descriptionLimit = 300

// formatListing renders one listing as a Markdown notification message.
func formatListing(listing entities.Listing) string {

	text := "🚗 *New Car Match!*\n\n"
	text += "*" + listing.Title + "*\n"
	text += "💰 *Price:* €" + formatPrice(listing.Price) + "\n"
	if listing.Location != "" {
		text += "📍 *Location:* " + listing.Location + "\n"
	}
	if listing.DatePosted != "" {
		text += "📅 *Posted:* " + listing.DatePosted + "\n"
	}
	if listing.Year != "" {
		text += "📅 *Year:* " + listing.Year + "\n"
	}
	if listing.Mileage != "" {
		text += "🛣 *Mileage:* " + listing.Mileage + "\n"
	}
	if listing.FuelType != "" {
		text += "⛽ *Fuel:* " + listing.FuelType + "\n"
	}

	if listing.Description != "" {
		desc := listing.Description
		// truncate by runes, a byte cut could split an umlaut
		if runes := []rune(desc); len(runes) > descriptionLimit {
			desc = string(runes[:descriptionLimit]) + "..."
		}
		text += "\n📝 *Description:*\n" + desc + "\n"
	}

	text += fmt.Sprintf("\n🔗 [View on Kleinanzeigen.de](%s)", listing.URL)
	return text
}

// formatPrice groups thousands with dots, the way prices appear on the site.
func formatPrice(price int) string {

	digits := strconv.Itoa(price)
	if price < 1000 {
		return digits
	}

	var grouped string
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped += "."
		}
		grouped += string(digit)
	}
	return grouped
}
