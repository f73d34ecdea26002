package kleinanzeigen

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Heuristic field extraction over unstructured listing text. Every function
// fails soft: no match yields the zero value, never an error.

var (
	priceRe   = regexp.MustCompile(`\d+`)
	mileageRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d{1,3}(?:\.\d{3})+\s*km`),
		regexp.MustCompile(`(?i)\d{1,3}k\s*km`),
		regexp.MustCompile(`(?i)\d{3,6}\s*km`),
	}
	yearRe = regexp.MustCompile(`\b(19[89]\d|20[0-2]\d)\b`)
)

// fuelVocabulary is matched case-insensitively in this priority order.
var fuelVocabulary = []string{"benzin", "diesel", "elektro", "hybrid", "lpg", "cng", "erdgas"}

// ExtractPrice parses a displayed price like "12.500 €" to 12500. Text with
// no digits yields 0.
func ExtractPrice(text string) int {
	stripped := strings.ReplaceAll(text, ".", "")
	match := priceRe.FindString(stripped)
	if match == "" {
		return 0
	}
	price, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return price
}

// ExtractMileage returns the first mileage-looking token: dotted thousands
// ("120.000 km"), the "120k km" shorthand, or a bare digit run with "km".
func ExtractMileage(text string) string {
	for _, re := range mileageRe {
		if match := re.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

// ExtractYear returns the first 4-digit run inside [1980, currentYear+1].
// Year-shaped tokens outside that range are skipped.
func ExtractYear(text string) string {
	currentYear := time.Now().Year()
	for _, match := range yearRe.FindAllString(text, -1) {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if year >= 1980 && year <= currentYear+1 {
			return match
		}
	}
	return ""
}

// ExtractFuelType matches the site's German fuel vocabulary and returns the
// capitalized term, or "" when nothing matches.
func ExtractFuelType(text string) string {
	lowered := strings.ToLower(text)
	for _, fuel := range fuelVocabulary {
		if strings.Contains(lowered, fuel) {
			return strings.ToUpper(fuel[:1]) + fuel[1:]
		}
	}
	return ""
}

// SplitLocation takes the composite top-left block (date, then location) and
// returns the last line. A single-line block is treated as location only.
func SplitLocation(block string) string {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
