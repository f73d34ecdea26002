package kleinanzeigen

import (
	"github.com/stretchr/testify/assert"
	"strconv"
	"testing"
	"time"
)

func Test_ExtractPrice(t *testing.T) {

	cases := []struct {
		text     string
		expected int
	}{
		{"12.500 €", 12500},
		{"9.800 € VB", 9800},
		{"1.250.000 €", 1250000},
		{"500€", 500},
		{"VB", 0},
		{"Zu verschenken", 0},
		{"", 0},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, ExtractPrice(c.text), "text: %q", c.text)
	}
}

func Test_ExtractMileage(t *testing.T) {

	cases := []struct {
		text     string
		expected string
	}{
		{"BMW 320d, 120.000 km, Diesel", "120.000 km"},
		{"nur 89.000km gelaufen", "89.000km"},
		{"Laufleistung 150k km", "150k km"},
		{"ca. 98000 km, TÜV neu", "98000 km"},
		{"KM-Stand auf Anfrage", ""},
		{"", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, ExtractMileage(c.text), "text: %q", c.text)
	}
}

func Test_ExtractYear(t *testing.T) {

	assert.Equal(t, "2019", ExtractYear("BMW 320d, Baujahr 2019"))
	assert.Equal(t, "1995", ExtractYear("Oldtimer von 1995, H-Kennzeichen"))

	// 4-digit tokens outside [1980, currentYear+1] never count as years.
	assert.Equal(t, "", ExtractYear("Klassiker von 1975, Sammlerstück"))
	nextYear := time.Now().Year() + 1
	assert.Equal(t, strconv.Itoa(nextYear), ExtractYear("Neuwagen, Modell "+strconv.Itoa(nextYear)))

	// a year-shaped token out of range is skipped, not taken over a later valid one
	assert.Equal(t, "2021", ExtractYear("Preis 2029 Euro, EZ 2021"))

	assert.Equal(t, "", ExtractYear("kein Baujahr angegeben"))
}

func Test_ExtractFuelType(t *testing.T) {

	cases := []struct {
		text     string
		expected string
	}{
		{"BMW 320d Diesel Automatik", "Diesel"},
		{"sparsamer BENZINER", "Benzin"},
		{"Elektro, 50 kWh Akku", "Elektro"},
		{"Hybrid mit Anhängerkupplung", "Hybrid"},
		{"LPG Gasanlage eingetragen", "Lpg"},
		{"läuft auf Erdgas", "Erdgas"},
		{"Getriebeschaden, Bastlerfahrzeug", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, ExtractFuelType(c.text), "text: %q", c.text)
	}

	// benzin wins over diesel by priority order
	assert.Equal(t, "Benzin", ExtractFuelType("Diesel oder Benzin? Benzin!"))
}

func Test_SplitLocation(t *testing.T) {

	assert.Equal(t, "80331 München", SplitLocation("Heute, 10:25\n  80331 München\n"))
	assert.Equal(t, "85049 Ingolstadt", SplitLocation("  85049 Ingolstadt  "))
	assert.Equal(t, "", SplitLocation(""))
}
