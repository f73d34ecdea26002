package kleinanzeigen

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	BaseURL     = "https://www.kleinanzeigen.de"
	carsSection = "/s-autos/c216"
)

// brandCategories maps known brands to their site category path segments.
// Unknown brands fall back to the generic cars section.
var brandCategories = map[string]string{
	"audi":       "c216l2705",
	"bmw":        "c216l2707",
	"mercedes":   "c216l2715",
	"volkswagen": "c216l2727",
	"vw":         "c216l2727",
	"opel":       "c216l2720",
	"ford":       "c216l2711",
	"toyota":     "c216l2725",
	"renault":    "c216l2722",
	"peugeot":    "c216l2721",
}

// SearchCriteria describes one alert's filters. Zero values mean "not set".
type SearchCriteria struct {
	Brand      string
	MinPrice   int
	MaxPrice   int
	Location   string
	Radius     int
	MinYear    int
	MaxMileage int
}

// URL builds the search results URL for the criteria. Pure and deterministic:
// identical criteria always yield an identical string. Query parameters keep
// the site's canonical order, so they are joined by hand instead of going
// through url.Values.
func (c SearchCriteria) URL() string {

	path := carsSection
	if c.Brand != "" {
		brand := strings.ToLower(c.Brand)
		if category, known := brandCategories[brand]; known {
			path = "/s-autos/" + brand + "/" + category
		}
	}

	var params []string
	if c.MinPrice > 0 {
		params = append(params, "priceFrom="+strconv.Itoa(c.MinPrice))
	}
	if c.MaxPrice > 0 {
		params = append(params, "priceTo="+strconv.Itoa(c.MaxPrice))
	}
	if c.Location != "" {
		params = append(params, "locationStr="+url.QueryEscape(c.Location))
	}
	if c.Radius > 0 {
		params = append(params, "radius="+strconv.Itoa(c.Radius))
	}
	if c.MinYear > 0 {
		params = append(params, "yearFrom="+strconv.Itoa(c.MinYear))
	}
	if c.MaxMileage > 0 {
		params = append(params, "mileageTo="+strconv.Itoa(c.MaxMileage))
	}
	params = append(params, "sortingField=SORTING_DATE")

	return BaseURL + path + "?" + strings.Join(params, "&")
}
