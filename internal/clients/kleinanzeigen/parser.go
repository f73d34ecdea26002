package kleinanzeigen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Listing is one parsed result element, before persistence.
type Listing struct {
	ID          string
	Title       string
	Price       int
	Location    string
	Date        string
	Description string
	URL         string
	ImageURL    string
	Mileage     string
	Year        string
	FuelType    string
}

// ParseResult carries the listings of one page plus the count of elements
// dropped as malformed.
type ParseResult struct {
	Listings []Listing
	Dropped  int
}

// PageParser isolates all structural markup knowledge behind one interface.
// A site layout change means writing a new adapter for the new markup
// version, testable against frozen HTML fixtures.
type PageParser interface {
	MarkupVersion() string
	Parse(page []byte) (ParseResult, error)
}

// aditemParser handles the "aditem" markup generation of the results page.
type aditemParser struct{}

func NewAditemParser() PageParser {
	return &aditemParser{}
}

func (p *aditemParser) MarkupVersion() string {
	return "aditem"
}

func (p *aditemParser) Parse(page []byte) (ParseResult, error) {

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ParseResult{}, fmt.Errorf("error parsing page: %v", err)
	}

	var result ParseResult
	doc.Find("article.aditem").Each(func(_ int, article *goquery.Selection) {
		listing, ok := p.parseArticle(article)
		if !ok {
			result.Dropped++
			return
		}
		result.Listings = append(result.Listings, listing)
	})

	return result, nil
}

// parseArticle extracts one listing. An element missing its ad id, title, or
// link is reported as malformed; every other field is best effort.
func (p *aditemParser) parseArticle(article *goquery.Selection) (Listing, bool) {

	adID, hasID := article.Attr("data-adid")
	if !hasID || adID == "" {
		return Listing{}, false
	}

	titleLink := article.Find("h2.text-module-begin a").First()
	title := strings.TrimSpace(titleLink.Text())
	href, hasHref := titleLink.Attr("href")
	if title == "" || !hasHref {
		return Listing{}, false
	}

	description := strings.TrimSpace(article.Find("p.aditem-main--middle--description").First().Text())
	combined := title + " " + description

	listing := Listing{
		ID:          adID,
		Title:       title,
		Price:       ExtractPrice(article.Find("p.aditem-main--middle--price-shipping--price").First().Text()),
		Location:    SplitLocation(article.Find("div.aditem-main--top--left").First().Text()),
		Date:        strings.TrimSpace(article.Find("div.aditem-main--top--right").First().Text()),
		Description: description,
		URL:         absoluteURL(href),
		Mileage:     ExtractMileage(combined),
		Year:        ExtractYear(combined),
		FuelType:    ExtractFuelType(combined),
	}

	if img := article.Find("img").First(); img.Length() > 0 {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		if src != "" {
			listing.ImageURL = absoluteURL(src)
		}
	}

	return listing, true
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return BaseURL + href
}
