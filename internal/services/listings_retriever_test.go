package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/carscout/carscout/internal/clients/kleinanzeigen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeFetcher struct {
	pages  map[int][]byte
	errors map[int]error
	calls  []int
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ string, page int) ([]byte, error) {
	f.calls = append(f.calls, page)
	if err := f.errors[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func resultPage(adIDs ...string) []byte {
	var page string
	for _, adID := range adIDs {
		page += fmt.Sprintf(`<article class="aditem" data-adid="%s">
			<h2 class="text-module-begin"><a href="/s-anzeige/auto/%s">Listing %s</a></h2>
			</article>`, adID, adID, adID)
	}
	return []byte("<html><body>" + page + "</body></html>")
}

func Test_Retrieve_StopsOnEmptyPage(t *testing.T) {

	fetcher := &fakeFetcher{pages: map[int][]byte{
		1: resultPage("101", "102"),
		2: resultPage("103"),
		3: resultPage(),
		4: resultPage("999"),
	}}

	retriever := NewListingsRetriever(fetcher, kleinanzeigen.NewAditemParser())
	listings, err := retriever.Retrieve(context.Background(), kleinanzeigen.SearchCriteria{Brand: "bmw"}, 10)

	assert.NoError(t, err)
	assert.Len(t, listings, 3)
	assert.Equal(t, []int{1, 2, 3}, fetcher.calls)
}

func Test_Retrieve_RespectsPageLimit(t *testing.T) {

	fetcher := &fakeFetcher{pages: map[int][]byte{
		1: resultPage("101"),
		2: resultPage("102"),
	}}

	retriever := NewListingsRetriever(fetcher, kleinanzeigen.NewAditemParser())
	listings, err := retriever.Retrieve(context.Background(), kleinanzeigen.SearchCriteria{}, 1)

	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, []int{1}, fetcher.calls)
}

func Test_Retrieve_FetchErrorReturnsCollectedPages(t *testing.T) {

	fetcher := &fakeFetcher{
		pages:  map[int][]byte{1: resultPage("101")},
		errors: map[int]error{2: errors.New("status code 403")},
	}

	retriever := NewListingsRetriever(fetcher, kleinanzeigen.NewAditemParser())
	listings, err := retriever.Retrieve(context.Background(), kleinanzeigen.SearchCriteria{}, 5)

	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, "101", listings[0].ID)
}
