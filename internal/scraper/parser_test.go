package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MrJJimenez/rentcli/internal/models"
	"github.com/MrJJimenez/rentcli/internal/network"
	"github.com/rs/zerolog"
)

type stubFetcher struct {
	pages   map[string]string
	err     error
	targets []string
}

func (s *stubFetcher) Fetch(_ context.Context, target string) (*network.Response, error) {
	s.targets = append(s.targets, target)
	if s.err != nil {
		return nil, s.err
	}
	page, ok := s.pages[target]
	if !ok {
		return nil, fmt.Errorf("%w: no stub for %s", network.ErrNoResponse, target)
	}
	return &network.Response{URL: target, StatusCode: 200, Attempts: 1, Body: []byte(page)}, nil
}

func searchDataPage(payload string) string {
	return `<html><head>
<script type="application/json" data-zrr-shared-data-key="mobileSearchPageStore">` + payload + `</script>
</head><body><div id="grid-search-results"></div></body></html>`
}

func TestParserRoutesCardPages(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.zillow.com/homes/for_rent/01950/days_sort": cardsPage,
	}}
	parser := NewParser(fetcher, ParserOptions{}, zerolog.Nop())

	listings, err := parser.Parse(context.Background(), "01950")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	for _, listing := range listings {
		if listing.Source != models.SourceCards || listing.SearchZip != "01950" {
			t.Fatalf("unexpected listing: %+v", listing)
		}
	}
}

func TestParserRoutesSearchDataPages(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.zillow.com/homes/for_rent/01950/days_sort": searchDataPage(threeEntryPayload),
	}}
	parser := NewParser(fetcher, ParserOptions{}, zerolog.Nop())

	listings, err := parser.Parse(context.Background(), "01950")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].Source != models.SourceSearchData || listings[0].SearchZip != "01950" {
		t.Fatalf("unexpected listing: %+v", listings[0])
	}
}

func TestParserMalformedSearchData(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.zillow.com/homes/for_rent/11225/days_sort": searchDataPage(`<!--{"cat1": [-->`),
	}}
	parser := NewParser(fetcher, ParserOptions{}, zerolog.Nop())

	listings, err := parser.Parse(context.Background(), "11225")
	if !errors.Is(err, ErrMalformedData) {
		t.Fatalf("Parse() error = %v, want ErrMalformedData", err)
	}
	if listings != nil {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestParserUnrecognizedLayout(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.zillow.com/homes/for_rent/80524/days_sort": `<html><body><h1>Please verify you're a human</h1></body></html>`,
	}}
	parser := NewParser(fetcher, ParserOptions{}, zerolog.Nop())

	listings, err := parser.Parse(context.Background(), "80524")
	if !errors.Is(err, ErrUnrecognizedPage) {
		t.Fatalf("Parse() error = %v, want ErrUnrecognizedPage", err)
	}
	if listings != nil {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}

func TestParserFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: fmt.Errorf("%w after 5 attempts", network.ErrNoResponse)}
	parser := NewParser(fetcher, ParserOptions{BaseURL: "https://mirror.example.com"}, zerolog.Nop())

	_, err := parser.Parse(context.Background(), "01950")
	if !errors.Is(err, network.ErrNoResponse) {
		t.Fatalf("Parse() error = %v, want ErrNoResponse", err)
	}
	if len(fetcher.targets) != 1 || !strings.HasPrefix(fetcher.targets[0], "https://mirror.example.com/homes/for_rent/01950") {
		t.Fatalf("unexpected fetch targets: %v", fetcher.targets)
	}
}

func TestParseDocumentEmptyCardsWithMarker(t *testing.T) {
	page := `<div id="search-results"><article><span class="zsg-photo-card-price">$1</span></article></div>`
	parser := NewParser(nil, ParserOptions{}, zerolog.Nop())

	listings, err := parser.ParseDocument("01950", strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if listings == nil || len(listings) != 0 {
		t.Fatalf("expected empty non-nil listings, got %#v", listings)
	}
}

func TestDetectLayoutPrefersCards(t *testing.T) {
	page := searchDataPage(`{}`) + `<div id="search-results"><article></article></div>`
	doc := mustDoc(t, page)
	if got := DetectLayout(doc); got != LayoutCards {
		t.Fatalf("DetectLayout() = %q, want %q", got, LayoutCards)
	}
}
