package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MrJJimenez/rentcli/internal/models"
	"github.com/MrJJimenez/rentcli/internal/network"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// ErrUnrecognizedPage means the page had neither result cards nor the
// embedded search data script.
var ErrUnrecognizedPage = errors.New("unrecognized page layout")

const searchDataSelector = "script[data-zrr-shared-data-key='mobileSearchPageStore']"

// Layout is the page structure the dispatcher detected.
type Layout string

const (
	LayoutCards        Layout = "cards"
	LayoutSearchData   Layout = "search-data"
	LayoutUnrecognized Layout = "unrecognized"
)

// PageFetcher returns the accepted response for a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (*network.Response, error)
}

type ParserOptions struct {
	BaseURL string
	Marker  Marker
}

// Parser fetches one postal code's results page and routes it to the
// extractor matching its layout. It keeps no state between calls.
type Parser struct {
	fetcher PageFetcher
	urls    URLBuilder
	marker  Marker
	logger  zerolog.Logger
}

func NewParser(fetcher PageFetcher, opts ParserOptions, logger zerolog.Logger) *Parser {
	marker := opts.Marker
	if marker == "" {
		marker = MarkerForRent
	}
	return &Parser{
		fetcher: fetcher,
		urls:    NewURLBuilder(opts.BaseURL, logger),
		marker:  marker,
		logger:  logger,
	}
}

func (p *Parser) Parse(ctx context.Context, zip string) ([]models.Listing, error) {
	target := p.urls.Build(zip)
	resp, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		p.logger.Error().Err(err).Str("zip", zip).Msg("failed to fetch the page")
		return nil, err
	}
	return p.ParseDocument(zip, bytes.NewReader(resp.Body))
}

// ParseDocument runs layout detection and extraction over an already
// downloaded page.
func (p *Parser) ParseDocument(zip string, body io.Reader) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var listings []models.Listing
	switch DetectLayout(doc) {
	case LayoutCards:
		p.logger.Info().Str("zip", zip).Msg("parsing from html page")
		listings = ParseCards(doc, p.urls.BaseURL(), p.marker)
	case LayoutSearchData:
		p.logger.Info().Str("zip", zip).Msg("parsing from json data")
		listings, err = ParseSearchData(textFragments(doc.Find(searchDataSelector)), p.logger)
		if err != nil {
			return nil, err
		}
	default:
		p.logger.Warn().Str("zip", zip).Msg("page has neither result cards nor search data")
		return nil, ErrUnrecognizedPage
	}

	for i := range listings {
		listings[i].SearchZip = zip
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}

// DetectLayout prefers static cards and falls back to the search data script.
func DetectLayout(doc *goquery.Document) Layout {
	if doc.Find(cardSelector).Length() > 0 {
		return LayoutCards
	}
	if doc.Find(searchDataSelector).Length() > 0 {
		return LayoutSearchData
	}
	return LayoutUnrecognized
}
