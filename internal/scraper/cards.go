package scraper

import (
	"fmt"
	"strings"

	"github.com/MrJJimenez/rentcli/internal/models"
	"github.com/PuerkitoBio/goquery"
)

// Marker selects which status icon a card must carry to be kept.
type Marker string

const (
	MarkerForRent Marker = "for-rent"
	MarkerForSale Marker = "for-sale"
	MarkerNone    Marker = "none"
)

func ParseMarker(value string) (Marker, error) {
	switch Marker(strings.ToLower(strings.TrimSpace(value))) {
	case "", MarkerForRent:
		return MarkerForRent, nil
	case MarkerForSale:
		return MarkerForSale, nil
	case MarkerNone:
		return MarkerNone, nil
	default:
		return "", fmt.Errorf("unknown marker: %s", value)
	}
}

func (m Marker) selector() string {
	switch m {
	case MarkerForSale:
		return "span[class='zsg-icon-for-sale']"
	case MarkerNone:
		return ""
	default:
		return "span[class='zsg-icon-for-rent']"
	}
}

const (
	cardSelector        = "div#search-results article"
	addressSelector     = "span[itemprop='address'] span[itemprop='%s']"
	priceSelector       = "span[class='zsg-photo-card-price']"
	infoSelector        = "span[class='zsg-photo-card-info']"
	brokerSelector      = "span[class='zsg-photo-card-broker-name']"
	overlayLinkSelector = "a[class*='overlay-link']"
	titleSelector       = "h4"
)

// ParseCards extracts listings from static result cards in DOM order.
// Cards without the required marker icon are dropped.
func ParseCards(doc *goquery.Document, origin string, marker Marker) []models.Listing {
	var listings []models.Listing
	markerSelector := marker.selector()

	doc.Find(cardSelector).Each(func(_ int, s *goquery.Selection) {
		if markerSelector != "" && s.Find(markerSelector).Length() == 0 {
			return
		}
		listings = append(listings, models.Listing{Source: models.SourceCards, Card: parseCard(s, origin)})
	})

	return listings
}

func parseCard(s *goquery.Selection, origin string) *models.Card {
	card := &models.Card{
		Address:    cleanSelection(s.Find(fmt.Sprintf(addressSelector, "streetAddress"))),
		City:       cleanSelection(s.Find(fmt.Sprintf(addressSelector, "addressLocality"))),
		State:      cleanSelection(s.Find(fmt.Sprintf(addressSelector, "addressRegion"))),
		PostalCode: cleanSelection(s.Find(fmt.Sprintf(addressSelector, "postalCode"))),
		Price:      cleanSelection(s.Find(priceSelector)),
		Provider:   cleanSelection(s.Find(brokerSelector)),
		Title:      cleanSelection(s.Find(titleSelector)),
	}
	card.FactsAndFeatures = strings.ReplaceAll(cleanSelection(s.Find(infoSelector)), "\u00b7", ",")

	if href, ok := s.Find(overlayLinkSelector).First().Attr("href"); ok {
		card.URL = absoluteURL(origin, strings.TrimSpace(href))
	}
	return card
}
