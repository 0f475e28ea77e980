package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MrJJimenez/rentcli/internal/models"
	"github.com/rs/zerolog"
)

// ErrMalformedData is returned when the embedded search data is not valid
// JSON or lacks the search results block.
var ErrMalformedData = errors.New("malformed search data")

type searchPageStore struct {
	Cat1 *struct {
		SearchResults *struct {
			ListResults []json.RawMessage `json:"listResults"`
		} `json:"searchResults"`
	} `json:"cat1"`
}

type listResult struct {
	HdpData *struct {
		HomeInfo homeInfo `json:"homeInfo"`
	} `json:"hdpData"`
}

// homeInfo keeps raw values so one oddly typed field cannot cost the
// whole entry.
type homeInfo map[string]json.RawMessage

// ParseSearchData extracts listings from the text of the embedded search
// page store script. Entries without a homeInfo block are skipped. A
// payload without cat1.searchResults is ErrMalformedData.
func ParseSearchData(fragments []string, logger zerolog.Logger) ([]models.Listing, error) {
	cleaned, ok := Clean(fragments)
	if !ok {
		return nil, fmt.Errorf("%w: empty script", ErrMalformedData)
	}
	cleaned = strings.ReplaceAll(cleaned, "<!--", "")
	cleaned = strings.ReplaceAll(cleaned, "-->", "")

	var store searchPageStore
	if err := json.Unmarshal([]byte(cleaned), &store); err != nil {
		logger.Warn().Err(err).Msg("invalid json")
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	if store.Cat1 == nil || store.Cat1.SearchResults == nil {
		logger.Warn().Msg("search data has no cat1.searchResults")
		return nil, fmt.Errorf("%w: no cat1.searchResults", ErrMalformedData)
	}

	entries := store.Cat1.SearchResults.ListResults
	listings := make([]models.Listing, 0, len(entries))
	for idx, raw := range entries {
		var entry listResult
		if err := json.Unmarshal(raw, &entry); err != nil {
			logger.Debug().Err(err).Int("index", idx).Msg("skipping undecodable entry")
			continue
		}
		if entry.HdpData == nil || entry.HdpData.HomeInfo == nil {
			logger.Debug().Int("index", idx).Msg("skipping entry without homeInfo")
			continue
		}
		home, dropped := entry.HdpData.HomeInfo.toHome()
		if len(dropped) > 0 {
			logger.Debug().Int("index", idx).Strs("fields", dropped).Msg("dropped values of unexpected type")
		}
		listings = append(listings, models.Listing{
			Source: models.SourceSearchData,
			Home:   home,
		})
	}
	return listings, nil
}

// toHome converts what it can. Numbers in text fields are kept as their
// literal text and numeric strings in number fields are parsed; any other
// mismatch drops that one value and reports its key.
func (h homeInfo) toHome() (*models.Home, []string) {
	var dropped []string
	text := func(key string) *string {
		value, ok := h.text(key)
		if !ok {
			dropped = append(dropped, key)
		}
		return value
	}
	number := func(key string) *float64 {
		value, ok := h.number(key)
		if !ok {
			dropped = append(dropped, key)
		}
		return value
	}

	home := &models.Home{
		Address:    text("streetAddress"),
		Zipcode:    text("zipcode"),
		City:       text("city"),
		State:      text("state"),
		Latitude:   number("latitude"),
		Longitude:  number("longitude"),
		HomeType:   text("homeType"),
		Bedrooms:   number("bedrooms"),
		Bathrooms:  number("bathrooms"),
		LivingArea: number("livingArea"),
		Price:      number("price"),
	}
	if days := number("daysOnZillow"); days != nil {
		if *days == math.Trunc(*days) {
			n := int(*days)
			home.DaysListed = &n
		} else {
			dropped = append(dropped, "daysOnZillow")
		}
	}
	return home, dropped
}

// raw returns the value for key, or nil when it is absent or null.
func (h homeInfo) raw(key string) json.RawMessage {
	value := bytes.TrimSpace(h[key])
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil
	}
	return value
}

func (h homeInfo) text(key string) (*string, bool) {
	raw := h.raw(key)
	if raw == nil {
		return nil, true
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false
	}
	switch value := decoded.(type) {
	case string:
		return &value, true
	case float64, bool:
		literal := string(raw)
		return &literal, true
	default:
		return nil, false
	}
}

func (h homeInfo) number(key string) (*float64, bool) {
	raw := h.raw(key)
	if raw == nil {
		return nil, true
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err == nil {
		return &value, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}
