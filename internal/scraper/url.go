package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://www.zillow.com"

// URLBuilder turns a postal code into the rental search URL for that area.
type URLBuilder struct {
	baseURL string
	logger  zerolog.Logger
}

func NewURLBuilder(baseURL string, logger zerolog.Logger) URLBuilder {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return URLBuilder{baseURL: baseURL, logger: logger}
}

func (b URLBuilder) BaseURL() string {
	return b.baseURL
}

func (b URLBuilder) Build(zip string) string {
	target := buildSearchURL(b.baseURL, zip)
	b.logger.Info().Str("zip", zip).Str("url", target).Msg("search url")
	return target
}

func buildSearchURL(baseURL string, zip string) string {
	return fmt.Sprintf("%s/homes/for_rent/%s/days_sort", baseURL, url.PathEscape(zip))
}
