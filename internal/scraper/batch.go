package scraper

import (
	"context"
	"errors"

	"github.com/MrJJimenez/rentcli/internal/models"
	"github.com/MrJJimenez/rentcli/internal/network"
	"github.com/rs/zerolog"
)

// ErrNoResults means no postal code in the batch produced a listing collection.
var ErrNoResults = errors.New("no results to combine")

// PageParser extracts the listings for one postal code.
type PageParser interface {
	Parse(ctx context.Context, zip string) ([]models.Listing, error)
}

type Status string

const (
	StatusOK           Status = "ok"
	StatusNoResponse   Status = "no-response"
	StatusMalformed    Status = "malformed"
	StatusUnrecognized Status = "unrecognized"
	StatusError        Status = "error"
)

// Outcome records what happened for one postal code.
type Outcome struct {
	Zip      string
	Status   Status
	Listings int
	Err      error
}

// Result is the combined table of a batch plus per postal code outcomes.
type Result struct {
	Listings []models.Listing
	Outcomes []Outcome
}

// Failures returns the outcomes that produced no collection.
func (r Result) Failures() []Outcome {
	var out []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Status != StatusOK {
			out = append(out, outcome)
		}
	}
	return out
}

// Runner walks postal codes in order, one request at a time, pausing
// between them.
type Runner struct {
	parser PageParser
	pacer  Pacer
	logger zerolog.Logger
}

func NewRunner(parser PageParser, pacer Pacer, logger zerolog.Logger) *Runner {
	if pacer == nil {
		pacer = SleepPacer{Delay: DefaultDelay}
	}
	return &Runner{parser: parser, pacer: pacer, logger: logger}
}

// Run parses every postal code and concatenates the collections in input
// order. Failed postal codes contribute no rows. A cancelled context stops
// the batch and returns what was combined so far.
func (r *Runner) Run(ctx context.Context, zips []string) (Result, error) {
	collections := make([][]models.Listing, 0, len(zips))
	outcomes := make([]Outcome, 0, len(zips))

	var runErr error
	for idx, zip := range zips {
		if idx > 0 {
			if err := r.pacer.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}

		listings, err := r.parser.Parse(ctx, zip)
		if err != nil && ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}

		outcome := Outcome{Zip: zip, Status: classify(err), Err: err}
		if err == nil {
			outcome.Listings = len(listings)
			collections = append(collections, listings)
		} else {
			r.logger.Warn().Err(err).Str("zip", zip).Str("status", string(outcome.Status)).Msg("no data for zip")
		}
		outcomes = append(outcomes, outcome)
	}

	result := Result{Listings: concat(collections), Outcomes: outcomes}
	if runErr != nil {
		return result, runErr
	}
	if len(collections) == 0 {
		return result, ErrNoResults
	}
	r.logger.Info().Int("zips", len(zips)).Int("listings", len(result.Listings)).Msg("batch complete")
	return result, nil
}

func concat(collections [][]models.Listing) []models.Listing {
	total := 0
	for _, collection := range collections {
		total += len(collection)
	}
	out := make([]models.Listing, 0, total)
	for _, collection := range collections {
		out = append(out, collection...)
	}
	return out
}

func classify(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, network.ErrNoResponse):
		return StatusNoResponse
	case errors.Is(err, ErrMalformedData):
		return StatusMalformed
	case errors.Is(err, ErrUnrecognizedPage):
		return StatusUnrecognized
	default:
		return StatusError
	}
}
