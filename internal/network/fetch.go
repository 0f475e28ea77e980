package network

import (
	"context"
	"errors"
	"fmt"
	"io"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
)

const DefaultMaxAttempts = 5

// ErrNoResponse means every attempt ended without a 200 response.
var ErrNoResponse = errors.New("no response")

// Response is an accepted page.
type Response struct {
	URL        string
	StatusCode int
	Attempts   int
	Body       []byte
}

// Fetcher issues GET requests with the browser header set and retries
// non-OK statuses back to back, up to a fixed number of attempts.
type Fetcher struct {
	client      Doer
	logger      zerolog.Logger
	maxAttempts int
	headers     map[string]string
	dump        DumpWriter
}

type FetcherOption func(*Fetcher)

func WithMaxAttempts(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

func WithDump(dump DumpWriter) FetcherOption {
	return func(f *Fetcher) {
		f.dump = dump
	}
}

func NewFetcher(client Doer, logger zerolog.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
		headers:     BrowserHeaders(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the first 200 response for target. Transport errors use up
// an attempt the same way a non-OK status does; a cancelled context stops
// the loop immediately.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Response, error) {
	var (
		lastStatus int
		lastErr    error
	)

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status, body, err := f.attempt(ctx, target)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			f.logger.Warn().Err(err).Str("url", target).Int("attempt", attempt).Msg("request failed")
			continue
		}

		lastStatus = status
		f.logger.Info().Str("url", target).Int("attempt", attempt).Int("status", status).Msg("status code received")
		if status == fhttp.StatusOK {
			return &Response{URL: target, StatusCode: status, Attempts: attempt, Body: body}, nil
		}

		f.writeDump(target, attempt, body)
	}

	if lastStatus == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrNoResponse, f.maxAttempts, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts: last status %d", ErrNoResponse, f.maxAttempts, lastStatus)
}

func (f *Fetcher) attempt(ctx context.Context, target string) (int, []byte, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	applyHeaders(req, f.headers)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, decodeBody(resp.Header.Get("Content-Encoding"), body), nil
}

func (f *Fetcher) writeDump(target string, attempt int, body []byte) {
	if f.dump == nil {
		return
	}
	name := dumpName(target, attempt)
	if err := f.dump.Write(name, body); err != nil {
		f.logger.Warn().Err(err).Str("file", name).Msg("failed to save response")
		return
	}
	f.logger.Debug().Str("file", name).Msg("saved response for inspection")
}
