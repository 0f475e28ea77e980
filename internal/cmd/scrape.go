package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/MrJJimenez/rentcli/internal/config"
	"github.com/MrJJimenez/rentcli/internal/models"
	"github.com/MrJJimenez/rentcli/internal/network"
	"github.com/MrJJimenez/rentcli/internal/scraper"
	"github.com/MrJJimenez/rentcli/internal/seen"
	"github.com/MrJJimenez/rentcli/internal/store"
	"github.com/MrJJimenez/rentcli/internal/zipcodes"
)

type ScrapeCmd struct {
	Zips []string `arg:"" optional:"" help:"Postal codes to scrape, in order. Optional when --zip-file is provided."`
	ZipSourceOptions
	SiteOptions

	Attempts   int    `help:"Maximum fetch attempts per page (default from config)."`
	Delay      int    `help:"Seconds to wait between postal codes (default from config)." default:"-1"`
	Timeout    int    `help:"Per-request timeout in seconds (default from config)."`
	DumpDir    string `name:"dump-dir" help:"Directory for bodies of rejected responses."`
	DB         string `name:"db" help:"Also store rows in a database: postgres://... or sqlite:PATH."`
	Seen       string `help:"Path to seen listings JSON file."`
	NewOnly    bool   `help:"Output only unseen listings (requires --seen)."`
	NewOut     string `help:"Write unseen listings JSON to a file (requires --seen)."`
	SeenUpdate bool   `help:"Merge unseen listings into the --seen file after the run (requires --seen)."`
	OutputOptions
}

type ZipSourceOptions struct {
	ZipFile   string `name:"zip-file" help:"CSV dataset with a zip column, or a JSON array of postal codes."`
	ZipColumn string `name:"zip-column" help:"CSV column holding postal codes." default:"zip"`
}

type SiteOptions struct {
	BaseURL string `name:"base-url" help:"Listing site origin (default from config)."`
	Marker  string `help:"Card marker to require: for-rent, for-sale, none (default from config)." enum:",for-rent,for-sale,none" default:""`
}

// scrapeSettings are the flag values merged over the loaded config.
type scrapeSettings struct {
	BaseURL  string
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
	Marker   scraper.Marker
	DB       string
}

type batchRunner interface {
	Run(ctx context.Context, zips []string) (scraper.Result, error)
}

func (s *ScrapeCmd) Run(ctx *Context) error {
	if err := s.validate(); err != nil {
		return err
	}

	zips, err := resolveZips(s.Zips, s.ZipSourceOptions)
	if err != nil {
		return err
	}
	settings, err := resolveSettings(ctx.Config, s)
	if err != nil {
		return err
	}

	client, err := network.NewClient(settings.Timeout)
	if err != nil {
		return err
	}
	fetchOpts := []network.FetcherOption{network.WithMaxAttempts(settings.Attempts)}
	if strings.TrimSpace(s.DumpDir) != "" {
		dump, err := network.NewFilesystemDump(s.DumpDir)
		if err != nil {
			return fmt.Errorf("prepare --dump-dir: %w", err)
		}
		fetchOpts = append(fetchOpts, network.WithDump(dump))
	}
	fetcher := network.NewFetcher(client, ctx.Logger, fetchOpts...)
	parser := scraper.NewParser(fetcher, scraper.ParserOptions{
		BaseURL: settings.BaseURL,
		Marker:  settings.Marker,
	}, ctx.Logger)
	runner := scraper.NewRunner(parser, scraper.SleepPacer{Delay: settings.Delay}, ctx.Logger)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return executeScrape(runCtx, ctx, runner, zips, settings, s)
}

func (s *ScrapeCmd) validate() error {
	if s.NewOnly && strings.TrimSpace(s.Seen) == "" {
		return fmt.Errorf("--new-only requires --seen")
	}
	if strings.TrimSpace(s.NewOut) != "" && strings.TrimSpace(s.Seen) == "" {
		return fmt.Errorf("--new-out requires --seen")
	}
	if s.SeenUpdate && strings.TrimSpace(s.Seen) == "" {
		return fmt.Errorf("--seen-update requires --seen")
	}
	if strings.TrimSpace(s.NewOut) != "" && pathsEqual(s.Output, s.NewOut) {
		return fmt.Errorf("--new-out path must differ from --output")
	}
	if strings.TrimSpace(s.Seen) != "" && pathsEqual(s.Output, s.Seen) {
		return fmt.Errorf("--output path must differ from --seen")
	}
	if strings.TrimSpace(s.NewOut) != "" && pathsEqual(s.NewOut, s.Seen) {
		return fmt.Errorf("--new-out path must differ from --seen")
	}
	return nil
}

// resolveZips falls back to the zipcodes.csv in the config dir when no
// postal codes were given on the command line.
func resolveZips(args []string, opts ZipSourceOptions) ([]string, error) {
	path := opts.ZipFile
	if len(zipcodes.FromArgs(args)) == 0 && strings.TrimSpace(path) == "" {
		if fallback, err := config.ZipcodesPath(); err == nil {
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}
	return zipcodes.Resolve(args, path, opts.ZipColumn)
}

func resolveSettings(cfg config.Config, s *ScrapeCmd) (scrapeSettings, error) {
	markerValue := firstNonEmpty(s.Marker, cfg.RequireMarker)
	marker, err := scraper.ParseMarker(markerValue)
	if err != nil {
		return scrapeSettings{}, err
	}

	delaySeconds := cfg.DelaySeconds
	if s.Delay >= 0 {
		delaySeconds = s.Delay
	}

	return scrapeSettings{
		BaseURL:  firstNonEmpty(s.BaseURL, cfg.BaseURL, scraper.DefaultBaseURL),
		Attempts: defaultInt(s.Attempts, defaultInt(cfg.MaxAttempts, network.DefaultMaxAttempts)),
		Delay:    time.Duration(delaySeconds) * time.Second,
		Timeout:  time.Duration(defaultInt(s.Timeout, cfg.TimeoutSeconds)) * time.Second,
		Marker:   marker,
		DB:       firstNonEmpty(s.DB, cfg.DB),
	}, nil
}

func executeScrape(runCtx context.Context, ctx *Context, runner batchRunner, zips []string, settings scrapeSettings, s *ScrapeCmd) error {
	ctx.Logger.Info().Int("zips", len(zips)).Dur("delay", settings.Delay).Int("attempts", settings.Attempts).Msg("starting scrape")

	result, runErr := runner.Run(runCtx, zips)
	if errors.Is(runErr, scraper.ErrNoResults) {
		printRunSummary(ctx, result)
		return fmt.Errorf("no listings collected for %d postal code(s): %w", len(zips), runErr)
	}
	if runErr != nil {
		return finishInterrupted(ctx, result, zips, s, runErr)
	}

	listings := result.Listings
	unseen, err := unseenListings(s, listings)
	if err != nil {
		return err
	}

	if strings.TrimSpace(s.NewOut) != "" {
		if err := seen.WriteListings(s.NewOut, unseen); err != nil {
			return fmt.Errorf("write --new-out: %w", err)
		}
	}

	output := listings
	if s.NewOnly {
		output = unseen
	}
	if err := writeListings(ctx, output, s.OutputOptions); err != nil {
		return err
	}

	if settings.DB != "" {
		if err := storeListings(runCtx, ctx, settings.DB, result); err != nil {
			return err
		}
	}

	if s.SeenUpdate {
		if err := updateSeenHistory(s.Seen, unseen); err != nil {
			return err
		}
	}

	printRunSummary(ctx, result)
	return nil
}

// finishInterrupted writes the rows combined before the run stopped. The
// database and the seen history are left untouched for a partial run.
func finishInterrupted(ctx *Context, result scraper.Result, zips []string, s *ScrapeCmd, runErr error) error {
	if len(result.Listings) > 0 {
		output := result.Listings
		if s.NewOnly {
			unseen, err := unseenListings(s, output)
			if err != nil {
				return err
			}
			output = unseen
		}
		if err := writeListings(ctx, output, s.OutputOptions); err != nil {
			return err
		}
	}
	printRunSummary(ctx, result)
	return fmt.Errorf("scrape stopped after %d of %d postal code(s): %w", len(result.Outcomes), len(zips), runErr)
}

// unseenListings returns nil when no --seen history was given.
func unseenListings(s *ScrapeCmd, listings []models.Listing) ([]models.Listing, error) {
	if strings.TrimSpace(s.Seen) == "" {
		return nil, nil
	}
	history, err := seen.ReadListingsAllowMissing(s.Seen)
	if err != nil {
		return nil, fmt.Errorf("read --seen: %w", err)
	}
	unseen, _ := seen.Diff(listings, history)
	return unseen, nil
}

// storeListings replaces rows only for postal codes that produced a
// collection, so a failed fetch never wipes earlier data.
func storeListings(runCtx context.Context, ctx *Context, dsn string, result scraper.Result) error {
	writer, err := store.Open(runCtx, dsn, ctx.Logger)
	if err != nil {
		return fmt.Errorf("open --db: %w", err)
	}
	defer writer.Close()

	if err := writer.Replace(runCtx, okZips(result.Outcomes), result.Listings); err != nil {
		return fmt.Errorf("write --db: %w", err)
	}
	return nil
}

func okZips(outcomes []scraper.Outcome) []string {
	zips := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Status == scraper.StatusOK {
			zips = append(zips, outcome.Zip)
		}
	}
	return zips
}

func updateSeenHistory(seenPath string, input []models.Listing) error {
	seenListings, err := seen.ReadListingsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	merged, _ := seen.Merge(seenListings, input)
	if err := seen.WriteListings(seenPath, merged); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}
	return nil
}

func printRunSummary(ctx *Context, result scraper.Result) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	failures := result.Failures()
	line := formatRunSummary(result)
	if ctx.UI != nil {
		ctx.UI.Statusf(len(failures) == 0, "%s", line)
	} else {
		_, _ = fmt.Fprintln(ctx.Err, line)
	}

	if !ctx.Verbose || len(failures) == 0 || ctx.UI == nil {
		return
	}
	ctx.UI.Warnf("\nFailed postal codes:")
	for _, failure := range failures {
		ctx.UI.Warnf("  %s: %s: %v", failure.Zip, failure.Status, failure.Err)
	}
}

func formatRunSummary(result scraper.Result) string {
	if len(result.Outcomes) == 0 {
		return "summary: zips=0 listings=0"
	}

	parts := make([]string, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		if outcome.Status == scraper.StatusOK {
			parts = append(parts, fmt.Sprintf("%s:%d", outcome.Zip, outcome.Listings))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", outcome.Zip, outcome.Status))
	}
	return fmt.Sprintf(
		"summary: zips=%d failed=%d listings=%d by_zip=%s",
		len(result.Outcomes),
		len(result.Failures()),
		len(result.Listings),
		strings.Join(parts, ", "),
	)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
