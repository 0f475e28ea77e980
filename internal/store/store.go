package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MrJJimenez/rentcli/internal/models"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const (
	tableName    = "rental_listings"
	batchSize    = 50
	pingAttempts = 5
)

var pingBackoff = 2 * time.Second

// tableColumns are stored as text so both layouts share one wide table.
var tableColumns = []string{
	models.ColumnSource,
	models.ColumnSearchZip,
	models.ColumnAddress,
	models.ColumnZipcode,
	models.ColumnCity,
	models.ColumnState,
	models.ColumnLatitude,
	models.ColumnLongitude,
	models.ColumnHomeType,
	models.ColumnDaysForRent,
	models.ColumnBedrooms,
	models.ColumnBathrooms,
	models.ColumnSqft,
	models.ColumnPrice,
	models.ColumnPostalCode,
	models.ColumnFactsAndFeatures,
	models.ColumnProvider,
	models.ColumnURL,
	models.ColumnTitle,
}

// Writer persists the combined table to PostgreSQL or SQLite.
type Writer struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
}

// ParseDSN picks the driver for a --db value: postgres:// URLs go to lib/pq,
// sqlite:PATH or a *.db / *.sqlite path goes to SQLite.
func ParseDSN(dsn string) (Dialect, string, error) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(lower, "sqlite:"):
		path := strings.TrimPrefix(dsn[len("sqlite:"):], "//")
		if path == "" {
			return "", "", fmt.Errorf("sqlite dsn %q has no path", dsn)
		}
		return DialectSQLite, path, nil
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return DialectSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database %q: use postgres://... or sqlite:PATH", dsn)
	}
}

// Open connects, waits for the server and creates the table when missing.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*Writer, error) {
	dialect, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(dialect), source)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", dialect, err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Debug().Err(err).Int("attempt", i+1).Str("dialect", string(dialect)).Msg("database not ready")
		if i == pingAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(pingBackoff):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping failed after retries: %w", dialect, err)
	}

	w := &Writer{db: db, dialect: dialect, logger: logger}
	if err := w.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", dialect, err)
	}
	return w, nil
}

func (w *Writer) Dialect() Dialect {
	return w.dialect
}

func (w *Writer) migrate(ctx context.Context) error {
	id := "id SERIAL PRIMARY KEY"
	scrapedAt := "scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()"
	if w.dialect == DialectSQLite {
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
		scrapedAt = "scraped_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"
	}

	defs := []string{id}
	for _, column := range tableColumns {
		defs = append(defs, fmt.Sprintf("%s TEXT NOT NULL DEFAULT ''", column))
	}
	defs = append(defs, scrapedAt)

	statements := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", tableName, strings.Join(defs, ",\n\t")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_search_zip ON %s(search_zip)", tableName, tableName),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_source ON %s(source)", tableName, tableName),
	}
	for _, stmt := range statements {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Replace deletes stored rows for zips and inserts listings in one
// transaction. Rows for postal codes not in zips are left alone.
func (w *Writer) Replace(ctx context.Context, zips []string, listings []models.Listing) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", w.dialect, err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(zips) > 0 {
		args := make([]any, len(zips))
		marks := make([]string, len(zips))
		for i, zip := range zips {
			args[i] = zip
			marks[i] = w.placeholder(i + 1)
		}
		query := fmt.Sprintf("DELETE FROM %s WHERE search_zip IN (%s)", tableName, strings.Join(marks, ","))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: clear zips: %w", w.dialect, err)
		}
	}

	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := w.insertBatch(ctx, tx, listings[i:end]); err != nil {
			return fmt.Errorf("%s: insert: %w", w.dialect, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", w.dialect, err)
	}
	w.logger.Info().Int("zips", len(zips)).Int("rows", len(listings)).Str("table", tableName).Msg("stored listings")
	return nil
}

func (w *Writer) insertBatch(ctx context.Context, tx *sql.Tx, batch []models.Listing) error {
	width := len(tableColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx, listing := range batch {
		marks := make([]string, width)
		for col := range tableColumns {
			marks[col] = w.placeholder(idx*width + col + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(marks, ",")+")")
		for _, value := range models.Row(listing, tableColumns) {
			valueArgs = append(valueArgs, value)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		tableName, strings.Join(tableColumns, ","), strings.Join(valueStrings, ","))
	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

func (w *Writer) placeholder(n int) string {
	if w.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Rows returns stored rows for zip in insertion order, laid out under
// the table's text columns.
func (w *Writer) Rows(ctx context.Context, zip string) ([][]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE search_zip = %s ORDER BY id",
		strings.Join(tableColumns, ","), tableName, w.placeholder(1))
	rows, err := w.db.QueryContext(ctx, query, zip)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", w.dialect, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		values := make([]string, len(tableColumns))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", w.dialect, err)
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

func (w *Writer) Close() error {
	return w.db.Close()
}
