package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MrJJimenez/rentcli/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		dialect Dialect
		source  string
		wantErr bool
	}{
		{dsn: "postgres://user:pw@localhost:5432/rent?sslmode=disable", dialect: DialectPostgres, source: "postgres://user:pw@localhost:5432/rent?sslmode=disable"},
		{dsn: "postgresql://localhost/rent", dialect: DialectPostgres, source: "postgresql://localhost/rent"},
		{dsn: "sqlite:data/rent.db", dialect: DialectSQLite, source: "data/rent.db"},
		{dsn: "sqlite:///tmp/rent.db", dialect: DialectSQLite, source: "/tmp/rent.db"},
		{dsn: "listings.sqlite", dialect: DialectSQLite, source: "listings.sqlite"},
		{dsn: "sqlite:", wantErr: true},
		{dsn: "mysql://localhost/rent", wantErr: true},
	}

	for _, tt := range tests {
		dialect, source, err := ParseDSN(tt.dsn)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDSN(%q) expected error", tt.dsn)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDSN(%q) error = %v", tt.dsn, err)
		}
		if dialect != tt.dialect || source != tt.source {
			t.Fatalf("ParseDSN(%q) = %q, %q; want %q, %q", tt.dsn, dialect, source, tt.dialect, tt.source)
		}
	}
}

func openTemp(t *testing.T) *Writer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rent.db")
	w, err := Open(context.Background(), "sqlite:"+path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestReplaceStoresBothLayouts(t *testing.T) {
	w := openTemp(t)
	ctx := context.Background()

	price := 2750.0
	address := "9 Flatbush Ave"
	listings := []models.Listing{
		{Source: models.SourceSearchData, SearchZip: "11225", Home: &models.Home{Address: &address, Price: &price}},
		{Source: models.SourceCards, SearchZip: "11225", Card: &models.Card{Address: "1 Main St", Price: "$2,400/mo"}},
	}
	if err := w.Replace(ctx, []string{"11225"}, listings); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	rows, err := w.Rows(ctx, "11225")
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	want := [][]string{
		models.Row(listings[0], tableColumns),
		models.Row(listings[1], tableColumns),
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("Rows() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceOnlyTouchesGivenZips(t *testing.T) {
	w := openTemp(t)
	ctx := context.Background()

	first := []models.Listing{
		{Source: models.SourceCards, SearchZip: "01950", Card: &models.Card{Address: "12 Water St"}},
		{Source: models.SourceCards, SearchZip: "80524", Card: &models.Card{Address: "3 Elm St"}},
	}
	if err := w.Replace(ctx, []string{"01950", "80524"}, first); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	second := []models.Listing{
		{Source: models.SourceCards, SearchZip: "01950", Card: &models.Card{Address: "14 Water St"}},
	}
	if err := w.Replace(ctx, []string{"01950"}, second); err != nil {
		t.Fatalf("Replace() (2nd) error = %v", err)
	}

	rows, err := w.Rows(ctx, "01950")
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 1 || rows[0][2] != "14 Water St" {
		t.Fatalf("expected replaced row for 01950, got %v", rows)
	}

	rows, err = w.Rows(ctx, "80524")
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 1 || rows[0][2] != "3 Elm St" {
		t.Fatalf("expected untouched row for 80524, got %v", rows)
	}
}

func TestReplaceBatches(t *testing.T) {
	w := openTemp(t)
	ctx := context.Background()

	listings := make([]models.Listing, 0, batchSize*2+3)
	for i := 0; i < cap(listings); i++ {
		listings = append(listings, models.Listing{
			Source:    models.SourceCards,
			SearchZip: "80524",
			Card:      &models.Card{Address: "unit", Price: models.FormatNumber(float64(i))},
		})
	}
	if err := w.Replace(ctx, []string{"80524"}, listings); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	rows, err := w.Rows(ctx, "80524")
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != len(listings) {
		t.Fatalf("stored %d rows, want %d", len(rows), len(listings))
	}
	if rows[len(rows)-1][13] != models.FormatNumber(float64(len(listings)-1)) {
		t.Fatalf("rows out of order: last price %q", rows[len(rows)-1][13])
	}
}
