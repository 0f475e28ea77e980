package seen

import (
	"testing"

	"github.com/MrJJimenez/rentcli/internal/models"
)

func card(address, postal, url string) models.Listing {
	return models.Listing{
		Source: models.SourceCards,
		Card:   &models.Card{Address: address, PostalCode: postal, URL: url},
	}
}

func home(address, zip string) models.Listing {
	return models.Listing{
		Source: models.SourceSearchData,
		Home:   &models.Home{Address: &address, Zipcode: &zip},
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  12   Water\tSt  ")
	want := "12 water st"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestKey(t *testing.T) {
	got, ok := Key(card("12 Water St", "01950", " https://www.zillow.com/homedetails/1_zpid/ "))
	if !ok {
		t.Fatalf("expected valid key")
	}
	if want := "url::https://www.zillow.com/homedetails/1_zpid"; got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}

	got, ok = Key(home("  9 Flatbush  Ave ", "11225"))
	if !ok {
		t.Fatalf("expected valid key for home")
	}
	if want := "9 flatbush ave::11225"; got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}

	if _, ok := Key(card("", "01950", "")); ok {
		t.Fatalf("expected invalid key without address or url")
	}
}

func TestDiff(t *testing.T) {
	newListings := []models.Listing{
		home("9 Flatbush Ave", "11225"),
		home("9  flatbush ave", "11225"),
		card("12 Water St", "01950", "https://www.zillow.com/homedetails/2_zpid/"),
		card("", "", ""),
	}
	seenListings := []models.Listing{
		home("9 FLATBUSH AVE", "11225"),
		home("No Zip", ""),
	}

	unseen, stats := Diff(newListings, seenListings)

	if len(unseen) != 1 {
		t.Fatalf("expected 1 unseen listing, got %d", len(unseen))
	}
	if unseen[0].Card == nil || unseen[0].Card.Address != "12 Water St" {
		t.Fatalf("unexpected unseen listing: %+v", unseen[0])
	}
	if stats.TotalNew != 4 {
		t.Fatalf("TotalNew = %d, want 4", stats.TotalNew)
	}
	if stats.TotalSeen != 2 {
		t.Fatalf("TotalSeen = %d, want 2", stats.TotalSeen)
	}
	if stats.InvalidSkipped() != 2 {
		t.Fatalf("InvalidSkipped = %d, want 2", stats.InvalidSkipped())
	}
	if stats.Unseen != 1 {
		t.Fatalf("Unseen = %d, want 1", stats.Unseen)
	}
}

func TestMergeAndIdempotency(t *testing.T) {
	existing := []models.Listing{
		card("12 Water St", "01950", "https://www.zillow.com/homedetails/2_zpid/"),
		card("", "", ""),
	}
	input := []models.Listing{
		card("12 Water Street", "01950", "https://www.zillow.com/homedetails/2_zpid"),
		home("9 Flatbush Ave", "11225"),
		home("", "11225"),
	}

	merged, stats := Merge(existing, input)
	if len(merged) != 3 {
		t.Fatalf("expected merged len=3, got %d", len(merged))
	}
	if merged[0].Card.Address != "12 Water St" {
		t.Fatalf("existing entry should win collision, got %+v", merged[0].Card)
	}
	if stats.Added != 1 {
		t.Fatalf("Added = %d, want 1", stats.Added)
	}
	if stats.InvalidSeen != 1 || stats.InvalidInput != 1 {
		t.Fatalf("unexpected invalid counts: %+v", stats)
	}
	if stats.TotalOut != 3 {
		t.Fatalf("TotalOut = %d, want 3", stats.TotalOut)
	}

	mergedAgain, statsAgain := Merge(merged, input)
	if len(mergedAgain) != len(merged) {
		t.Fatalf("expected idempotent merge length %d, got %d", len(merged), len(mergedAgain))
	}
	if statsAgain.Added != 0 {
		t.Fatalf("expected second merge Added=0, got %d", statsAgain.Added)
	}
}
