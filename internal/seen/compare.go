package seen

import (
	"strings"

	"github.com/MrJJimenez/rentcli/internal/models"
)

const keySeparator = "::"

// DiffStats captures stats for A-B unseen filtering.
type DiffStats struct {
	TotalNew    int
	TotalSeen   int
	InvalidNew  int
	InvalidSeen int
	Unseen      int
}

// InvalidSkipped returns the total invalid records skipped during comparison.
func (s DiffStats) InvalidSkipped() int {
	return s.InvalidNew + s.InvalidSeen
}

// MergeStats captures stats for seen history updates.
type MergeStats struct {
	TotalSeen    int
	TotalInput   int
	InvalidSeen  int
	InvalidInput int
	Added        int
	TotalOut     int
}

// InvalidSkipped returns the total invalid records skipped during merge.
func (s MergeStats) InvalidSkipped() int {
	return s.InvalidSeen + s.InvalidInput
}

// Normalize lowercases value and collapses internal whitespace.
func Normalize(value string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	return strings.Join(fields, " ")
}

// Key identifies a listing across runs. Card listings carry a detail URL,
// which wins; otherwise the normalized address and postal code are used.
func Key(listing models.Listing) (string, bool) {
	if link, ok := listing.Value(models.ColumnURL); ok {
		link = strings.TrimRight(strings.TrimSpace(link), "/")
		if link != "" {
			return "url" + keySeparator + link, true
		}
	}

	address, _ := listing.Value(models.ColumnAddress)
	address = Normalize(address)
	postal, ok := listing.Value(models.ColumnPostalCode)
	if !ok {
		postal, _ = listing.Value(models.ColumnZipcode)
	}
	postal = Normalize(postal)
	if address == "" || postal == "" {
		return "", false
	}
	return address + keySeparator + postal, true
}

// Diff returns unseen listings from newListings using existing seenListings keys.
func Diff(newListings []models.Listing, seenListings []models.Listing) ([]models.Listing, DiffStats) {
	stats := DiffStats{
		TotalNew:  len(newListings),
		TotalSeen: len(seenListings),
	}

	seenKeys := make(map[string]struct{}, len(seenListings))
	for _, listing := range seenListings {
		key, ok := Key(listing)
		if !ok {
			stats.InvalidSeen++
			continue
		}
		seenKeys[key] = struct{}{}
	}

	newKeys := make(map[string]struct{}, len(newListings))
	unseen := make([]models.Listing, 0, len(newListings))
	for _, listing := range newListings {
		key, ok := Key(listing)
		if !ok {
			stats.InvalidNew++
			continue
		}
		if _, exists := newKeys[key]; exists {
			continue
		}
		newKeys[key] = struct{}{}
		if _, exists := seenKeys[key]; exists {
			continue
		}
		unseen = append(unseen, listing)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// Merge appends unique new listings into the seen history.
// Existing seen entries win collisions.
func Merge(existingSeen []models.Listing, input []models.Listing) ([]models.Listing, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(existingSeen),
		TotalInput: len(input),
	}

	keys := make(map[string]struct{}, len(existingSeen)+len(input))
	out := make([]models.Listing, 0, len(existingSeen)+len(input))

	for _, listing := range existingSeen {
		key, ok := Key(listing)
		if !ok {
			stats.InvalidSeen++
			out = append(out, listing)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, listing)
	}

	for _, listing := range input {
		key, ok := Key(listing)
		if !ok {
			stats.InvalidInput++
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, listing)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}
