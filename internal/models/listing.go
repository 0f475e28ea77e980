package models

import (
	"strconv"
	"strings"
)

// Source identifies which page layout a listing was extracted from.
type Source string

const (
	SourceSearchData Source = "search-data"
	SourceCards      Source = "cards"
)

// Listing is one rental record. Exactly one of Home or Card is set,
// matching Source; the two layouts carry different field sets.
type Listing struct {
	Source    Source `json:"source"`
	SearchZip string `json:"search_zip,omitempty"`
	Home      *Home  `json:"home,omitempty"`
	Card      *Card  `json:"card,omitempty"`
}

// Home is a listing decoded from the embedded search-page data blob.
// Pointer fields are nil when the payload omitted them.
type Home struct {
	Address    *string  `json:"address,omitempty"`
	Zipcode    *string  `json:"zipcode,omitempty"`
	City       *string  `json:"city,omitempty"`
	State      *string  `json:"state,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	HomeType   *string  `json:"home_type,omitempty"`
	DaysListed *int     `json:"days_for_rent,omitempty"`
	Bedrooms   *float64 `json:"bedrooms,omitempty"`
	Bathrooms  *float64 `json:"bathrooms,omitempty"`
	LivingArea *float64 `json:"sqft,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

// Card is a listing scraped from a static result card. An empty string
// covers both a missing element and one with no text; the combined table
// reports either as a missing value.
type Card struct {
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	PostalCode       string `json:"postal_code,omitempty"`
	Price            string `json:"price,omitempty"`
	FactsAndFeatures string `json:"facts_and_features,omitempty"`
	Provider         string `json:"real_estate_provider,omitempty"`
	URL              string `json:"url,omitempty"`
	Title            string `json:"title,omitempty"`
}

// Field is one named, present value of a listing row.
type Field struct {
	Name  string
	Value string
}

// Column names, in the order each layout produces them.
const (
	ColumnSource           = "source"
	ColumnSearchZip        = "search_zip"
	ColumnAddress          = "address"
	ColumnZipcode          = "zipcode"
	ColumnCity             = "city"
	ColumnState            = "state"
	ColumnLatitude         = "latitude"
	ColumnLongitude        = "longitude"
	ColumnHomeType         = "home_type"
	ColumnDaysForRent      = "days_for_rent"
	ColumnBedrooms         = "bedrooms"
	ColumnBathrooms        = "bathrooms"
	ColumnSqft             = "sqft"
	ColumnPrice            = "price"
	ColumnPostalCode       = "postal_code"
	ColumnFactsAndFeatures = "facts_and_features"
	ColumnProvider         = "real_estate_provider"
	ColumnURL              = "url"
	ColumnTitle            = "title"
)

// Fields returns the present values of the listing in column order.
// Absent values are left out so a combined table can mark them missing.
func (l Listing) Fields() []Field {
	fields := []Field{{Name: ColumnSource, Value: string(l.Source)}}
	if l.SearchZip != "" {
		fields = append(fields, Field{Name: ColumnSearchZip, Value: l.SearchZip})
	}
	switch {
	case l.Home != nil:
		fields = append(fields, l.Home.Fields()...)
	case l.Card != nil:
		fields = append(fields, l.Card.Fields()...)
	}
	return fields
}

func (h Home) Fields() []Field {
	var fields []Field
	addString := func(name string, value *string) {
		if value != nil {
			fields = append(fields, Field{Name: name, Value: *value})
		}
	}
	addFloat := func(name string, value *float64) {
		if value != nil {
			fields = append(fields, Field{Name: name, Value: FormatNumber(*value)})
		}
	}

	addString(ColumnAddress, h.Address)
	addString(ColumnZipcode, h.Zipcode)
	addString(ColumnCity, h.City)
	addString(ColumnState, h.State)
	addFloat(ColumnLatitude, h.Latitude)
	addFloat(ColumnLongitude, h.Longitude)
	addString(ColumnHomeType, h.HomeType)
	if h.DaysListed != nil {
		fields = append(fields, Field{Name: ColumnDaysForRent, Value: strconv.Itoa(*h.DaysListed)})
	}
	addFloat(ColumnBedrooms, h.Bedrooms)
	addFloat(ColumnBathrooms, h.Bathrooms)
	addFloat(ColumnSqft, h.LivingArea)
	addFloat(ColumnPrice, h.Price)
	return fields
}

func (c Card) Fields() []Field {
	pairs := []Field{
		{ColumnAddress, c.Address},
		{ColumnCity, c.City},
		{ColumnState, c.State},
		{ColumnPostalCode, c.PostalCode},
		{ColumnPrice, c.Price},
		{ColumnFactsAndFeatures, c.FactsAndFeatures},
		{ColumnProvider, c.Provider},
		{ColumnURL, c.URL},
		{ColumnTitle, c.Title},
	}
	fields := pairs[:0]
	for _, field := range pairs {
		if field.Value != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

// Value returns the named field and whether the listing carries it.
func (l Listing) Value(name string) (string, bool) {
	for _, field := range l.Fields() {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Columns returns the union of field names across listings, in first-seen order.
func Columns(listings []Listing) []string {
	seen := map[string]struct{}{}
	var columns []string
	for _, listing := range listings {
		for _, field := range listing.Fields() {
			if _, ok := seen[field.Name]; ok {
				continue
			}
			seen[field.Name] = struct{}{}
			columns = append(columns, field.Name)
		}
	}
	return columns
}

// Row lays out listing values under columns; missing fields become "".
func Row(listing Listing, columns []string) []string {
	values := make(map[string]string, len(columns))
	for _, field := range listing.Fields() {
		values[field.Name] = field.Value
	}
	row := make([]string, len(columns))
	for i, column := range columns {
		row[i] = values[column]
	}
	return row
}

// Title returns a short human label for the listing.
func (l Listing) Title() string {
	if l.Card != nil && l.Card.Title != "" {
		return l.Card.Title
	}
	var parts []string
	for _, name := range []string{ColumnAddress, ColumnCity, ColumnState} {
		if value, ok := l.Value(name); ok && strings.TrimSpace(value) != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, ", ")
}
