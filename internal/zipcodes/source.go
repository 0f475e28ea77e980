// Package zipcodes loads the ordered list of postal codes a batch runs over.
package zipcodes

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const DefaultColumn = "zip"

// FromArgs splits comma separated tokens from positional arguments.
// Blank tokens are dropped; order and duplicates are kept.
func FromArgs(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// Load reads postal codes from a .json file (string array) or a CSV
// dataset with a header row containing column.
func Load(path string, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadJSON(f)
	}
	return ReadCSV(f, column)
}

func ReadCSV(r io.Reader, column string) ([]string, error) {
	if strings.TrimSpace(column) == "" {
		column = DefaultColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("zip dataset is empty")
		}
		return nil, err
	}

	index := -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if strings.EqualFold(name, column) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("zip dataset has no %q column", column)
	}

	var zips []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if index >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[index])
		if value == "" {
			continue
		}
		zips = append(zips, value)
	}
	return zips, nil
}

func ReadJSON(r io.Reader) ([]string, error) {
	var values []any
	if err := json.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("parse zip list: %w", err)
	}

	zips := make([]string, 0, len(values))
	for idx, value := range values {
		zip, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("zip list entry %d must be a string", idx)
		}
		zip = strings.TrimSpace(zip)
		if zip == "" {
			continue
		}
		zips = append(zips, zip)
	}
	return zips, nil
}

// Resolve merges positional zips with an optional dataset file, args first.
func Resolve(args []string, path string, column string) ([]string, error) {
	zips := FromArgs(args)
	if strings.TrimSpace(path) != "" {
		loaded, err := Load(path, column)
		if err != nil {
			return nil, fmt.Errorf("read --zip-file %q: %w", path, err)
		}
		zips = append(zips, loaded...)
	}
	if len(zips) == 0 {
		return nil, fmt.Errorf("at least one postal code is required")
	}
	return zips, nil
}
