package seen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJJimenez/rentcli/internal/models"
)

// ReadListings loads a listing history file. A blank file is an empty history.
func ReadListings(path string) ([]models.Listing, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	listings := []models.Listing{}
	if len(data) == 0 {
		return listings, nil
	}
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}

// ReadListingsAllowMissing is ReadListings for a history that may not exist yet.
func ReadListingsAllowMissing(path string) ([]models.Listing, error) {
	listings, err := ReadListings(path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Listing{}, nil
	}
	return listings, err
}

// WriteListings replaces the history file through a temp file in the same
// directory, so an interrupted write leaves the previous history intact.
func WriteListings(path string, listings []models.Listing) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("history path is empty")
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
