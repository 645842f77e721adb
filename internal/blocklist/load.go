package blocklist

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/benvon/begone/internal/models"
	"github.com/benvon/begone/internal/validation"
	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when the input holds no YAML document
var ErrEmptyDocument = errors.New("input document is empty")

// LoadEntries decodes and validates a YAML sequence of entries.
// Unknown keys are ignored.
func LoadEntries(r io.Reader) ([]models.Entry, error) {
	var entries []models.Entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("failed to parse entries: %w", err)
	}
	if entries == nil {
		return nil, ErrEmptyDocument
	}

	for i := range entries {
		if err := validation.ValidateEntry(&entries[i]); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, entries[i].Title, err)
		}
	}
	return entries, nil
}

// LoadEntriesFile reads entries from a YAML file
func LoadEntriesFile(path string) ([]models.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	entries, err := LoadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
