package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/benvon/begone/internal/models"
	"howett.net/plist"
)

// Format selects the property-list encoding
type Format string

const (
	// FormatBinary is the compact bplist00 encoding
	FormatBinary Format = "binary"
	// FormatXML is the XML 1.0 plist encoding
	FormatXML Format = "xml"
)

// ParseFormat converts a configuration value into a Format. Empty means binary.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatBinary, "":
		return FormatBinary, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be %q or %q)", s, FormatBinary, FormatXML)
	}
}

func (f Format) plistFormat() int {
	if f == FormatXML {
		return plist.XMLFormat
	}
	return plist.BinaryFormat
}

// record is the dictionary Begone expects for one blocked number
type record struct {
	Title       string `plist:"title"`
	Number      string `plist:"number"`
	Category    string `plist:"category"`
	AddNational string `plist:"addNational"`
}

func toRecords(records []models.NumberRecord) []record {
	out := make([]record, 0, len(records))
	for _, r := range records {
		out = append(out, record{
			Title:       r.Title,
			Number:      r.Number,
			Category:    r.Category.Code(),
			AddNational: strconv.FormatBool(r.AddNational),
		})
	}
	return out
}

// Write encodes records as a property list whose root is an array of dicts
func Write(w io.Writer, records []models.NumberRecord, format Format) error {
	enc := plist.NewEncoderForFormat(w, format.plistFormat())
	if format == FormatXML {
		enc.Indent("\t")
	}
	if err := enc.Encode(toRecords(records)); err != nil {
		return fmt.Errorf("failed to encode property list: %w", err)
	}
	return nil
}

// WriteFile writes records to path. The list is encoded into a temporary file
// next to path and renamed into place once complete.
func WriteFile(path string, records []models.NumberRecord, format Format) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, records, format); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
