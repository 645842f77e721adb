package output

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/benvon/begone/internal/models"
	"howett.net/plist"
)

var sampleRecords = []models.NumberRecord{
	models.NewBlockedRecord("Orange", "+3360102030#"),
	models.NewBlockedRecord("Colis", "+33601020304"),
}

func decode(t *testing.T, data []byte) ([]map[string]string, int) {
	t.Helper()
	var got []map[string]string
	format, err := plist.Unmarshal(data, &got)
	if err != nil {
		t.Fatalf("plist.Unmarshal() error = %v", err)
	}
	return got, format
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatBinary, false},
		{"binary", FormatBinary, false},
		{"xml", FormatXML, false},
		{"json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()
	want := []map[string]string{
		{"title": "Orange", "number": "+3360102030#", "category": "0", "addNational": "true"},
		{"title": "Colis", "number": "+33601020304", "category": "0", "addNational": "true"},
	}
	tests := []struct {
		name       string
		format     Format
		prefix     string
		wantFormat int
	}{
		{"binary", FormatBinary, "bplist00", plist.BinaryFormat},
		{"xml", FormatXML, "<?xml", plist.XMLFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Write(&buf, sampleRecords, tt.format); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte(tt.prefix)) {
				t.Errorf("Write() output starts with %q, want %q", buf.Bytes()[:min(8, buf.Len())], tt.prefix)
			}
			got, format := decode(t, buf.Bytes())
			if format != tt.wantFormat {
				t.Errorf("decoded format = %d, want %d", format, tt.wantFormat)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("decoded records = %v, want %v", got, want)
			}
		})
	}
}

func TestWrite_EmptyList(t *testing.T) {
	t.Parallel()
	for _, format := range []Format{FormatBinary, FormatXML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Write(&buf, nil, format); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			got, _ := decode(t, buf.Bytes())
			if len(got) != 0 {
				t.Errorf("Write(nil) decoded to %v, want an empty array", got)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "blocklist.plist")
	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	if err := WriteFile(path, sampleRecords, FormatBinary); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	got, _ := decode(t, data)
	if len(got) != len(sampleRecords) {
		t.Errorf("WriteFile() wrote %d records, want %d", len(got), len(sampleRecords))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file in %s, found %d entries", dir, len(entries))
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing", "blocklist.plist")
	if err := WriteFile(path, sampleRecords, FormatBinary); err == nil {
		t.Error("Expected error when the output directory does not exist")
	}
}
