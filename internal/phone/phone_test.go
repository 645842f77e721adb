package phone

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"international with trunk in parentheses", "+33 (0)6 01-02-03-04", "+33601020304"},
		{"trunk in parentheses without spaces", "+33(0)601020304", "+33601020304"},
		{"national with parenthesized trunk", "(0)6 01 02 03 04", "0601020304"},
		{"parenthesized zero inside the number", "+33 6 (0)1 02 03 04", "+33601020304"},
		{"parenthesized zero after trunk", "0 (0) 6", "006"},
		{"national with dots", "06.01.02.03.04", "0601020304"},
		{"national with spaces", "06 01 02 03 04", "0601020304"},
		{"wildcards kept", "+33 6 01 02 03 0#", "+3360102030#"},
		{"inner plus dropped", "+33+6", "+336"},
		{"leading whitespace before plus", "  +33 1", "+331"},
		{"letters removed", "tel: 01 23", "0123"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"national", "0601020304", "+33 6 01 02 03 04", false},
		{"international", "+33601020304", "+33 6 01 02 03 04", false},
		{"pattern", "060102030#", "+33 6 01 02 03 0#", false},
		{"all wildcards after trunk", "0#########", "+33 # ## ## ## ##", false},
		{"too short", "06010203", "", true},
		{"too long", "06010203040", "", true},
		{"no trunk digit", "6010203040", "", true},
		{"wildcard trunk", "##########", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Format(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidNumber) {
					t.Errorf("Format(%q) error = %v, want ErrInvalidNumber", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCommonPrefix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"none", nil, ""},
		{"single", []string{"0601"}, "0601"},
		{"shared", []string{"0601020304", "0601020399"}, "06010203"},
		{"shared up to last digit", []string{"0601020300", "0601020309"}, "060102030"},
		{"identical", []string{"0601020304", "0601020304"}, "0601020304"},
		{"disjoint", []string{"0601020304", "7601020304"}, ""},
		{"first is prefix of second", []string{"06", "0601"}, "06"},
		{"second is prefix of first", []string{"0601", "06"}, "06"},
		{"three values", []string{"0612", "0613", "0699"}, "06"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CommonPrefix(tt.values...); got != tt.want {
				t.Errorf("CommonPrefix(%q) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestRangePattern(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		first   string
		last    string
		want    string
		wantErr bool
	}{
		{"last digit pair", "0601020304", "0601020399", "+33 6 01 02 03 ##", false},
		{"last digit", "0601020300", "0601020309", "+33 6 01 02 03 0#", false},
		{"identical", "0601020304", "0601020304", "+33 6 01 02 03 04", false},
		{"block of ten thousand", "0756780000", "0756789999", "+33 7 56 78 ## ##", false},
		{"no common prefix", "0601020304", "7601020304", "", true},
		{"prefix without trunk digit", "6601020304", "6601020399", "", true},
		{"longer than national", "06010203041", "06010203041", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RangePattern(tt.first, tt.last)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RangePattern(%q, %q) error = %v, wantErr %v", tt.first, tt.last, err, tt.wantErr)
			}
			if tt.wantErr {
				var numErr *InvalidNumberError
				if !errors.As(err, &numErr) {
					t.Errorf("RangePattern error = %v, want *InvalidNumberError", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("RangePattern(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
			}
		})
	}
}

func TestRangePattern_WildcardCountMatchesPrefixLength(t *testing.T) {
	t.Parallel()
	first := "0601020304"
	for k := 1; k <= PatternLength; k++ {
		last := first
		if k < PatternLength {
			// Change the digit right after the shared prefix
			alt := byte('9')
			if first[k] == '9' {
				alt = '8'
			}
			last = first[:k] + string(alt) + first[k+1:]
		}

		got, err := RangePattern(first, last)
		if err != nil {
			t.Fatalf("k=%d: RangePattern(%q, %q) error = %v", k, first, last, err)
		}
		if n := strings.Count(got, string(Wildcard)); n != PatternLength-k {
			t.Errorf("k=%d: %q has %d wildcards, want %d", k, got, n, PatternLength-k)
		}
		groups := strings.Split(got, " ")
		if len(groups) != 6 || groups[0] != CountryCode || len(groups[1]) != 1 {
			t.Errorf("k=%d: %q is not grouped as +33 d dd dd dd dd", k, got)
		}
		for _, g := range groups[2:] {
			if len(g) != 2 {
				t.Errorf("k=%d: %q has group %q, want two characters", k, got, g)
			}
		}
	}
}

func TestPad(t *testing.T) {
	t.Parallel()
	if got := Pad("06"); got != "06########" {
		t.Errorf("Pad(06) = %q", got)
	}
	if got := Pad(""); got != "##########" {
		t.Errorf("Pad(\"\") = %q", got)
	}
	if got := Pad("06010203040"); got != "06010203040" {
		t.Errorf("Pad should leave longer input unchanged, got %q", got)
	}
}
