package phone

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// PatternLength is the length of a French national number (trunk digit included)
	PatternLength = 10
	// Wildcard matches any digit in a Begone pattern
	Wildcard = '#'
	// CountryCode is prepended to every formatted number
	CountryCode = "+33"
)

// ErrInvalidNumber indicates a number that does not fit the French national layout
var ErrInvalidNumber = errors.New("invalid phone number")

var (
	// French number with either the country code or the trunk digit, wildcards allowed
	nationalRegex = regexp.MustCompile(`^(\+33|0)([0-9#])([0-9#]{2})([0-9#]{2})([0-9#]{2})([0-9#]{2})$`)

	// Trunk digit written in parentheses right after a leading country code, e.g. "+33 (0)6"
	trunkRegex = regexp.MustCompile(`^\s*(\+\d+)\s*\(\s*0\s*\)`)
)

// InvalidNumberError reports the number that failed national format validation
type InvalidNumberError struct {
	Number string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid phone number: %q", e.Number)
}

// Unwrap lets errors.Is match ErrInvalidNumber
func (e *InvalidNumberError) Unwrap() error {
	return ErrInvalidNumber
}

// Sanitize strips everything but a leading '+', digits and wildcards.
// A "(0)" trunk group directly after a leading country code is dropped as a
// whole; anywhere else its digit is kept.
func Sanitize(number string) string {
	number = trunkRegex.ReplaceAllString(number, "${1}")

	var builder strings.Builder
	builder.Grow(len(number))
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9', r == Wildcard:
			builder.WriteRune(r)
		case r == '+' && builder.Len() == 0:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Format validates a national number or pattern and rewrites it as "+33 d dd dd dd dd"
func Format(number string) (string, error) {
	m := nationalRegex.FindStringSubmatch(number)
	if m == nil {
		return "", &InvalidNumberError{Number: number}
	}
	return fmt.Sprintf("%s %s %s %s %s %s", CountryCode, m[2], m[3], m[4], m[5], m[6]), nil
}

// CommonPrefix returns the longest prefix shared by all values, or "" when there is none
func CommonPrefix(values ...string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, v := range values[1:] {
		for !strings.HasPrefix(v, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// Pad right-pads prefix with wildcards up to PatternLength.
// Longer inputs are returned unchanged so that Format rejects them.
func Pad(prefix string) string {
	if len(prefix) >= PatternLength {
		return prefix
	}
	return prefix + strings.Repeat(string(Wildcard), PatternLength-len(prefix))
}

// RangePattern compacts the first and last numbers of a contiguous range into a
// single formatted pattern, e.g. 0601020300..0601020309 -> "+33 6 01 02 03 0#".
func RangePattern(first, last string) (string, error) {
	pattern, err := Format(Pad(CommonPrefix(first, last)))
	if err != nil {
		return "", fmt.Errorf("range %s-%s: %w", first, last, err)
	}
	return pattern, nil
}
