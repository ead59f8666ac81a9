package domain

import (
	"fmt"
	"strings"
)

// BuildFIPS concatenates a state and county code into a canonical 5-char
// FIPS string, zero-padding the state to 2 digits and the county to 3.
// Codes wider than their field or containing non-digits are rejected.
func BuildFIPS(state, county string) (string, error) {
	s := strings.TrimSpace(state)
	c := strings.TrimSpace(county)

	if !allDigits(s) || s == "" || len(s) > 2 {
		return "", fmt.Errorf("invalid state code %q", state)
	}
	if !allDigits(c) || c == "" || len(c) > 3 {
		return "", fmt.Errorf("invalid county code %q", county)
	}

	return fmt.Sprintf("%02s%03s", s, c), nil
}

// NormalizeFIPS canonicalizes a pre-built county code to fixed 5-char
// zero-padded form. It tolerates lost leading zeros ("6037" -> "06037") and
// a trailing ".0" from float round-trips ("6037.0" -> "06037"). Returns
// false for empty, non-numeric, or over-width input.
func NormalizeFIPS(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	if s == "" || len(s) > 5 || !allDigits(s) {
		return "", false
	}
	return strings.Repeat("0", 5-len(s)) + s, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
