package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits, in characters.
const (
	MaxAddressLength  = 500
	MaxLabelLength    = 100
	MaxPurposeLength  = 200
	MaxNotesLength    = 2000
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxEmailLength    = 254
)

// cleanText trims s and validates its length and characters. Control
// characters are rejected, except newlines and tabs when multiline is set.
func cleanText(field, s string, max int, required, multiline bool) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if required {
			return "", invalid("%s is required", field)
		}
		return "", nil
	}

	if !utf8.ValidString(s) {
		return "", invalid("%s is not valid UTF-8", field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", invalid("%s exceeds %d characters", field, max)
	}

	for _, r := range s {
		if multiline && (r == '\n' || r == '\t' || r == '\r') {
			continue
		}
		if unicode.IsControl(r) {
			return "", invalid("%s contains control characters", field)
		}
	}

	return s, nil
}

func cleanAddress(field, s string) (string, error) {
	return cleanText(field, s, MaxAddressLength, true, false)
}
