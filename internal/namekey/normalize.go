// Package namekey canonicalizes player display names into comparison
// keys so that independently-spelled data sources can be reconciled.
// Handles common discrepancies: accents, Jr./Sr./III/IV suffixes, and
// initials (C.J. vs CJ).
package namekey

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned for empty or whitespace-only input.
var ErrInvalidName = errors.New("namekey: invalid player name")

var (
	suffixPattern = regexp.MustCompile(`(?i)\b(jr\.?|sr\.?|ii|iii|iv|v)\s*$`)
	punctPattern  = regexp.MustCompile(`[.'\-]`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// accentStripper decomposes to NFD and drops combining marks.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the canonical comparison key for a raw player name.
//
// Steps: strip accents, lowercase, strip generational suffixes, remove
// dots/apostrophes/hyphens (C.J. -> cj), collapse whitespace. Pure and
// deterministic; the only failure mode is empty input.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrInvalidName
	}

	ascii, _, err := transform.String(accentStripper, raw)
	if err != nil {
		// Transform failures on valid UTF-8 are not expected; fall back
		// to the raw string rather than dropping the record.
		ascii = raw
	}

	key := strings.ToLower(ascii)
	key = suffixPattern.ReplaceAllString(key, "")
	key = punctPattern.ReplaceAllString(key, "")
	key = spacePattern.ReplaceAllString(key, " ")
	return strings.TrimSpace(key), nil
}

// LastInitialKey extracts the "lastname + first initial" fallback key.
//
//	"LeBron James"   -> "james l"
//	"C.J. McCollum"  -> "mccollum c"
//
// Single-token names normalize to the token itself.
func LastInitialKey(raw string) string {
	key, err := Normalize(raw)
	if err != nil {
		return ""
	}
	parts := strings.Fields(key)
	if len(parts) < 2 {
		return key
	}
	return parts[len(parts)-1] + " " + parts[0][:1]
}
