// Package slug provides URL-friendly slug generation and publish-year
// derivation for article addresses.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlphanumeric matches runs of anything that isn't a lowercase letter or digit.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// deaccent decomposes characters and drops combining marks, so "é" folds to "e".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// YearSentinel is returned by Year when the date cannot be parsed. It looks
// like a valid year segment on purpose: a bad date must never break URL
// construction, only produce an address nobody links to.
const YearSentinel = "0000"

// Generate creates a URL-friendly slug from the given string.
// Example: "Été à Saintes!" → "ete-a-saintes"
//
// Generate is total and idempotent; empty input yields the empty string,
// which callers must treat as an invalid slug.
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(deaccent, result); err == nil {
		result = folded
	}
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Year returns the 4-digit publish year of a calendar date string, as used
// in the canonical article path /{year}/{slug}. Malformed input returns
// YearSentinel instead of an error; dates are validated upstream at save time.
func Year(date string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, date); err == nil {
			return fmt.Sprintf("%04d", t.Year())
		}
	}
	return YearSentinel
}
