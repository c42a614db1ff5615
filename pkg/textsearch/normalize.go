// Package textsearch implements the accent- and case-insensitive matching
// used by the console's list filters.
package textsearch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize decomposes s, strips combining marks and lower-cases the result,
// so "Perú" and "peru" compare equal.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Matches reports whether query occurs in any of fields after normalization.
// An empty query matches everything.
func Matches(query string, fields ...string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(Normalize(field), q) {
			return true
		}
	}
	return false
}
