// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFD, strips combining marks, and
// recomposes to NFC. "José Ramírez" becomes "Jose Ramirez".
//
//nolint:gochecknoglobals // transform.Chain is stateless and safe to share
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Accents replaces accented characters with their unaccented
// equivalents so matching and search are accent-insensitive.
// Input that fails to transform is returned unchanged.
func Accents(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// SearchTerm prepares a string for case- and accent-insensitive
// matching: accents folded, lowercased, whitespace trimmed.
func SearchTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(Accents(s)))
}

// Name trims a free-text name field and removes null bytes, which some
// paste sources include and which upset both JSON encoding and the
// search index.
func Name(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}
