// Package textnorm canonicalizes free-text strings for identity comparison.
// Every title, artist name, cache key and session-seen key goes through
// Normalize so accent and case differences never cause false misses.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining diacritical marks.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize decomposes s, strips combining diacritical marks, lowercases and
// trims surrounding whitespace. Empty input yields the empty string. The
// function is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Malformed input passes through with case/space folding only.
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// Contains reports whether the normalized form of s contains the normalized
// form of substr.
func Contains(s, substr string) bool {
	return strings.Contains(Normalize(s), Normalize(substr))
}

// ContainsEither reports substring containment in either direction, which
// tolerates "The Beatles" vs "Beatles" style variance.
func ContainsEither(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
