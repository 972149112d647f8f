// Package text provides the normalization, fingerprinting and similarity
// primitives used by the uniqueness tracker. Everything in this package is a
// pure function over strings.
package text

import (
	"strings"
	"unicode"
)

// Normalize lowercases the input, drops every rune that is neither a word
// character nor whitespace, collapses whitespace runs to a single space and
// trims the result. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case isWordRune(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Words splits normalized content on whitespace. Returns nil for empty input.
func Words(normalized string) []string {
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// WordSet returns the deduplicated words of normalized content.
func WordSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, w := range fields {
		set[w] = struct{}{}
	}
	return set
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
