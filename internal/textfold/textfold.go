// Package textfold normalises free text for accent- and case-insensitive matching.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks, so "Totale Città" and
// "totale citta" compare equal.
func Fold(s string) string {
	// transform.Chain keeps state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// Contains reports whether sub occurs in s after folding both.
func Contains(s, sub string) bool {
	return strings.Contains(Fold(s), Fold(sub))
}

// ContainsAny reports whether any of subs occurs in s after folding.
func ContainsAny(s string, subs ...string) bool {
	folded := Fold(s)
	for _, sub := range subs {
		if strings.Contains(folded, Fold(sub)) {
			return true
		}
	}
	return false
}
