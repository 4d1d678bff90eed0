// Package textnorm provides diacritic-insensitive text normalization and
// the ordered name-matching pipeline used for entity resolution.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes to NFD, drops combining marks and
// recomposes.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold removes diacritics and lowercases without touching separators.
func Fold(s string) string {
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Normalize folds case and diacritics and collapses every separator run
// (whitespace, dots, slashes, hyphens, underscores) into a single space.
// "Byt č. 12/A" and "byt c 12 a" normalize identically.
func Normalize(s string) string {
	folded := Fold(s)

	var b strings.Builder
	b.Grow(len(folded))
	inSep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if inSep && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inSep = false
			b.WriteRune(r)
			continue
		}
		inSep = true
	}
	return b.String()
}

// Digits returns only the decimal digits of s, used for building-number
// token extraction.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
