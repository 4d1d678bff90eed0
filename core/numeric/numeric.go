// Package numeric centralizes locale-aware number parsing and formatting.
//
// Snapshot sources mix decimal commas, grouped thousands, currency and
// unit suffixes and spreadsheet error markers. Every coercion in the
// engine goes through this package so the defaulting semantics are
// identical and auditable at each call site.
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// sentinelTokens are placeholder values that mean "no data". They parse
// to zero and normalize to the empty string.
var sentinelTokens = map[string]struct{}{
	"n/a":           {},
	"#n/a":          {},
	"na":            {},
	"not available": {},
	"#value!":       {},
	"#div/0!":       {},
	"#ref!":         {},
	"#name?":        {},
	"-":             {},
	"--":            {},
	"—":             {},
	"null":          {},
	"nil":           {},
	"none":          {},
}

// IsSentinel reports whether the trimmed, lowercased value is a
// placeholder token rather than data.
func IsSentinel(s string) bool {
	_, ok := sentinelTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// CleanText normalizes a free-text cell. Sentinel tokens become the
// empty string; anything else is returned trimmed. Raw sentinels must
// never reach downstream computation or persisted records.
func CleanText(s string) string {
	t := strings.TrimSpace(s)
	if IsSentinel(t) {
		return ""
	}
	return t
}

// ParseFloat parses a locale-formatted numeric cell. It accepts decimal
// commas, space/dot/apostrophe thousands grouping and trailing currency
// or unit suffixes. The second return is false when the cell held no
// parsable number; the value is then 0.
func ParseFloat(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || IsSentinel(t) {
		return 0, false
	}

	t = stripSuffix(t)
	if t == "" {
		return 0, false
	}

	t = normalizeSeparators(t)

	d, err := decimal.NewFromString(t)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseFloatDefault parses like ParseFloat and returns def when the cell
// held no parsable number.
func ParseFloatDefault(s string, def float64) float64 {
	if v, ok := ParseFloat(s); ok {
		return v
	}
	return def
}

// stripSuffix drops a trailing currency/unit annotation ("Kč", "EUR",
// "m3", "kWh") and any leading currency symbol.
func stripSuffix(s string) string {
	// Leading symbols.
	s = strings.TrimLeft(s, "€$£  ")

	// Cut at the first rune that cannot be part of a number.
	end := len(s)
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case '-', '+', '.', ',', ' ', ' ', ' ', '\'':
			continue
		}
		end = i
		break
	}
	return strings.TrimSpace(s[:end])
}

// normalizeSeparators rewrites grouped, comma-decimal input into the
// canonical dot-decimal form decimal.NewFromString accepts.
func normalizeSeparators(s string) string {
	// Grouping spaces and apostrophes are never decimal separators.
	for _, sep := range []string{" ", " ", " ", "'"} {
		s = strings.ReplaceAll(s, sep, "")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The rightmost separator is the decimal one.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			// Multiple commas can only be grouping.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// FormatAmount renders a value in the canonical export form: comma
// decimal separator, space-grouped thousands, at most two decimal
// places. Zero renders as the empty string so round-trips can tell
// "no data" from "explicitly zero".
func FormatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	d := decimal.NewFromFloat(v).Round(2)

	neg := d.IsNegative()
	abs := d.Abs()

	intPart := abs.Floor()
	fracPart := abs.Sub(intPart)

	intStr := groupThousands(intPart.String())

	out := intStr
	if !fracPart.IsZero() {
		frac := fracPart.StringFixed(2) // "0.xx"
		out += "," + strings.TrimRight(frac[2:], "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// groupThousands inserts a space every three digits from the right.
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
