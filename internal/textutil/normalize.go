package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFKD and removes combining marks so accented
// characters fold to their ASCII base ("Holocène" and "Holocene" share a key).
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey folds a label or filename stem into the canonical matching key:
// diacritics stripped, lowercased, every non-alphanumeric rune dropped.
// Returns "" for blank input.
func NormalizeKey(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if folded, _, err := transform.String(stripMarks, value); err == nil {
		value = folded
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// StripDateRange removes a trailing parenthetical from an era label:
// "Early Hominins (4.5M - 3M)" becomes "Early Hominins". Labels without a
// parenthetical are returned trimmed but otherwise unchanged.
func StripDateRange(label string) string {
	if idx := strings.Index(label, " ("); idx >= 0 {
		label = label[:idx]
	}
	return strings.TrimSpace(label)
}
