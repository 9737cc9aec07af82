// Package textnorm normalizes raw PRD text and model responses before any
// structural parsing happens. Model outputs arrive with smart quotes,
// zero-width characters, stray fences and partial JSON; every caller runs
// text through this package first.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	ctrlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	zeroWidth = regexp.MustCompile("[\u200B-\u200F\u2028\u2029\u2060\uFEFF]")
)

// smartQuotes maps the 8 typographic quote variants to ASCII equivalents.
var smartQuotes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
)

// Sanitize replaces smart quotes with ASCII equivalents, strips zero-width
// and control characters (common whitespace excluded), expands tabs to two
// spaces and trims. It never fails; empty input returns itself.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = smartQuotes.Replace(s)
	s = zeroWidth.ReplaceAllString(s, "")
	s = ctrlChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\t", "  ")
	return strings.TrimSpace(s)
}
