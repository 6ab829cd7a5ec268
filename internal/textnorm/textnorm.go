// Package textnorm canonicalizes knowledge item text before similarity
// comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransform decomposes to NFD, strips combining marks (accents), and
// recomposes to NFC, so "café" and "cafe" compare equal.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes title and body for comparison: accents stripped,
// lower-cased, punctuation reduced to spaces, whitespace collapsed. Title
// and body join with a single space so title terms contribute without
// dominating. Pure and total; empty inputs yield "".
func Normalize(title, body string) string {
	joined := strings.TrimSpace(title) + " " + strings.TrimSpace(body)
	return Fold(joined)
}

// Fold canonicalizes a single string with the same rules Normalize applies
// to the joined title and body.
func Fold(text string) string {
	folded, _, err := transform.String(foldTransform, text)
	if err != nil {
		// Transform failures leave the input usable as-is.
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}
