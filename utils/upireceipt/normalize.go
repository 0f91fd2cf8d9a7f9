// Package upireceipt recovers structured UPI transaction fields from the
// OCR text of payment-app screenshots (PhonePe, Google Pay, Paytm and
// generic UPI apps).
//
// Every function in this package is pure and safe for concurrent use.
package upireceipt

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

	// Rupee glyph variants OCR engines emit for the ₹ symbol.
	rupeeVariants = strings.NewReplacer("\u20a8", "\u20b9")
	// Devanagari "रु" abbreviates rupees only as a standalone token; inside a
	// word ("रुपये") it is left alone.
	devanagariRupeeRe = regexp.MustCompile(`(^|[^\p{L}\p{M}])\x{0930}\x{0941}\.?( |\n|\d|$)`)

	nbsp = strings.NewReplacer(
		"\u00a0", " ",
		"\u202f", " ",
		"\u2007", " ",
	)

	dividerRe    = regexp.MustCompile(`[|\x{00a6}\x{2022}\x{00b7}\x{25cf}\x{25aa}\x{2023}\x{2219}]+`)
	hspaceRe     = regexp.MustCompile(`[ \t\f\v]+`)
	lineEdgeRe   = regexp.MustCompile(` ?\n ?`)
	blankLinesRe = regexp.MustCompile(`\n{2,}`)
)

// Normalize canonicalises raw OCR output into the working form every
// recognizer runs against. It never fails and Normalize(Normalize(s)) ==
// Normalize(s).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	t := lineEndings.Replace(raw)
	t = rupeeVariants.Replace(t)
	// NFKC folds full-width digits, letters and "＠" that some OCR models produce.
	t = norm.NFKC.String(t)
	t = nbsp.Replace(t)
	t = dividerRe.ReplaceAllString(t, " ")
	t = hspaceRe.ReplaceAllString(t, " ")
	t = devanagariRupeeRe.ReplaceAllString(t, "${1}\u20b9${2}")
	t = lineEdgeRe.ReplaceAllString(t, "\n")
	t = blankLinesRe.ReplaceAllString(t, "\n")
	return strings.TrimSpace(t)
}

// SplitLines returns the non-empty, trimmed lines of text in order.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
