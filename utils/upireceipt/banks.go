package upireceipt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
)

// knownBankTokens are lower-case substrings that identify an Indian bank on
// a receipt line. An unlisted bank yields no bank name.
var knownBankTokens = []string{
	"state bank of india",
	"sbi",
	"icici",
	"hdfc",
	"axis",
	"kotak",
	"bank of baroda",
	"canara",
	"yes bank",
	"idfc",
	"punjab national",
	"union bank",
}

// maxBankContext caps the trailing context kept after a bank token, enough
// for "HDFC Bank XXXXXXXX1234" style masked account suffixes.
const maxBankContext = 64

var (
	bankMatcher = ahocorasick.NewStringMatcher(knownBankTokens)

	debitedFromRe = regexp.MustCompile(`(?i)\bdebited\s+from\b`)
	// Masked account numbers ("XXXXXXXX4321", "**** 4321") or a bank/wallet noun.
	accountLineRe = regexp.MustCompile(`(?i)[x*•]{4,}[ -]?\d{2,}|\b(?:bank|wallet|a/c)\b`)
)

// FindBank returns the debited bank or wallet. A "Debited from" line is
// preferred; otherwise the first line naming a known bank is used.
func FindBank(text string) string {
	lines := SplitLines(text)

	for i, line := range lines {
		loc := debitedFromRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if rest := trimSeparators(line[loc[1]:]); rest != "" {
			return truncateRunes(rest, 255)
		}
		// PhonePe prints the account on the line below the label. Anything
		// else there belongs to another field.
		if i+1 < len(lines) {
			next := trimSeparators(lines[i+1])
			if accountLineRe.MatchString(next) || bankTokenStart(next) >= 0 {
				return truncateRunes(next, 255)
			}
		}
	}

	for _, line := range lines {
		start := bankTokenStart(line)
		if start < 0 {
			continue
		}
		if ctx := trimSeparators(line[start:]); ctx != "" {
			return truncateRunes(ctx, maxBankContext)
		}
	}
	return ""
}

// bankTokenStart returns the byte offset of the earliest known bank token
// in line, or -1.
func bankTokenStart(line string) int {
	lower := asciiLower(line)
	start := -1
	for _, idx := range bankMatcher.MatchThreadSafe([]byte(lower)) {
		if pos := indexWord(lower, knownBankTokens[idx]); pos >= 0 && (start < 0 || pos < start) {
			start = pos
		}
	}
	return start
}

// indexWord finds token in s where it is not glued to other letters, so
// "axis" does not fire inside "taxis" and "icici" not inside "name@icici".
func indexWord(s, token string) int {
	from := 0
	for from <= len(s)-len(token) {
		i := strings.Index(s[from:], token)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(token)
		if (i == 0 || !(isWordByte(s[i-1]) || s[i-1] == '@')) && (end == len(s) || !isWordByte(s[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}

// asciiLower lower-cases ASCII letters only, keeping byte offsets aligned
// with the original line.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func trimSeparators(s string) string {
	return strings.Trim(s, " \t:-|,()")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
