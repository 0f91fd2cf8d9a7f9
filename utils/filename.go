package utils

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeFilename reduces an uploaded file name to a safe ASCII base name:
// accents are folded, path components dropped, and anything outside
// [A-Za-z0-9._-] becomes '_'. An empty result becomes "file".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		case r > 0x7f:
			// combining marks left over from NFKD, and non-Latin scripts
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}

// FileExt returns the lower-case extension of name without the dot.
func FileExt(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
