package tool

import (
	"strings"
	"unicode"
)

// Slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single dash. The result is never empty.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return "org"
	}
	return b.String()
}
