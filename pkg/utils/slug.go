package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile("[^a-z0-9-]")
	repeatDashes = regexp.MustCompile("-+")
)

// Slugify converts a string to a URL-friendly slug. Accents are dropped,
// so "Lácteos y Huevos" becomes "lacteos-y-huevos".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = repeatDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
