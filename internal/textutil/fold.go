// Package textutil holds small text helpers shared by the classifier and the
// field extractors.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks, so "FOTOGRÁFICO" becomes
// "FOTOGRAFICO" and "Dirección" becomes "Direccion".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold upper-cases s and strips accents.
func Fold(s string) string {
	return strings.ToUpper(StripAccents(s))
}

var spaceRun = regexp.MustCompile(`\s+`)

// CollapseSpace replaces every whitespace run with one space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
