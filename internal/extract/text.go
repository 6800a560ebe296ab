package extract

import (
	"regexp"
	"strings"
)

var ocrFixes = strings.NewReplacer(
	"’", "'",
	"´", "'",
	"`", "'",
	"″", "''",
	"Le6n", "León",
	"Direcci6n", "Dirección",
	"ubicaci6n", "ubicación",
)

var (
	hspaceRun = regexp.MustCompile(`[ \t]+`)
	blankRun  = regexp.MustCompile(`\n{3,}`)
)

// Clean applies the OCR fixes shared by every catalog: typographic quotes
// become ', a few accent-as-digit misreads are repaired, runs of spaces and
// tabs collapse to one space and at most one blank line is kept.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = ocrFixes.Replace(s)
	s = hspaceRun.ReplaceAllString(s, " ")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
