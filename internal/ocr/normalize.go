package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reCRLF     = regexp.MustCompile(`\r\n?`)
	reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)
	reMulti    = regexp.MustCompile(`\n{4,}`)
)

// Normalize unifies line endings, drops rule lines made of dashes or
// underscores and trims trailing blanks. Layout spacing inside lines is kept;
// field extractors do their own whitespace folding.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRightFunc(lines[i], unicode.IsSpace)
	}
	s = reMulti.ReplaceAllString(strings.Join(lines, "\n"), "\n\n\n")
	return strings.TrimSpace(s)
}

// Yield counts the non-space runes in s.
func Yield(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
