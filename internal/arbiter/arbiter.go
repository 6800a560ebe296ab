// Package arbiter decides which of several extracted candidates for the same
// fact is presented in the report.
//
// Every function here is pure: the result depends only on the ordered
// candidates and the thresholds passed in.
package arbiter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/residential-checks/internal/model"
)

// garbage tokens that extraction produces when a street-type prefix is
// captured on its own.
var denylist = map[string]struct{}{
	"C":     {},
	"CL":    {},
	"CALLE": {},
	"AV":    {},
	"S/N":   {},
}

// IsDenied reports whether s, trimmed and upper-cased, is a lone street-type
// token.
func IsDenied(s string) bool {
	_, bad := denylist[strings.ToUpper(strings.TrimSpace(s))]
	return bad
}

var (
	// nearMRZ matches machine-readable-zone noise from ID cards.
	nearMRZ = regexp.MustCompile(`^[0-9A-Z<]{10,}$`)
	// leadingJunk matches stray quote or punctuation glyphs injected by OCR
	// in front of real text.
	leadingJunk = regexp.MustCompile(`^[\p{P}\p{S}]{1,3}\p{L}`)
)

// Gate is a validity check with a field-specific minimum length. FreeText
// enables the leading-junk filter used for names and addresses.
type Gate struct {
	MinLen   int
	FreeText bool
}

// IsValid reports whether v passes the standard gate with minLen.
func IsValid(v model.Value, minLen int) bool {
	return Gate{MinLen: minLen}.Valid(v)
}

// PickBest returns the first valid candidate, trimmed, or "" if none
// qualifies.
func PickBest(candidates []model.Value, minLen int) string {
	return Gate{MinLen: minLen}.Pick(candidates)
}

// Pick returns the first candidate that passes g, trimmed, or "".
func (g Gate) Pick(candidates []model.Value) string {
	if i := g.first(candidates); i >= 0 {
		s, _ := candidates[i].Get()
		return strings.TrimSpace(s)
	}
	return ""
}

func (g Gate) first(candidates []model.Value) int {
	for i, c := range candidates {
		if g.Valid(c) {
			return i
		}
	}
	return -1
}

// Valid reports whether v passes every filter of the gate.
func (g Gate) Valid(v model.Value) bool {
	s, ok := v.Get()
	if !ok {
		return false
	}
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	upper := strings.ToUpper(t)
	if upper == model.NotFound {
		return false
	}
	if utf8.RuneCountInString(t) < g.MinLen {
		return false
	}
	if IsDenied(upper) {
		return false
	}
	if looksLikeMRZ(t) {
		return false
	}
	if g.FreeText && leadingJunk.MatchString(t) {
		return false
	}
	return true
}

// looksLikeMRZ reports machine-readable-zone shaped tokens. Long mixed
// alphanumeric codes such as catastral references are exempt.
func looksLikeMRZ(t string) bool {
	if !nearMRZ.MatchString(t) {
		return false
	}
	if utf8.RuneCountInString(t) >= 14 && hasDigit(t) && hasLetter(t) {
		return false
	}
	return true
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
