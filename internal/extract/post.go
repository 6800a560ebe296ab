package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/residential-checks/internal/arbiter"
	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/textutil"
)

var (
	catastralShape  = regexp.MustCompile(`^[0-9]+[A-Z]+[0-9]+[A-Z]+[0-9]+[A-Z]+$`)
	catastralLoose  = regexp.MustCompile(`^[0-9A-Z]{10,25}$`)
	streetPrefix    = regexp.MustCompile(`^(CL|C|CALLE|AV|AVENIDA|PL|PLAZA)`)
	hasLetter       = regexp.MustCompile(`[A-Z]`)
	hasDigit        = regexp.MustCompile(`\d`)
	whitespace      = regexp.MustCompile(`\s+`)
	nonPhone        = regexp.MustCompile(`[^\d+]`)
	trailingTaxID   = regexp.MustCompile(`(?i)(?:,?\s+con)?\s*\b(NIF|CIF)\b.*$`)
	signatureMarker = regexp.MustCompile(`(?i)Firma|Firmado|Fdo\.`)
)

// minText accepts collapsed text of at least n runes that is not a lone
// street abbreviation.
func minText(n int) PostFunc {
	return func(g []string) (string, bool) {
		s, _ := group1(g)
		return s, usableText(s, n)
	}
}

func usableText(s string, n int) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, model.NotFound) {
		return false
	}
	if len([]rune(s)) < n {
		return false
	}
	return !arbiter.IsDenied(s)
}

func upper(g []string) (string, bool) {
	s, _ := group1(g)
	return strings.ToUpper(s), true
}

func trimDot(g []string) (string, bool) {
	s, _ := group1(g)
	return strings.TrimRight(s, ". "), true
}

// decimalComma rewrites a dotted decimal with a comma.
func decimalComma(g []string) (string, bool) {
	s, _ := group1(g)
	return strings.ReplaceAll(s, ".", ","), true
}

// longerThan keeps values strictly longer than n runes.
func longerThan(n int) PostFunc {
	return func(g []string) (string, bool) {
		s, _ := group1(g)
		return s, len([]rune(s)) > n
	}
}

func suffix(sfx string) PostFunc {
	return func(g []string) (string, bool) {
		s, _ := group1(g)
		return s + sfx, true
	}
}

func constant(v string) PostFunc {
	return func([]string) (string, bool) { return v, true }
}

func wordsBetween(min, max int) PostFunc {
	return func(g []string) (string, bool) {
		s, _ := group1(g)
		n := len(strings.Fields(s))
		return s, n >= min && n <= max
	}
}

func rejectIf(re *regexp.Regexp) PostFunc {
	return func(g []string) (string, bool) {
		s, _ := group1(g)
		return s, !re.MatchString(s)
	}
}

// actCode normalises RES codes to three digits: "RES20" and "RES00020"
// both become "RES020".
func actCode(g []string) (string, bool) {
	s := strings.ToUpper(whitespace.ReplaceAllString(g[1], ""))
	num := strings.TrimLeft(strings.TrimPrefix(s, "RES"), "0")
	if num == "" {
		return "", false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("RES%03d", n), true
}

// catastral squeezes whitespace and checks the digits/letters alternation
// of a Spanish cadastral reference.
func catastral(g []string) (string, bool) {
	s := whitespace.ReplaceAllString(g[1], "")
	return s, catastralShape.MatchString(s)
}

// catastralLabelled accepts any 10 to 25 character alphanumeric run.
func catastralLabelled(g []string) (string, bool) {
	s := whitespace.ReplaceAllString(g[1], "")
	return s, catastralLoose.MatchString(s)
}

// catastralNextLine rejects captures that are really a street line.
func catastralNextLine(g []string) (string, bool) {
	s := strings.ToUpper(whitespace.ReplaceAllString(g[1], ""))
	if streetPrefix.MatchString(s) {
		return "", false
	}
	n := len(s)
	return s, hasLetter.MatchString(s) && hasDigit.MatchString(s) && n >= 10 && n <= 25
}

// numeric accepts a capture that parses as a regional number. Plausibility
// floors are left to the arbiter.
func numeric(g []string) (string, bool) {
	s := strings.TrimSpace(g[1])
	_, ok := arbiter.ParseNumber(s)
	return s, ok
}

// phone keeps digits and +, and needs at least nine digits.
func phone(g []string) (string, bool) {
	p := nonPhone.ReplaceAllString(g[1], "")
	return p, len(strings.Trim(p, "+")) >= 9
}

func squeeze(g []string) (string, bool) {
	return whitespace.ReplaceAllString(g[0], ""), true
}

// installerName strips a trailing tax id and needs two words.
func installerName(g []string) (string, bool) {
	s, _ := group1(g)
	s = strings.TrimSpace(trailingTaxID.ReplaceAllString(s, ""))
	return s, len(strings.Fields(s)) >= 2
}

// thicknessCM converts a centimetre reading to "N mm".
func thicknessCM(g []string) (string, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(g[1], ",", "."))
	if err != nil {
		return "", false
	}
	return d.Mul(decimal.NewFromInt(10)).Round(0).String() + " mm", true
}

// countSignatures reports "N signature(s) found" for the signature markers in s.
func countSignatures(s string) (string, bool) {
	n := len(signatureMarker.FindAllString(s, -1))
	if n == 0 {
		return "", false
	}
	return fmt.Sprintf("%d signature(s) found", n), true
}

func signaturePresent(s string) (string, bool) {
	if signatureMarker.MatchString(s) {
		return "Present", true
	}
	return "", false
}

func collapse(s string) string {
	return textutil.CollapseSpace(s)
}

// withDigit rejects identifiers that carry no digit, such as a captured word.
func withDigit(g []string) (string, bool) {
	s, _ := group1(g)
	return s, hasDigit.MatchString(s)
}

// thickness reads a number in group 1 and an optional unit in group 2.
// Centimetres are converted; a bare number is read as millimetres.
func thickness(g []string) (string, bool) {
	if len(g) > 2 && strings.EqualFold(g[2], "cm") {
		return thicknessCM(g)
	}
	n := strings.TrimRight(g[1], ".,")
	if n == "" {
		return "", false
	}
	return n + " mm", true
}
