package arbiter

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/residential-checks/internal/model"
)

// DefaultEnergySavingsFloor is the smallest contract energy-savings figure
// (kWh/year) treated as plausible.
var DefaultEnergySavingsFloor = decimal.NewFromInt(500)

var (
	numberShape = regexp.MustCompile(`^[+-]?\d[\d.,]*$`)
	// number followed by an optional unit such as "mm", "%" or "€".
	numberWithUnit = regexp.MustCompile(`^([+-]?\d[\d.,]*?\d|[+-]?\d)(\s*[^\d.,\s].*)?$`)
)

// ParseNumber parses a number written with either decimal convention.
// A single separator is the decimal mark; a separator that repeats is a
// thousands separator; with both present, the last one is the decimal mark.
func ParseNumber(s string) (decimal.Decimal, bool) {
	canon, ok := canonicalNumber(strings.TrimSpace(s))
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(canon)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// canonicalNumber rewrites t with "." as the decimal mark and no grouping.
func canonicalNumber(t string) (string, bool) {
	if !numberShape.MatchString(t) {
		return "", false
	}
	if last := t[len(t)-1]; last == '.' || last == ',' {
		return "", false
	}

	dots := strings.Count(t, ".")
	commas := strings.Count(t, ",")

	switch {
	case dots == 0 && commas == 0:
		return t, true
	case dots > 0 && commas > 0:
		dec, group := ",", "."
		if strings.LastIndex(t, ".") > strings.LastIndex(t, ",") {
			dec, group = ".", ","
		}
		if strings.Count(t, dec) > 1 {
			return "", false
		}
		i := strings.LastIndex(t, dec)
		intPart, frac := t[:i], t[i+1:]
		if !validGrouping(intPart, group) {
			return "", false
		}
		return strings.ReplaceAll(intPart, group, "") + "." + frac, true
	case dots > 1:
		if !validGrouping(t, ".") {
			return "", false
		}
		return strings.ReplaceAll(t, ".", ""), true
	case commas > 1:
		if !validGrouping(t, ",") {
			return "", false
		}
		return strings.ReplaceAll(t, ",", ""), true
	case commas == 1:
		return strings.Replace(t, ",", ".", 1), true
	default:
		return t, true
	}
}

// validGrouping checks that every group after the first has three digits.
func validGrouping(s, sep string) bool {
	parts := strings.Split(strings.TrimLeft(s, "+-"), sep)
	if len(parts) == 1 {
		return true
	}
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// NormalizeNumber renders a number in the regional display form: decimal
// comma, no grouping, and no all-zero fraction ("10314.00" becomes "10314",
// "3.26" becomes "3,26"). A trailing unit is kept. Anything that is not a
// number is returned trimmed and otherwise unchanged.
func NormalizeNumber(s string) string {
	t := strings.TrimSpace(s)
	m := numberWithUnit.FindStringSubmatch(t)
	if m == nil {
		return t
	}
	canon, ok := canonicalNumber(m[1])
	if !ok {
		return t
	}

	intPart, frac, _ := strings.Cut(canon, ".")
	if strings.Trim(frac, "0") == "" {
		frac = ""
	}
	out := intPart
	if frac != "" {
		out += "," + frac
	}
	return out + m[2]
}

// FloorCandidate is a numeric candidate; Floored candidates are only
// accepted at or above the floor.
type FloorCandidate struct {
	Value   model.Value
	Floored bool
}

// PickNumeric returns the index and trimmed text of the first candidate that
// passes the gate and parses as a number, applying floor to Floored
// candidates. It returns -1 and "" when none qualifies.
func PickNumeric(candidates []FloorCandidate, floor decimal.Decimal) (int, string) {
	for i, c := range candidates {
		if s, ok := numericValue(c, floor); ok {
			return i, s
		}
	}
	return -1, ""
}

func numericValue(c FloorCandidate, floor decimal.Decimal) (string, bool) {
	if !IsValid(c.Value, 1) {
		return "", false
	}
	raw, _ := c.Value.Get()
	s := strings.TrimSpace(raw)
	d, ok := ParseNumber(s)
	if !ok {
		return "", false
	}
	if c.Floored && d.LessThan(floor) {
		return "", false
	}
	return s, true
}

// NumericCandidates are the energy-savings candidates by source.
type NumericCandidates struct {
	Certificate      model.Value
	CalculationSheet model.Value
	Contract         model.Value
}

// PickBestNumericWithFloor prefers the installer certificate, then the
// calculation sheet, then the contract. The contract figure is only used when
// it is at least floor. The winning value is returned verbatim (trimmed).
func PickBestNumericWithFloor(c NumericCandidates, floor decimal.Decimal) string {
	_, s := PickNumeric([]FloorCandidate{
		{Value: c.Certificate},
		{Value: c.CalculationSheet},
		{Value: c.Contract, Floored: true},
	}, floor)
	return s
}
