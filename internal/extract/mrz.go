package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/residential-checks/internal/textutil"
)

var (
	mrzRun      = regexp.MustCompile(`[A-Z0-9<]{20,}`)
	startsAlpha = regexp.MustCompile(`^[A-Z]`)

	nameLabels = []*regexp.Regexp{
		rx(`(?i)APELLIDOS\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{4,}?)\s+NOMBRE\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{2,})`),
		rx(`(?i)NOMBRE\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{2,}?)\s+APELLIDOS\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{4,})`),
		rx(`(?i)APELLIDOS\s+Y\s+NOMBRE\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{8,})`),
		rx(`(?i)1\s*APELLIDO\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{2,}?)\s+2\s*APELLIDO\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{2,}?)\s+NOMBRE\s*[:\-]?\s*([A-ZÑÁÉÍÓÚ\s]{2,})`),
	}
	capsLine  = regexp.MustCompile(`^[A-ZÑÁÉÍÓÚ\s]{10,}$`)
	nameNoise = regexp.MustCompile(`\b(APELLIDOS|NOMBRE|DOCUMENTO|NIF|DNI|SEXO|NACIONALIDAD|FECHA|CADUCIDAD)\b`)
)

// NameFromMRZ reads "SURNAME<SURNAME<<GIVEN" from the MRZ. Among the runs
// holding "<<", name lines (no digits before the "<<") beat lines that
// start with a letter, which beat the rest; the longest run in the best
// tier wins.
func NameFromMRZ(text string) (string, bool) {
	var best string
	bestTier := 0
	for _, ln := range mrzRun.FindAllString(strings.ToUpper(text), -1) {
		if !strings.Contains(ln, "<<") {
			continue
		}
		tier := mrzTier(ln)
		if tier > bestTier || (tier == bestTier && len(ln) > len(best)) {
			best, bestTier = ln, tier
		}
	}
	if best == "" {
		return "", false
	}

	surname, given, _ := strings.Cut(best, "<<")
	full := textutil.CollapseSpace(strings.ReplaceAll(surname, "<", " ") + " " + strings.ReplaceAll(given, "<", " "))
	if len(full) < 6 {
		return "", false
	}
	return full, true
}

// NameFromLabels reads a printed identity-card name: labelled fields first,
// then the longest all-caps line. Garbage results are rejected.
func NameFromLabels(text string) (string, bool) {
	t := strings.TrimSpace(text)
	for i, re := range nameLabels {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		var name string
		switch len(m) - 1 {
		case 1:
			name = textutil.CollapseSpace(m[1])
		case 2:
			a, b := textutil.CollapseSpace(m[1]), textutil.CollapseSpace(m[2])
			if i == 1 {
				// NOMBRE ... APELLIDOS: surnames first in the output.
				a, b = b, a
			}
			name = strings.TrimSpace(a + " " + b)
		default:
			name = textutil.CollapseSpace(m[1] + " " + m[2] + " " + m[3])
		}
		if IsGarbageName(name) {
			return "", false
		}
		return name, true
	}

	var best string
	for _, ln := range strings.Split(t, "\n") {
		ln = textutil.CollapseSpace(ln)
		if capsLine.MatchString(ln) && len(ln) > len(best) {
			best = ln
		}
	}
	if best == "" || IsGarbageName(best) {
		return "", false
	}
	return best, true
}

func mrzTier(ln string) int {
	if !startsAlpha.MatchString(ln) {
		return 1
	}
	head, _, _ := strings.Cut(ln, "<<")
	if strings.ContainsAny(head, "0123456789") {
		return 2
	}
	return 3
}

// IsGarbageName rejects card labels, short strings and strings made of
// initials.
func IsGarbageName(name string) bool {
	up := strings.ToUpper(strings.TrimSpace(name))
	if up == "" || nameNoise.MatchString(up) {
		return true
	}
	tokens := strings.Fields(up)
	if len(up) < 10 || len(tokens) < 2 {
		return true
	}
	short := 0
	for _, tok := range tokens {
		if len([]rune(tok)) <= 2 {
			short++
		}
	}
	return short >= 2
}

// PersonName tries the MRZ, then the printed labels.
func PersonName(text string) (string, bool) {
	if name, ok := NameFromMRZ(text); ok {
		return name, true
	}
	return NameFromLabels(text)
}
