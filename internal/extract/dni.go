package extract

import (
	"regexp"
	"strings"
)

const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

var (
	dniShape = regexp.MustCompile(`^\d{8}[A-Z]$`)
	nieShape = regexp.MustCompile(`^[XYZ]\d{7}[A-Z]$`)

	cleanDNI = regexp.MustCompile(`\d{8}[A-Z]`)
	cleanNIE = regexp.MustCompile(`[XYZ]\d{7}[A-Z]`)
	noisyDNI = regexp.MustCompile(`^[0-9OIL]{8}[A-Z6IL1]$`)

	idSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", ":", "")
	numericFixes = strings.NewReplacer("O", "0", "I", "1", "L", "1")
)

func checkLetter(n int) byte {
	return dniLetters[n%23]
}

func digits(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, s != ""
}

// ValidDNI reports whether s is eight digits plus the mod-23 control letter.
func ValidDNI(s string) bool {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if !dniShape.MatchString(s) {
		return false
	}
	n, _ := digits(s[:8])
	return s[8] == checkLetter(n)
}

// ValidNIE reports whether s is a foreigner id: X, Y or Z (read as 0, 1, 2)
// followed by seven digits and the control letter.
func ValidNIE(s string) bool {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if !nieShape.MatchString(s) {
		return false
	}
	prefix := strings.IndexByte("XYZ", s[0])
	n, _ := digits(s[1:8])
	return s[8] == checkLetter(prefix*10_000_000+n)
}

// ValidID accepts a DNI or an NIE.
func ValidID(s string) bool {
	return ValidDNI(s) || ValidNIE(s)
}

// FindDNI scans text for a checksum-valid DNI. Clean matches are tried
// first, including ones embedded in longer tokens such as MRZ lines. Then
// an OCR-tolerant pass slides a nine-character window over the squeezed
// text, reading O as 0 and I or L as 1 inside the eight digits, 6 as G in
// the control position, and 1, I or L there as I then L.
// NIEs are accepted from the clean pass only.
func FindDNI(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	up := strings.ToUpper(text)

	for _, m := range cleanDNI.FindAllString(up, -1) {
		if ValidDNI(m) {
			return m, true
		}
	}
	for _, m := range cleanNIE.FindAllString(up, -1) {
		if ValidNIE(m) {
			return m, true
		}
	}

	squeezed := idSeparators.Replace(up)
	for i := 0; i+9 <= len(squeezed); i++ {
		w := squeezed[i : i+9]
		if !noisyDNI.MatchString(w) {
			continue
		}
		num := numericFixes.Replace(w[:8])
		for _, last := range controlCandidates(w[8:]) {
			if cand := num + last; ValidDNI(cand) {
				return cand, true
			}
		}
	}
	return "", false
}

func controlCandidates(raw string) []string {
	switch raw {
	case "6":
		return []string{"G"}
	case "1", "I", "L":
		return []string{"I", "L"}
	}
	return []string{raw}
}

// CorrectDNI repairs a single labelled candidate such as "7110944 96" or
// "O1234567-L". Separators are dropped, seven-digit numbers gain a leading
// zero and the OCR substitutions of FindDNI apply. Only checksum-valid
// results are returned.
func CorrectDNI(raw string) (string, bool) {
	c := idSeparators.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	if ValidID(c) {
		return c, true
	}
	if len(c) < 8 || len(c) > 9 {
		return "", false
	}
	num, last := numericFixes.Replace(c[:len(c)-1]), c[len(c)-1:]
	if len(num) == 7 {
		num = "0" + num
	}
	for _, l := range controlCandidates(last) {
		if cand := num + l; ValidDNI(cand) {
			return cand, true
		}
	}
	return "", false
}

// postDNI is a PostFunc wrapper around CorrectDNI.
func postDNI(g []string) (string, bool) {
	return CorrectDNI(g[1])
}
