package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/residential-checks/internal/textutil"
)

var spanishMonths = map[string]int{
	"ENERO": 1, "FEBRERO": 2, "MARZO": 3, "ABRIL": 4, "MAYO": 5, "JUNIO": 6,
	"JULIO": 7, "AGOSTO": 8, "SEPTIEMBRE": 9, "SETIEMBRE": 9, "OCTUBRE": 10,
	"NOVIEMBRE": 11, "DICIEMBRE": 12,
}

// SpanishDate renders "12", "marzo", "2024" as "12/03/2024". Unknown month
// names render as "00" so the day and year survive.
func SpanishDate(day, month, year string) string {
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		d = 0
	}
	m := spanishMonths[textutil.Fold(strings.TrimSpace(month))]
	return fmt.Sprintf("%02d/%02d/%s", d, m, strings.TrimSpace(year))
}

// postDate reads day, month name and year from groups 1 to 3.
func postDate(g []string) (string, bool) {
	if len(g) < 4 {
		return "", false
	}
	return SpanishDate(g[1], g[2], g[3]), true
}
