package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/twpayne/go-geom"
)

// DefaultUTMZone is the zone assumed when a document omits HUSO.
const DefaultUTMZone = 30

// etrs89UTMBase + zone is the EPSG code of ETRS89 / UTM zone N.
const etrs89UTMBase = 25800

var (
	utmLabelled = regexp.MustCompile(`(?i)UTM\s+(\d+),?\s*X:\s*([\d.]+),?\s*Y:\s*([\d. ]+)`)
	utmXY       = regexp.MustCompile(`(?i)X:\s*([\d.]+)[^Y]*Y:\s*([\d.]+)`)
	utmZone     = regexp.MustCompile(`(?i)HUSO[:\s]*(\d+)`)

	// utmExtent bounds easting and northing of a valid UTM coordinate.
	utmExtent = geom.NewBounds(geom.XY).Set(100000, 0, 900000, 10000000)
)

// UTMPoint is a projected coordinate with the digits as printed.
type UTMPoint struct {
	Zone  int
	X, Y  string
	Point *geom.Point
}

// String renders the canonical report form, e.g. "X:275624.89 Y:4741864.43 HUSO:30".
func (p UTMPoint) String() string {
	return fmt.Sprintf("X:%s Y:%s HUSO:%d", p.X, p.Y, p.Zone)
}

// SRID returns the ETRS89 / UTM EPSG code for the zone.
func (p UTMPoint) SRID() int {
	return etrs89UTMBase + p.Zone
}

// ParseUTM finds UTM coordinates in either "UTM 30, X:275624.89, Y:4741864.43"
// or "X: ... Y: ... HUSO: ..." form.
func ParseUTM(text string) (UTMPoint, bool) {
	if m := utmLabelled.FindStringSubmatch(text); m != nil {
		zone, err := strconv.Atoi(m[1])
		if err != nil {
			return UTMPoint{}, false
		}
		return newUTMPoint(zone, m[2], strings.ReplaceAll(strings.TrimSpace(m[3]), " ", ""))
	}

	if m := utmXY.FindStringSubmatch(text); m != nil {
		zone := DefaultUTMZone
		if z := utmZone.FindStringSubmatch(text); z != nil {
			if n, err := strconv.Atoi(z[1]); err == nil {
				zone = n
			}
		}
		return newUTMPoint(zone, m[1], m[2])
	}

	return UTMPoint{}, false
}

func newUTMPoint(zone int, x, y string) (UTMPoint, bool) {
	x, y = strings.TrimRight(x, "."), strings.TrimRight(y, ".")
	if zone < 1 || zone > 60 {
		return UTMPoint{}, false
	}
	dx, err := decimal.NewFromString(x)
	if err != nil {
		return UTMPoint{}, false
	}
	dy, err := decimal.NewFromString(y)
	if err != nil {
		return UTMPoint{}, false
	}
	p := UTMPoint{Zone: zone, X: x, Y: y}
	p.Point = geom.NewPointFlat(geom.XY, []float64{dx.InexactFloat64(), dy.InexactFloat64()}).SetSRID(p.SRID())
	if !utmExtent.OverlapsPoint(p.Point.Layout(), p.Point.Coords()) {
		return UTMPoint{}, false
	}
	return p, true
}

func utmValue(text string) (string, bool) {
	p, ok := ParseUTM(text)
	if !ok {
		return "", false
	}
	return p.String(), true
}
