// Package sheet reads spreadsheet workbooks into plain cell grids.
package sheet

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned when the requested worksheet does not exist.
var ErrNoSheet = eris.New("sheet: worksheet not found")

// Options selects the worksheet to read.
type Options struct {
	SheetIndex int    // default 0, the first sheet
	SheetName  string // if set, overrides SheetIndex
}

// Grid is a worksheet as trimmed cell strings, row-major, zero based.
type Grid struct {
	Name string
	Rows [][]string
}

// Cell returns the value at row, col (zero based) or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// At returns the value at an A1-style reference such as "P4". Invalid
// references yield "".
func (g Grid) At(ref string) string {
	row, col, ok := ParseRef(ref)
	if !ok {
		return ""
	}
	return g.Cell(row, col)
}

// ParseRef converts an A1-style reference, absolute markers allowed, into
// zero-based row and column.
func ParseRef(ref string) (row, col int, ok bool) {
	c, r, err := excelize.CellNameToCoordinates(strings.TrimSpace(ref))
	if err != nil {
		return 0, 0, false
	}
	return r - 1, c - 1, true
}

// Read opens an XLSX file and returns the selected worksheet as a Grid.
// Formula cells carry their cached value.
func Read(path string, opts Options) (Grid, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Grid{}, eris.Wrapf(err, "sheet: open %s", path)
	}

	s, err := getSheet(f, opts)
	if err != nil {
		return Grid{}, err
	}

	g := Grid{Name: s.Name, Rows: make([][]string, 0, len(s.Rows))}
	for _, row := range s.Rows {
		g.Rows = append(g.Rows, rowToStrings(row))
	}
	return g, nil
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		s, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Wrapf(ErrNoSheet, "sheet: %q", opts.SheetName)
		}
		return s, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Wrapf(ErrNoSheet, "sheet: index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = strings.TrimSpace(cell.String())
	}
	return cells
}
