package extract

import (
	"strings"

	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/sheet"
	"github.com/sells-group/residential-checks/internal/textutil"
)

// Calculation sheet layout, zero-based. Labels sit in column O and values
// in column P; the action row carries its code in O and the inputs to the
// right of it.
const (
	calcLabelCol = 14 // O
	calcValueCol = 15 // P
	clientPrefix = "Client :"
)

// rows are zero-based and inclusive.
var (
	areaRows    = [2]int{2, 4}
	percentRows = [2]int{4, 5}
	actionRows  = [2]int{9, 14}
)

// actionColumns maps the cells of the action row to fields.
var actionColumns = []struct {
	col   int
	field model.FieldName
}{
	{14, model.FieldActCode},       // O
	{15, model.FieldFp},            // P
	{16, model.FieldKi},            // Q
	{17, model.FieldKf},            // R
	{18, model.FieldSurface},       // S
	{19, model.FieldClimaticZone},  // T
	{20, model.FieldEnergySavings}, // U
}

// CalculationFields lists what CalculationSheet returns.
func CalculationFields() []model.FieldName {
	out := []model.FieldName{model.FieldClientName, model.FieldAreaTotal, model.FieldAreaAffected, model.FieldPercentage}
	for _, c := range actionColumns {
		out = append(out, c.field)
	}
	return out
}

// CalculationSheet reads the fixed-layout calculation workbook.
func CalculationSheet(g sheet.Grid) map[model.FieldName]model.Value {
	out := make(map[model.FieldName]model.Value, len(CalculationFields()))
	for _, f := range CalculationFields() {
		out[f] = model.Absent()
	}

	if a1 := g.At("A1"); strings.Contains(a1, clientPrefix) {
		_, rest, _ := strings.Cut(a1, clientPrefix)
		name, _, _ := strings.Cut(rest, "(")
		out[model.FieldClientName] = model.ValueOf(textutil.CollapseSpace(name))
	}

	out[model.FieldAreaTotal] = labelled(g, areaRows, "AREA TOTAL")
	out[model.FieldAreaAffected] = labelled(g, areaRows, "AREA AFECT")
	if v, ok := labelled(g, percentRows, "PORCENTAJE").Get(); ok {
		out[model.FieldPercentage] = model.Present(v + "%")
	}

	for r := actionRows[0]; r <= actionRows[1]; r++ {
		if !strings.Contains(strings.ToUpper(g.Cell(r, calcLabelCol)), "RES") {
			continue
		}
		for _, c := range actionColumns {
			out[c.field] = model.ValueOf(g.Cell(r, c.col))
		}
		break
	}
	return out
}

// labelled returns column P of the first row in span whose column O reads
// label, compared without accents or case.
func labelled(g sheet.Grid, span [2]int, label string) model.Value {
	for r := span[0]; r <= span[1]; r++ {
		if textutil.CollapseSpace(textutil.Fold(g.Cell(r, calcLabelCol))) != label {
			continue
		}
		if v := model.ValueOf(g.Cell(r, calcValueCol)); !v.IsAbsent() {
			return v
		}
	}
	return model.Absent()
}
