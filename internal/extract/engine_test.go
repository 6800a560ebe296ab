package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/residential-checks/internal/model"
)

func TestField_FirstAcceptedRuleWins(t *testing.T) {
	t.Parallel()

	f := Field{Name: "x", Rules: []Rule{
		on(`code: (\w+)`, func(g []string) (string, bool) { return g[1], g[1] != "skip" }),
		on(`alt: (\w+)`),
	}}

	assert.Equal(t, "abc", f.Eval(NewText("code: abc alt: def")).OrEmpty())
	assert.Equal(t, "def", f.Eval(NewText("code: skip alt: def")).OrEmpty())
	assert.True(t, f.Eval(NewText("nothing")).IsAbsent())
}

func TestField_DeriveRunsLast(t *testing.T) {
	t.Parallel()

	f := Field{
		Name:   "x",
		Rules:  []Rule{on(`v=(\d+)`)},
		Derive: func(*Text) model.Value { return model.Present("derived") },
	}
	assert.Equal(t, "7", f.Eval(NewText("v=7")).OrEmpty())
	assert.Equal(t, "derived", f.Eval(NewText("none")).OrEmpty())
}

func TestRule_NotFoundSentinelIsAbsent(t *testing.T) {
	t.Parallel()

	f := Field{Name: "x", Rules: []Rule{on(`v=(.+)`)}}
	assert.True(t, f.Eval(NewText("v=NOT FOUND")).IsAbsent())
}

func TestText_ScopeFallback(t *testing.T) {
	t.Parallel()

	tx := &Text{Full: "all", Scopes: map[Scope]string{ScopeCedente: "ced"}}
	assert.Equal(t, "ced", tx.In(ScopeCedente))
	assert.Equal(t, "all", tx.In(ScopeCesionario))
	assert.Equal(t, "all", tx.In(ScopeFull))
	assert.True(t, tx.Has(ScopeCedente))
	assert.False(t, tx.Has(ScopeCesionario))
}

func TestChain(t *testing.T) {
	t.Parallel()

	p := chain(upper, suffix("!"))
	got, ok := p([]string{"x abc", " abc "})
	require.True(t, ok)
	assert.Equal(t, "ABC!", got)

	_, ok = chain(upper, minText(10))([]string{"x", "abc"})
	assert.False(t, ok)
}

func TestClean(t *testing.T) {
	t.Parallel()

	in := "  Castilla y Le6n\t\tDirecci6n:   la ubicaci6n\n\n\n\nD’Arco ´x´  "
	assert.Equal(t, "Castilla y León Dirección: la ubicación\n\nD'Arco 'x'", Clean(in))
	assert.Empty(t, Clean(""))
}

func TestActCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"RES20", "RES020", true},
		{"res00020", "RES020", true},
		{"RES010", "RES010", true},
		{"RES 020", "RES020", true},
		{"RES000", "", false},
	}
	for _, tt := range tests {
		got, ok := actCode([]string{tt.in, tt.in})
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSpanishDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "03/03/2024", SpanishDate("3", "marzo", "2024"))
	assert.Equal(t, "12/09/2023", SpanishDate("12", "Setiembre", "2023"))
	assert.Equal(t, "01/00/2020", SpanishDate("1", "foo", "2020"))

	got, ok := postDate([]string{"", "28", "DICIEMBRE", "2024"})
	require.True(t, ok)
	assert.Equal(t, "28/12/2024", got)
}

func TestParseUTM(t *testing.T) {
	t.Parallel()

	p, ok := ParseUTM("Coordenadas UTM 30, X:275624.89, Y:4741864.43")
	require.True(t, ok)
	assert.Equal(t, 30, p.Zone)
	assert.Equal(t, "X:275624.89 Y:4741864.43 HUSO:30", p.String())
	assert.Equal(t, 25830, p.SRID())
	assert.Equal(t, 25830, p.Point.SRID())
	assert.InDelta(t, 275624.89, p.Point.X(), 1e-6)
	assert.InDelta(t, 4741864.43, p.Point.Y(), 1e-6)

	p, ok = ParseUTM("X: 356000.5 Y: 4612000.25 HUSO: 29")
	require.True(t, ok)
	assert.Equal(t, "X:356000.5 Y:4612000.25 HUSO:29", p.String())

	p, ok = ParseUTM("X: 356000 Y: 4612000")
	require.True(t, ok)
	assert.Equal(t, DefaultUTMZone, p.Zone)

	_, ok = ParseUTM("UTM 99, X:1, Y:2")
	assert.False(t, ok)

	_, ok = ParseUTM("sin coordenadas")
	assert.False(t, ok)
}

func TestParseUTM_OutOfRange(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"UTM 30, X:1, Y:2",
		"UTM 30, X:4741864.43, Y:275624.89",
		"X: 12.5 Y: 4612000 HUSO: 30",
		"X: 356000 Y: 46120001",
	} {
		_, ok := ParseUTM(text)
		assert.False(t, ok, text)
	}

	p, ok := ParseUTM("UTM 30, X:100000, Y:0")
	require.True(t, ok)
	assert.Equal(t, "X:100000 Y:0 HUSO:30", p.String())

	got, ok := utmValue("Coordenadas UTM 30, X:95000, Y:4741864")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestPostHelpers(t *testing.T) {
	t.Parallel()

	got, ok := phone([]string{"", "+34 612-345-678"})
	assert.True(t, ok)
	assert.Equal(t, "+34612345678", got)
	_, ok = phone([]string{"", "612 34"})
	assert.False(t, ok)

	got, ok = thicknessCM([]string{"", "12,5"})
	assert.True(t, ok)
	assert.Equal(t, "125 mm", got)

	got, ok = thickness([]string{"", "8", "cm"})
	assert.True(t, ok)
	assert.Equal(t, "80 mm", got)

	got, ok = catastral([]string{"", "2050816 TM7925S 0001 YB"})
	assert.True(t, ok)
	assert.Equal(t, "2050816TM7925S0001YB", got)

	_, ok = minText(8)([]string{"", "CALLE"})
	assert.False(t, ok)
	_, ok = minText(1)([]string{"", "S/N"})
	assert.False(t, ok)

	got, ok = countSignatures("Firma: x\nFdo. y\nfirmado z")
	assert.True(t, ok)
	assert.Equal(t, "3 signature(s) found", got)
	_, ok = countSignatures("nada")
	assert.False(t, ok)

	got, ok = installerName([]string{"", "REFORMAS GARCIA S.L., con NIF B1"})
	assert.True(t, ok)
	assert.Equal(t, "REFORMAS GARCIA S.L.", got)
	_, ok = installerName([]string{"", "ACME CIF B1"})
	assert.False(t, ok)
}
