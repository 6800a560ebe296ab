package arbiter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/residential-checks/internal/model"
)

func vals(ss ...string) []model.Value {
	out := make([]model.Value, len(ss))
	for i, s := range ss {
		out[i] = model.Present(s)
	}
	return out
}

func TestPickBest_Empty(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 5, 100} {
		assert.Equal(t, "", PickBest(nil, n))
		assert.Equal(t, "", PickBest([]model.Value{}, n))
	}
}

func TestPickBest_SkipsSentinelAndDenylist(t *testing.T) {
	t.Parallel()

	got := PickBest(vals(" NOT FOUND ", "C", "Real Value Here"), 5)
	assert.Equal(t, "Real Value Here", got)
}

func TestPickBest_SkipsTooShort(t *testing.T) {
	t.Parallel()

	got := PickBest(vals("AB", "A Real Long Enough Value"), 10)
	assert.Equal(t, "A Real Long Enough Value", got)
}

func TestPickBest_TrimsWinner(t *testing.T) {
	t.Parallel()

	got := PickBest([]model.Value{model.Absent(), model.Present("  Calle Mayor 12, León \n")}, 8)
	assert.Equal(t, "Calle Mayor 12, León", got)
}

func TestPickBest_PriorityOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "first valid", PickBest(vals("first valid", "second valid"), 3))
}

func TestPickBest_NeverFabricates(t *testing.T) {
	t.Parallel()

	inputs := vals("", "x", "NOT FOUND", "CALLE", "  Plaza Mayor 1  ", "other")
	got := PickBest(inputs, 4)

	var trimmed []string
	for _, v := range inputs {
		trimmed = append(trimmed, strings.TrimSpace(v.OrEmpty()))
	}
	assert.Contains(t, trimmed, got)
}

func TestIsDenied(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"C", "cl", " Calle ", "AV", "s/n"} {
		assert.True(t, IsDenied(s), s)
	}
	for _, s := range []string{"AVD", "AVENIDA", "CALLE MAYOR", ""} {
		assert.False(t, IsDenied(s), s)
	}
	assert.True(t, IsValid(model.Present("AVD"), 3))
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  model.Value
		minLen int
		want   bool
	}{
		{"absent", model.Absent(), 0, false},
		{"empty", model.Present(""), 0, false},
		{"blank", model.Present("   "), 0, false},
		{"sentinel", model.Present("NOT FOUND"), 1, false},
		{"sentinel lower case", model.Present(" not found "), 1, false},
		{"too short", model.Present("abc"), 4, false},
		{"exact length", model.Present("abcd"), 4, true},
		{"accented length counts runes", model.Present("León"), 4, true},
		{"denylist C", model.Present("c"), 1, false},
		{"denylist CL", model.Present(" CL "), 1, false},
		{"denylist CALLE", model.Present("Calle"), 1, false},
		{"denylist AV", model.Present("AV"), 1, false},
		{"denylist S/N", model.Present("s/n"), 1, false},
		{"catastral carve-out", model.Present("2050816TM7925S0001YB"), 10, true},
		{"MRZ letters and filler", model.Present("DELCUETO<<MANOLO<<<<"), 1, false},
		{"MRZ short mixed", model.Present("IDESP1310<<"), 1, false},
		{"MRZ digits only long", model.Present("12345678901234"), 1, false},
		{"MRZ uppercase word", model.Present("ABCDEFGHIJ"), 1, false},
		{"nine char DNI", model.Present("13103004L"), 9, true},
		{"ordinary address", model.Present("CL MAYOR 12, 24001 LEON"), 8, true},
		{"climate zone", model.Present("E1"), 2, true},
		{"zero min length", model.Present("7"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsValid(tt.value, tt.minLen))
		})
	}
}

func TestIsValid_OrdinaryStringsPass(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"Juan Pérez García",
		"X:275624.89 Y:4741864.43 HUSO:30",
		"3 signature(s) found",
		"RES020",
		"12/03/2024",
		"10314",
		"3,26",
		"info@example.es",
	} {
		assert.True(t, IsValid(model.Present(s), len([]rune(strings.TrimSpace(s)))), s)
	}
}

func TestIsValid_MRZTokenRejectedRegardlessOfLength(t *testing.T) {
	t.Parallel()

	token := "ABCDEFGHIJ<<KLMNOPQR"
	assert.Len(t, token, 20)
	assert.False(t, IsValid(model.Present(token), 0))
	assert.False(t, IsValid(model.Present(token+"<<<<<<<<<<<<<"), 0))
}

func TestGate_FreeText(t *testing.T) {
	t.Parallel()

	free := Gate{MinLen: 3, FreeText: true}
	plain := Gate{MinLen: 3}

	for _, s := range []string{`"Juan Perez`, "!Maria Lopez", "''Calle Real 3", "«Avenida León 4"} {
		junk := model.Present(s)
		assert.False(t, free.Valid(junk), s)
		assert.True(t, plain.Valid(junk), s)
	}

	assert.True(t, free.Valid(model.Present("Juan Perez")))
	assert.True(t, free.Valid(model.Present("12 de marzo")))
	assert.True(t, free.Valid(model.Present("- 12 Calle Real")))
	assert.False(t, free.Valid(model.Present("NOT FOUND")))
}

func TestGate_Pick(t *testing.T) {
	t.Parallel()

	g := Gate{MinLen: 6, FreeText: true}
	assert.Equal(t, "Ana Gómez Ruiz", g.Pick(vals(`"!Ana`, "  Ana Gómez Ruiz ")))
	assert.Equal(t, "", g.Pick(vals(`"Ana Gomez`)))
}
