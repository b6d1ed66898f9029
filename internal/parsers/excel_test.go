package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		in       string
		def      float64
		expected float64
	}{
		{"1500", 0, 1500},
		{"1,234.56", 0, 1234.56},
		{"S/. 2,500.00", 0, 2500},
		{"  850.5  ", 0, 850.5},
		{"-", 0, 0},
		{"—", 0, 0},
		{"", 7, 7},
		{"texto", 3, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, toFloat(tt.in, tt.def), "toFloat(%q)", tt.in)
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 2026, toInt("2026", 0))
	assert.Equal(t, 2026, toInt("2026.0", 0))
	assert.Equal(t, 5, toInt("nada", 5))
}

func TestNormalizeClasificador(t *testing.T) {
	assert.Equal(t, "2.3.1.5.1.2", normalizeClasificador("2. 3.1 .5.1.2"))
	assert.Equal(t, "2.3.1.1", normalizeClasificador("2.3.1.1\n"))
}

func TestIsValidClasificador(t *testing.T) {
	assert.True(t, isValidClasificador("2.3"))
	assert.True(t, isValidClasificador("2.3.1.5.1.2"))
	assert.False(t, isValidClasificador("2"))
	assert.False(t, isValidClasificador("2.3.1.5.1.2.1"))
	assert.False(t, isValidClasificador("TOTAL"))
	assert.False(t, isValidClasificador(""))
}

func TestCleanStr(t *testing.T) {
	assert.Equal(t, "valor", cleanStr("  valor "))
	assert.Equal(t, "", cleanStr("NaN"))
	assert.Equal(t, "", cleanStr("none"))
}

func TestMatchColumn_ExactoAntesQueSubstring(t *testing.T) {
	headers := []string{"Desc Clasificador", "Clasificador", "PIM"}

	assert.Equal(t, 1, matchColumn(headers, "clasificador"))
	assert.Equal(t, 2, matchColumn(headers, "pim"))
	assert.Equal(t, -1, matchColumn(headers, "devengado"))
}

func TestFindMonthColumns(t *testing.T) {
	headers := []string{"Codigo AO", "Nombre", "Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

	cols := findMonthColumns(headers)

	assert.Len(t, cols, 12)
	assert.Equal(t, 2, cols[1])
	assert.Equal(t, 13, cols[12])
}

func TestNormalizeFecha(t *testing.T) {
	assert.Equal(t, "2026-03-15", normalizeFecha("15/03/2026"))
	assert.Equal(t, "2026-03-15", normalizeFecha("15-03-2026"))
	assert.Equal(t, "2026-03-15", normalizeFecha("2026-03-15"))
	assert.Equal(t, "marzo 15", normalizeFecha("marzo 15"))
	assert.Equal(t, "", normalizeFecha("  "))
}

func TestUECodigoFromNombre(t *testing.T) {
	assert.Equal(t, "001", ueCodigoFromNombre("001 - INEI SEDE CENTRAL"))
	assert.Equal(t, "002", ueCodigoFromNombre("002ODEI AMAZONAS"))
	assert.Equal(t, "", ueCodigoFromNombre("INEI"))
}

func TestForwardFillMerged(t *testing.T) {
	rows := [][]string{
		{"001", "INEI", "dato1"},
		{"", "", "dato2"},
		{"002", "", "dato3"},
	}

	filled := forwardFillMerged(rows, 2)

	assert.Equal(t, "001", filled[1][0])
	assert.Equal(t, "INEI", filled[1][1])
	assert.Equal(t, "002", filled[2][0])
	assert.Equal(t, "INEI", filled[2][1])
	// Columns beyond the fill width stay as-is.
	assert.Equal(t, "dato2", filled[1][2])
}
