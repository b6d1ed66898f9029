package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCuadroAOMeta(t *testing.T) {
	data := buildWorkbook(t, "Cuadro AO-Meta", [][]any{
		{"CUADRO DE ACTIVIDADES OPERATIVAS"},
		{"Codigo UE", "Nombre UE", "Sigla", "Codigo Meta", "Descripcion Meta", "Codigo CEPLAN", "Nombre AO", "OEI", "AEI"},
		{"001", "INEI SEDE CENTRAL", "INEI", "0012", "Gestion censal", "AOI00101", "Planificacion del censo", "OEI.01", "AEI.01.01"},
		// Merged hierarchy cells arrive blank on continuation rows.
		{"", "", "", "", "", "aoi00102", "Ejecucion del censo", "OEI.01", "AEI.01.02"},
		{"002", "ODEI AMAZONAS", "ODEI-AMA", "0015", "Operacion departamental", "AOI00201", "Encuestas regionales", "OEI.02", "AEI.02.01"},
		{"", "", "", "", "", "X1", "codigo corto", "", ""},
	})

	res := ParseCuadroAOMeta(data, 2026)

	require.True(t, res.OK())
	unidades := recordsOfType[UnidadRecord](res)
	metas := recordsOfType[MetaRecord](res)
	actividades := recordsOfType[ActividadRecord](res)
	require.Len(t, unidades, 2)
	require.Len(t, metas, 2)
	require.Len(t, actividades, 3)

	assert.Equal(t, "001", unidades[0].Codigo)
	assert.Equal(t, "INEI", unidades[0].Sigla)
	assert.Equal(t, "CENTRAL", unidades[0].Tipo)
	assert.Equal(t, "ODEI", unidades[1].Tipo)

	assert.Equal(t, "0012", metas[0].Codigo)
	assert.Equal(t, "001", metas[0].UECodigo)
	assert.Equal(t, 2026, metas[0].Anio)

	assert.Equal(t, "AOI00101", actividades[0].CodigoCeplan)
	// Continuation row inherits the forward-filled hierarchy.
	assert.Equal(t, "AOI00102", actividades[1].CodigoCeplan)
	assert.Equal(t, "001", actividades[1].UECodigo)
	assert.Equal(t, "0012", actividades[1].MetaCodigo)
	assert.Equal(t, "002", actividades[2].UECodigo)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "X1")
	assert.Equal(t, 2, res.Metadata["total_ues"])
	assert.Equal(t, 3, res.Metadata["total_aos"])
}

func TestParseCuadroAOMeta_SinColumnaCeplan(t *testing.T) {
	data := buildWorkbook(t, "Cuadro AO-Meta", [][]any{
		{"Codigo Meta", "Descripcion Meta"},
		{"0012", "Gestion censal"},
	})

	res := ParseCuadroAOMeta(data, 0)

	assert.False(t, res.OK())
	assert.Empty(t, res.Records)
}
