package services

import (
	"context"
	"testing"

	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/inei-sipp/presupuesto_backend/internal/parsers"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ResolverTestSuite struct {
	suite.Suite
	mockMaestros    *MockMaestrosRepository
	mockPresupuesto *MockPresupuestoRepository
}

func (suite *ResolverTestSuite) SetupTest() {
	suite.mockMaestros = new(MockMaestrosRepository)
	suite.mockPresupuesto = new(MockPresupuestoRepository)
}

func (suite *ResolverTestSuite) preloadMaestros(unidades []models.UnidadEjecutora, metas []models.MetaPresupuestal, clasificadores []models.ClasificadorGasto) {
	suite.mockMaestros.On("ListUnidades", mock.Anything).Return(unidades, nil).Once()
	suite.mockMaestros.On("ListMetas", mock.Anything).Return(metas, nil).Once()
	suite.mockMaestros.On("ListClasificadores", mock.Anything).Return(clasificadores, nil).Once()
}

func (suite *ResolverTestSuite) TestResolvePresupuestales_CodigosConocidos() {
	ctx := context.Background()
	suite.preloadMaestros(
		[]models.UnidadEjecutora{{ID: 1, Codigo: "001"}},
		[]models.MetaPresupuestal{{ID: 2, Codigo: "0012"}},
		[]models.ClasificadorGasto{{ID: 3, Codigo: "2.3.1.5.1.2"}},
	)

	r, err := newCodeResolver(ctx, suite.mockMaestros, 2026)
	suite.Require().NoError(err)

	rows, err := r.resolvePresupuestales(ctx, []parsers.PresupuestalRecord{{
		Anio:         2026,
		UECodigo:     "001",
		MetaCodigo:   "0012",
		Clasificador: "2.3.1.5.1.2",
		PIA:          1500.50,
		PIM:          1800,
	}})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(2026, rows[0].Anio)
	suite.Equal(int64(1), rows[0].UnidadID)
	suite.Equal(int64(2), rows[0].MetaID)
	suite.Equal(int64(3), rows[0].ClasificadorID)
	suite.Equal("1500.5", rows[0].PIA.String())
	suite.Equal("1800", rows[0].PIM.String())
	suite.Empty(r.warnings)
	suite.mockMaestros.AssertExpectations(suite.T())
}

func (suite *ResolverTestSuite) TestResolvePresupuestales_AutoCreaMaestrosFaltantes() {
	ctx := context.Background()
	suite.preloadMaestros(nil, nil, nil)

	suite.mockMaestros.On("UpsertUnidad", mock.Anything, mock.MatchedBy(func(u models.UnidadEjecutora) bool {
		return u.Codigo == "002" && u.Nombre == "002 - ODEI AMAZONAS" &&
			u.Sigla == "UE-002" && u.Tipo == models.UETipoODEI && u.Activo
	})).Return(&models.UnidadEjecutora{ID: 7, Codigo: "002"}, nil).Once()
	suite.mockMaestros.On("UpsertMeta", mock.Anything, mock.MatchedBy(func(m models.MetaPresupuestal) bool {
		return m.Codigo == "0099" && m.UnidadID == 7 && m.Anio == 2026
	})).Return(&models.MetaPresupuestal{ID: 8, Codigo: "0099"}, nil).Once()
	suite.mockMaestros.On("UpsertClasificador", mock.Anything, mock.MatchedBy(func(c models.ClasificadorGasto) bool {
		return c.Codigo == "2.6.1.1" && c.TipoGenerico == "2.6"
	})).Return(&models.ClasificadorGasto{ID: 9, Codigo: "2.6.1.1"}, nil).Once()

	r, err := newCodeResolver(ctx, suite.mockMaestros, 2026)
	suite.Require().NoError(err)

	rows, err := r.resolvePresupuestales(ctx, []parsers.PresupuestalRecord{{
		UECodigo:     "002 - ODEI AMAZONAS",
		MetaCodigo:   "0099",
		Clasificador: "2.6.1.1",
		PIM:          500,
	}})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(int64(7), rows[0].UnidadID)
	suite.Equal(int64(8), rows[0].MetaID)
	suite.Equal(int64(9), rows[0].ClasificadorID)
	suite.Equal(2026, rows[0].Anio)
	suite.Contains(r.warnings, "UE '002' creada automaticamente.")
	suite.Contains(r.warnings, "Meta '0099' creada automaticamente.")
	suite.Contains(r.warnings, "Clasificador '2.6.1.1' creado automaticamente.")
	suite.mockMaestros.AssertExpectations(suite.T())
}

func (suite *ResolverTestSuite) TestResolvePresupuestales_SinClasificadorOmiteFila() {
	ctx := context.Background()
	suite.preloadMaestros(
		[]models.UnidadEjecutora{{ID: 1, Codigo: "001"}},
		[]models.MetaPresupuestal{{ID: 2, Codigo: "0001"}},
		nil,
	)

	r, err := newCodeResolver(ctx, suite.mockMaestros, 2026)
	suite.Require().NoError(err)

	rows, err := r.resolvePresupuestales(ctx, []parsers.PresupuestalRecord{{
		Anio:       2026,
		UECodigo:   "001",
		MetaCodigo: "0001",
	}})

	suite.Require().NoError(err)
	suite.Empty(rows)
	suite.Contains(r.warnings, "Registro sin clasificador; fila omitida.")
	suite.mockMaestros.AssertExpectations(suite.T())
}

func (suite *ResolverTestSuite) TestResolvePresupuestales_AnioDelPrimerRegistro() {
	ctx := context.Background()
	suite.preloadMaestros(
		[]models.UnidadEjecutora{{ID: 1, Codigo: "001"}},
		[]models.MetaPresupuestal{{ID: 2, Codigo: "0001"}},
		[]models.ClasificadorGasto{{ID: 3, Codigo: "2.3.1.1"}},
	)

	r, err := newCodeResolver(ctx, suite.mockMaestros, 2026)
	suite.Require().NoError(err)

	// The first record carrying a plausible year becomes the default for
	// records without one.
	rows, err := r.resolvePresupuestales(ctx, []parsers.PresupuestalRecord{
		{Anio: 2025, UECodigo: "001", MetaCodigo: "0001", Clasificador: "2.3.1.1"},
		{Anio: 0, UECodigo: "001", MetaCodigo: "0001", Clasificador: "2.3.1.1"},
	})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal(2025, rows[0].Anio)
	suite.Equal(2025, rows[1].Anio)
}

func (suite *ResolverTestSuite) preloadAO(actividades []models.ActividadOperativa, unidades []models.UnidadEjecutora, metas []models.MetaPresupuestal) {
	suite.mockMaestros.On("ListActividades", mock.Anything).Return(actividades, nil).Once()
	suite.mockMaestros.On("ListUnidades", mock.Anything).Return(unidades, nil).Once()
	suite.mockMaestros.On("ListMetas", mock.Anything).Return(metas, nil).Once()
}

func (suite *ResolverTestSuite) TestResolveMensuales_AOConocida() {
	ctx := context.Background()
	ueID, metaID := int64(1), int64(2)
	suite.preloadAO(
		[]models.ActividadOperativa{{ID: 10, CodigoCeplan: "AOI001", UnidadID: &ueID, MetaID: &metaID}},
		nil, nil,
	)
	suite.mockPresupuesto.On("FindProgramacionByScope", mock.Anything, 2026, ueID, metaID).
		Return(&models.ProgramacionPresupuestal{ID: 55}, nil).Once()

	r, err := newAOResolver(ctx, suite.mockMaestros, suite.mockPresupuesto)
	suite.Require().NoError(err)

	rows, err := r.resolveMensuales(ctx, []parsers.MensualRecord{
		{CodigoAO: "aoi001", Anio: 2026, Mes: 1, Programado: 100},
		{CodigoAO: "AOI001", Anio: 2026, Mes: 2, Programado: 200},
	})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal(int64(55), rows[0].ProgramacionID)
	suite.Equal(int64(55), rows[1].ProgramacionID)
	suite.Equal(1, rows[0].Mes)
	suite.Equal(2, rows[1].Mes)
	// Scope is cached: FindProgramacionByScope runs once for both months.
	suite.mockPresupuesto.AssertExpectations(suite.T())
}

func (suite *ResolverTestSuite) TestResolveMensuales_CreaPlaceholder() {
	ctx := context.Background()
	ueID, metaID := int64(1), int64(2)
	suite.preloadAO(
		[]models.ActividadOperativa{{ID: 10, CodigoCeplan: "AOI001", UnidadID: &ueID, MetaID: &metaID}},
		nil, nil,
	)
	suite.mockPresupuesto.On("FindProgramacionByScope", mock.Anything, 2026, ueID, metaID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockMaestros.On("FirstClasificador", mock.Anything).
		Return(&models.ClasificadorGasto{ID: 3, Codigo: "2.3.1.1"}, nil).Once()
	suite.mockPresupuesto.On("InsertProgramacion", mock.Anything, mock.MatchedBy(func(p models.ProgramacionPresupuestal) bool {
		return p.Anio == 2026 && p.UnidadID == ueID && p.MetaID == metaID && p.ClasificadorID == 3
	})).Return(&models.ProgramacionPresupuestal{ID: 77}, nil).Once()

	r, err := newAOResolver(ctx, suite.mockMaestros, suite.mockPresupuesto)
	suite.Require().NoError(err)

	rows, err := r.resolveMensuales(ctx, []parsers.MensualRecord{
		{CodigoAO: "AOI001", Anio: 2026, Mes: 3, Programado: 300},
	})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(int64(77), rows[0].ProgramacionID)
	suite.Require().Len(r.warnings, 1)
	suite.Contains(r.warnings[0], "placeholder")
	suite.mockPresupuesto.AssertExpectations(suite.T())
	suite.mockMaestros.AssertExpectations(suite.T())
}

func (suite *ResolverTestSuite) TestResolveMensuales_SinClasificadoresEnBD() {
	ctx := context.Background()
	ueID, metaID := int64(1), int64(2)
	suite.preloadAO(
		[]models.ActividadOperativa{{ID: 10, CodigoCeplan: "AOI001", UnidadID: &ueID, MetaID: &metaID}},
		nil, nil,
	)
	suite.mockPresupuesto.On("FindProgramacionByScope", mock.Anything, 2026, ueID, metaID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockMaestros.On("FirstClasificador", mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	r, err := newAOResolver(ctx, suite.mockMaestros, suite.mockPresupuesto)
	suite.Require().NoError(err)

	rows, err := r.resolveMensuales(ctx, []parsers.MensualRecord{
		{CodigoAO: "AOI001", Anio: 2026, Mes: 1, Programado: 100},
	})

	suite.Require().NoError(err)
	suite.Empty(rows)
	suite.Require().Len(r.warnings, 1)
	suite.Contains(r.warnings[0], "cargue el formato TABLAS primero")
}

func (suite *ResolverTestSuite) TestResolveMensuales_UEMetaSinResolver() {
	ctx := context.Background()
	suite.preloadAO(nil, nil, nil)

	r, err := newAOResolver(ctx, suite.mockMaestros, suite.mockPresupuesto)
	suite.Require().NoError(err)

	rows, err := r.resolveMensuales(ctx, []parsers.MensualRecord{
		{CodigoAO: "AOI999", Anio: 2026, Mes: 5, Programado: 100},
	})

	suite.Require().NoError(err)
	suite.Empty(rows)
	suite.Require().Len(r.warnings, 1)
	suite.Contains(r.warnings[0], "AOI999")
	suite.Contains(r.warnings[0], "no se pudo resolver UE/Meta")
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}
