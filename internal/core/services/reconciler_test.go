package services

import (
	"context"
	"testing"

	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/inei-sipp/presupuesto_backend/internal/parsers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PersisterTestSuite struct {
	suite.Suite
	mockMaestros    *MockMaestrosRepository
	mockPresupuesto *MockPresupuestoRepository
	persister       *persister
}

func (suite *PersisterTestSuite) SetupTest() {
	suite.mockMaestros = new(MockMaestrosRepository)
	suite.mockPresupuesto = new(MockPresupuestoRepository)
	suite.persister = &persister{
		maestros:    suite.mockMaestros,
		presupuesto: suite.mockPresupuesto,
		defaultAnio: 2026,
	}
}

func (suite *PersisterTestSuite) preloadMaestros() {
	suite.mockMaestros.On("ListUnidades", mock.Anything).
		Return([]models.UnidadEjecutora{{ID: 1, Codigo: "001"}}, nil).Once()
	suite.mockMaestros.On("ListMetas", mock.Anything).
		Return([]models.MetaPresupuestal{{ID: 2, Codigo: "0012", UnidadID: 1}}, nil).Once()
	suite.mockMaestros.On("ListClasificadores", mock.Anything).
		Return([]models.ClasificadorGasto{{ID: 3, Codigo: "2.3.1.1"}}, nil).Once()
}

func presupResult(recs ...parsers.Record) *parsers.ParseResult {
	return &parsers.ParseResult{Records: recs, Metadata: map[string]any{}}
}

func (suite *PersisterTestSuite) TestPersistFormato1_InsertaFilas() {
	ctx := context.Background()
	suite.preloadMaestros()
	suite.mockPresupuesto.On("FindProgramacion", mock.Anything, 2026, int64(1), int64(2), int64(3)).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPresupuesto.On("InsertProgramacion", mock.Anything, mock.MatchedBy(func(p models.ProgramacionPresupuestal) bool {
		return p.Anio == 2026 && p.ClasificadorID == 3 && p.PIM.Equal(decimal.NewFromInt(1800))
	})).Return(&models.ProgramacionPresupuestal{ID: 100}, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.Formato1, presupResult(
		parsers.PresupuestalRecord{Anio: 2026, UECodigo: "001", MetaCodigo: "0012", Clasificador: "2.3.1.1", PIA: 1500, PIM: 1800},
	))

	suite.Require().NoError(err)
	suite.Equal(1, n)
	suite.Empty(warnings)
	suite.mockPresupuesto.AssertExpectations(suite.T())
}

func (suite *PersisterTestSuite) TestPersistFormato1_DuplicadoOmitido() {
	ctx := context.Background()
	suite.preloadMaestros()
	suite.mockPresupuesto.On("FindProgramacion", mock.Anything, 2026, int64(1), int64(2), int64(3)).
		Return(&models.ProgramacionPresupuestal{ID: 100, Anio: 2026, ClasificadorID: 3}, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.Formato1, presupResult(
		parsers.PresupuestalRecord{Anio: 2026, UECodigo: "001", MetaCodigo: "0012", Clasificador: "2.3.1.1", PIM: 1800},
	))

	suite.Require().NoError(err)
	suite.Equal(0, n)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "Fila duplicada omitida")
	suite.mockPresupuesto.AssertNotCalled(suite.T(), "UpdateProgramacion", mock.Anything, mock.Anything)
}

func (suite *PersisterTestSuite) TestPersistSIAF_RefrescaEjecucion() {
	ctx := context.Background()
	suite.preloadMaestros()
	existing := &models.ProgramacionPresupuestal{
		ID: 100, Anio: 2026, UnidadID: 1, MetaID: 2, ClasificadorID: 3,
		PIM: decimal.NewFromInt(1800),
	}
	suite.mockPresupuesto.On("FindProgramacion", mock.Anything, 2026, int64(1), int64(2), int64(3)).
		Return(existing, nil).Once()
	suite.mockPresupuesto.On("UpdateProgramacion", mock.Anything, mock.MatchedBy(func(p models.ProgramacionPresupuestal) bool {
		// Only the incoming non-zero amounts are refreshed; PIM stays.
		return p.ID == 100 && p.Devengado.Equal(decimal.NewFromInt(50)) && p.PIM.Equal(decimal.NewFromInt(1800))
	})).Return(nil).Once()

	n, _, err := suite.persister.persist(ctx, parsers.FormatoSIAF, presupResult(
		parsers.PresupuestalRecord{Anio: 2026, UECodigo: "001", MetaCodigo: "0012", Clasificador: "2.3.1.1", Devengado: 50},
	))

	suite.Require().NoError(err)
	suite.Equal(1, n)
	suite.mockPresupuesto.AssertExpectations(suite.T())
}

func (suite *PersisterTestSuite) TestPersistSIAF_SinCambios() {
	ctx := context.Background()
	suite.preloadMaestros()
	existing := &models.ProgramacionPresupuestal{
		ID: 100, Anio: 2026, UnidadID: 1, MetaID: 2, ClasificadorID: 3,
		Devengado: decimal.NewFromInt(50),
	}
	suite.mockPresupuesto.On("FindProgramacion", mock.Anything, 2026, int64(1), int64(2), int64(3)).
		Return(existing, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.FormatoSIAF, presupResult(
		parsers.PresupuestalRecord{Anio: 2026, UECodigo: "001", MetaCodigo: "0012", Clasificador: "2.3.1.1", Devengado: 50},
	))

	suite.Require().NoError(err)
	suite.Equal(0, n)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "Registro existente sin cambios")
	suite.mockPresupuesto.AssertNotCalled(suite.T(), "UpdateProgramacion", mock.Anything, mock.Anything)
}

func (suite *PersisterTestSuite) TestPersistTablas_UpsertClasificadores() {
	ctx := context.Background()
	suite.mockMaestros.On("UpsertClasificador", mock.Anything, mock.MatchedBy(func(c models.ClasificadorGasto) bool {
		return c.Activo && c.Codigo != ""
	})).Return(&models.ClasificadorGasto{ID: 1}, nil).Twice()

	n, warnings, err := suite.persister.persist(ctx, parsers.FormatoTablas, presupResult(
		parsers.ClasificadorRecord{Codigo: "2.3.1.1", Descripcion: "Alimentos", TipoGenerico: "2.3"},
		parsers.ClasificadorRecord{Codigo: "2.6.2.2", Descripcion: "Equipos", TipoGenerico: "2.6"},
	))

	suite.Require().NoError(err)
	suite.Equal(2, n)
	suite.Empty(warnings)
	suite.mockMaestros.AssertExpectations(suite.T())
}

func (suite *PersisterTestSuite) TestPersistCuadroAOMeta_UpsertEncadenado() {
	ctx := context.Background()
	suite.mockMaestros.On("UpsertUnidad", mock.Anything, mock.MatchedBy(func(u models.UnidadEjecutora) bool {
		return u.Codigo == "001" && u.Activo
	})).Return(&models.UnidadEjecutora{ID: 1, Codigo: "001"}, nil).Once()
	suite.mockMaestros.On("ListUnidades", mock.Anything).
		Return([]models.UnidadEjecutora{{ID: 1, Codigo: "001"}}, nil).Once()
	suite.mockMaestros.On("UpsertMeta", mock.Anything, mock.MatchedBy(func(m models.MetaPresupuestal) bool {
		return m.Codigo == "0012" && m.UnidadID == 1 && m.Anio == 2026
	})).Return(&models.MetaPresupuestal{ID: 2, Codigo: "0012", UnidadID: 1}, nil).Once()
	suite.mockMaestros.On("ListMetas", mock.Anything).
		Return([]models.MetaPresupuestal{{ID: 2, Codigo: "0012", UnidadID: 1}}, nil).Once()
	suite.mockMaestros.On("UpsertActividad", mock.Anything, mock.MatchedBy(func(a models.ActividadOperativa) bool {
		return a.CodigoCeplan == "AOI001" && a.UnidadID != nil && *a.UnidadID == 1 &&
			a.MetaID != nil && *a.MetaID == 2
	})).Return(&models.ActividadOperativa{ID: 10}, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.FormatoCuadroAOMeta, presupResult(
		parsers.UnidadRecord{Codigo: "001", Nombre: "INEI SEDE CENTRAL", Sigla: "INEI"},
		parsers.MetaRecord{Codigo: "0012", Descripcion: "Meta 12", UECodigo: "001"},
		parsers.ActividadRecord{CodigoCeplan: "aoi001", Nombre: "Censo", UECodigo: "001", MetaCodigo: "0012"},
	))

	suite.Require().NoError(err)
	suite.Equal(3, n)
	suite.Empty(warnings)
	suite.mockMaestros.AssertExpectations(suite.T())
}

func (suite *PersisterTestSuite) TestPersistCuadroAOMeta_MetaSinUE() {
	ctx := context.Background()
	suite.mockMaestros.On("ListUnidades", mock.Anything).Return([]models.UnidadEjecutora{}, nil).Once()
	suite.mockMaestros.On("ListMetas", mock.Anything).Return([]models.MetaPresupuestal{}, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.FormatoCuadroAOMeta, presupResult(
		parsers.MetaRecord{Codigo: "0012", UECodigo: "099"},
	))

	suite.Require().NoError(err)
	suite.Equal(1, n)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "UE '099' no encontrada")
	suite.mockMaestros.AssertNotCalled(suite.T(), "UpsertMeta", mock.Anything, mock.Anything)
}

func (suite *PersisterTestSuite) TestPersistFormato04_FKSoloPorLookup() {
	ctx := context.Background()
	suite.mockMaestros.On("ListUnidades", mock.Anything).
		Return([]models.UnidadEjecutora{{ID: 1, Codigo: "001"}}, nil).Once()
	suite.mockMaestros.On("ListClasificadores", mock.Anything).
		Return([]models.ClasificadorGasto{}, nil).Once()
	suite.mockPresupuesto.On("InsertModificacion", mock.Anything, mock.MatchedBy(func(m models.ModificacionPresupuestal) bool {
		return m.UnidadID != nil && *m.UnidadID == 1 && m.ClasificadorID == nil &&
			m.Habilitadora.Equal(decimal.NewFromInt(1000))
	})).Return(&models.ModificacionPresupuestal{ID: 5}, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.Formato04, presupResult(
		parsers.ModificacionRecord{
			Anio: 2026, UECodigo: "001", Clasificador: "9.9.9.9",
			Tipo: "HABILITACION", Habilitadora: 1000,
		},
	))

	suite.Require().NoError(err)
	suite.Equal(1, n)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "Clasificador '9.9.9.9' no encontrado")
	suite.mockPresupuesto.AssertExpectations(suite.T())
	// Formato 04 never auto-creates master rows.
	suite.mockMaestros.AssertNotCalled(suite.T(), "UpsertUnidad", mock.Anything, mock.Anything)
	suite.mockMaestros.AssertNotCalled(suite.T(), "UpsertClasificador", mock.Anything, mock.Anything)
}

func (suite *PersisterTestSuite) preloadAOMensual() {
	ueID, metaID := int64(1), int64(2)
	suite.mockMaestros.On("ListActividades", mock.Anything).
		Return([]models.ActividadOperativa{{ID: 10, CodigoCeplan: "AOI001", UnidadID: &ueID, MetaID: &metaID}}, nil).Once()
	suite.mockMaestros.On("ListUnidades", mock.Anything).Return([]models.UnidadEjecutora{}, nil).Once()
	suite.mockMaestros.On("ListMetas", mock.Anything).Return([]models.MetaPresupuestal{}, nil).Once()
	suite.mockPresupuesto.On("FindProgramacionByScope", mock.Anything, 2026, ueID, metaID).
		Return(&models.ProgramacionPresupuestal{ID: 10}, nil).Once()
}

func (suite *PersisterTestSuite) TestPersistFormato5A_InsertaMeses() {
	ctx := context.Background()
	suite.preloadAOMensual()
	suite.mockPresupuesto.On("FindMensual", mock.Anything, int64(10), 1).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPresupuesto.On("InsertMensual", mock.Anything, mock.MatchedBy(func(m models.ProgramacionMensual) bool {
		return m.ProgramacionID == 10 && m.Mes == 1 && m.Programado.Equal(decimal.NewFromInt(100))
	})).Return(&models.ProgramacionMensual{ID: 99}, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.Formato5A, presupResult(
		parsers.MensualRecord{CodigoAO: "AOI001", Anio: 2026, Mes: 1, Programado: 100},
	))

	suite.Require().NoError(err)
	suite.Equal(1, n)
	suite.Empty(warnings)
	suite.mockPresupuesto.AssertExpectations(suite.T())
}

func (suite *PersisterTestSuite) TestPersistFormato5A_MesDuplicadoOmitido() {
	ctx := context.Background()
	suite.preloadAOMensual()
	suite.mockPresupuesto.On("FindMensual", mock.Anything, int64(10), 1).
		Return(&models.ProgramacionMensual{ID: 99, ProgramacionID: 10, Mes: 1}, nil).Once()

	n, warnings, err := suite.persister.persist(ctx, parsers.Formato5A, presupResult(
		parsers.MensualRecord{CodigoAO: "AOI001", Anio: 2026, Mes: 1, Programado: 100},
	))

	suite.Require().NoError(err)
	suite.Equal(0, n)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "ya existe; omitido")
	suite.mockPresupuesto.AssertNotCalled(suite.T(), "InsertMensual", mock.Anything, mock.Anything)
}

func (suite *PersisterTestSuite) TestPersistFormato5B_RefrescaEjecutado() {
	ctx := context.Background()
	suite.preloadAOMensual()
	existing := &models.ProgramacionMensual{
		ID: 99, ProgramacionID: 10, Mes: 4,
		Programado: decimal.NewFromInt(100),
	}
	suite.mockPresupuesto.On("FindMensual", mock.Anything, int64(10), 4).
		Return(existing, nil).Once()
	suite.mockPresupuesto.On("UpdateMensual", mock.Anything, mock.MatchedBy(func(m models.ProgramacionMensual) bool {
		return m.ID == 99 && m.Ejecutado.Equal(decimal.NewFromInt(80))
	})).Return(nil).Once()

	n, _, err := suite.persister.persist(ctx, parsers.Formato5B, presupResult(
		parsers.MensualRecord{CodigoAO: "AOI001", Anio: 2026, Mes: 4, Programado: 100, Ejecutado: 80, Saldo: 20},
	))

	suite.Require().NoError(err)
	suite.Equal(1, n)
	suite.mockPresupuesto.AssertExpectations(suite.T())
}

func (suite *PersisterTestSuite) TestPersistPassthrough_SoloConteo() {
	ctx := context.Background()

	n, warnings, err := suite.persister.persist(ctx, parsers.FormatoSIGA, presupResult(
		parsers.SigaRecord{NumeroRequerimiento: "0001"},
		parsers.SigaRecord{NumeroRequerimiento: "0002"},
		parsers.SigaRecord{NumeroRequerimiento: "0003"},
	))

	suite.Require().NoError(err)
	suite.Equal(3, n)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0], "3 registros leídos correctamente")
	suite.mockMaestros.AssertNotCalled(suite.T(), "ListUnidades", mock.Anything)
}

func (suite *PersisterTestSuite) TestPersistSinRegistros() {
	ctx := context.Background()

	n, warnings, err := suite.persister.persist(ctx, parsers.FormatoDesconocido, presupResult())

	suite.Require().NoError(err)
	suite.Equal(0, n)
	suite.Empty(warnings)
}

func TestPersisterTestSuite(t *testing.T) {
	suite.Run(t, new(PersisterTestSuite))
}
