package services

import (
	"context"

	portsrepo "github.com/inei-sipp/presupuesto_backend/internal/core/ports/repositories"
	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// --- Mock MaestrosRepository ---

type MockMaestrosRepository struct {
	mock.Mock
}

func (m *MockMaestrosRepository) ListUnidades(ctx context.Context) ([]models.UnidadEjecutora, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UnidadEjecutora), args.Error(1)
}

func (m *MockMaestrosRepository) FindUnidadByCodigo(ctx context.Context, codigo string) (*models.UnidadEjecutora, error) {
	args := m.Called(ctx, codigo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnidadEjecutora), args.Error(1)
}

func (m *MockMaestrosRepository) UpsertUnidad(ctx context.Context, unidad models.UnidadEjecutora) (*models.UnidadEjecutora, error) {
	args := m.Called(ctx, unidad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnidadEjecutora), args.Error(1)
}

func (m *MockMaestrosRepository) DeleteUnidades(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaestrosRepository) ListMetas(ctx context.Context) ([]models.MetaPresupuestal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MetaPresupuestal), args.Error(1)
}

func (m *MockMaestrosRepository) UpsertMeta(ctx context.Context, meta models.MetaPresupuestal) (*models.MetaPresupuestal, error) {
	args := m.Called(ctx, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MetaPresupuestal), args.Error(1)
}

func (m *MockMaestrosRepository) DeleteMetas(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaestrosRepository) ListClasificadores(ctx context.Context) ([]models.ClasificadorGasto, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ClasificadorGasto), args.Error(1)
}

func (m *MockMaestrosRepository) FirstClasificador(ctx context.Context) (*models.ClasificadorGasto, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClasificadorGasto), args.Error(1)
}

func (m *MockMaestrosRepository) UpsertClasificador(ctx context.Context, clasificador models.ClasificadorGasto) (*models.ClasificadorGasto, error) {
	args := m.Called(ctx, clasificador)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClasificadorGasto), args.Error(1)
}

func (m *MockMaestrosRepository) DeleteClasificadores(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaestrosRepository) ListActividades(ctx context.Context) ([]models.ActividadOperativa, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActividadOperativa), args.Error(1)
}

func (m *MockMaestrosRepository) UpsertActividad(ctx context.Context, actividad models.ActividadOperativa) (*models.ActividadOperativa, error) {
	args := m.Called(ctx, actividad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActividadOperativa), args.Error(1)
}

func (m *MockMaestrosRepository) DeleteActividades(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaestrosRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockMaestrosRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockMaestrosRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockMaestrosRepository) WithTx(tx pgx.Tx) portsrepo.MaestrosRepositoryFacade {
	m.Called(tx)
	return m
}

// --- Mock PresupuestoRepository ---

type MockPresupuestoRepository struct {
	mock.Mock
}

func (m *MockPresupuestoRepository) FindProgramacion(ctx context.Context, anio int, unidadID, metaID, clasificadorID int64) (*models.ProgramacionPresupuestal, error) {
	args := m.Called(ctx, anio, unidadID, metaID, clasificadorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgramacionPresupuestal), args.Error(1)
}

func (m *MockPresupuestoRepository) FindProgramacionByScope(ctx context.Context, anio int, unidadID, metaID int64) (*models.ProgramacionPresupuestal, error) {
	args := m.Called(ctx, anio, unidadID, metaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgramacionPresupuestal), args.Error(1)
}

func (m *MockPresupuestoRepository) InsertProgramacion(ctx context.Context, p models.ProgramacionPresupuestal) (*models.ProgramacionPresupuestal, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgramacionPresupuestal), args.Error(1)
}

func (m *MockPresupuestoRepository) UpdateProgramacion(ctx context.Context, p models.ProgramacionPresupuestal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPresupuestoRepository) DeleteProgramaciones(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPresupuestoRepository) FindMensual(ctx context.Context, programacionID int64, mes int) (*models.ProgramacionMensual, error) {
	args := m.Called(ctx, programacionID, mes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgramacionMensual), args.Error(1)
}

func (m *MockPresupuestoRepository) InsertMensual(ctx context.Context, row models.ProgramacionMensual) (*models.ProgramacionMensual, error) {
	args := m.Called(ctx, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgramacionMensual), args.Error(1)
}

func (m *MockPresupuestoRepository) UpdateMensual(ctx context.Context, row models.ProgramacionMensual) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockPresupuestoRepository) DeleteMensuales(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPresupuestoRepository) InsertModificacion(ctx context.Context, row models.ModificacionPresupuestal) (*models.ModificacionPresupuestal, error) {
	args := m.Called(ctx, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModificacionPresupuestal), args.Error(1)
}

func (m *MockPresupuestoRepository) DeleteModificaciones(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPresupuestoRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockPresupuestoRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPresupuestoRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPresupuestoRepository) WithTx(tx pgx.Tx) portsrepo.PresupuestoRepositoryFacade {
	m.Called(tx)
	return m
}

// --- Mock ImportacionRepository ---

type MockImportacionRepository struct {
	mock.Mock
}

func (m *MockImportacionRepository) ListRegistros(ctx context.Context, anio *int) ([]models.RegistroImportacion, error) {
	args := m.Called(ctx, anio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RegistroImportacion), args.Error(1)
}

func (m *MockImportacionRepository) LatestPorFormato(ctx context.Context) (map[string]models.RegistroImportacion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.RegistroImportacion), args.Error(1)
}

func (m *MockImportacionRepository) InsertRegistro(ctx context.Context, r models.RegistroImportacion) (*models.RegistroImportacion, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegistroImportacion), args.Error(1)
}

func (m *MockImportacionRepository) DeleteRegistrosByFormato(ctx context.Context, formato string) (int64, error) {
	args := m.Called(ctx, formato)
	return args.Get(0).(int64), args.Error(1)
}

// Compile-time checks that the mocks satisfy the ports.
var (
	_ portsrepo.MaestrosRepositoryWithTx    = (*MockMaestrosRepository)(nil)
	_ portsrepo.PresupuestoRepositoryWithTx = (*MockPresupuestoRepository)(nil)
	_ portsrepo.ImportacionRepositoryFacade = (*MockImportacionRepository)(nil)
)
