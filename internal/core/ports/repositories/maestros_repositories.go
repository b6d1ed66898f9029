package repositories

import (
	"context"

	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// UnidadEjecutoraReader defines read operations for executing units.
type UnidadEjecutoraReader interface {
	ListUnidades(ctx context.Context) ([]models.UnidadEjecutora, error)
	FindUnidadByCodigo(ctx context.Context, codigo string) (*models.UnidadEjecutora, error)
}

// UnidadEjecutoraWriter defines write operations for executing units.
type UnidadEjecutoraWriter interface {
	// UpsertUnidad inserts or updates a unit keyed by codigo and returns
	// the stored row.
	UpsertUnidad(ctx context.Context, unidad models.UnidadEjecutora) (*models.UnidadEjecutora, error)
	DeleteUnidades(ctx context.Context) (int64, error)
}

// MetaPresupuestalReader defines read operations for budget goals.
type MetaPresupuestalReader interface {
	ListMetas(ctx context.Context) ([]models.MetaPresupuestal, error)
}

// MetaPresupuestalWriter defines write operations for budget goals.
type MetaPresupuestalWriter interface {
	// UpsertMeta inserts or updates a goal keyed by (codigo, unidad) and
	// returns the stored row.
	UpsertMeta(ctx context.Context, meta models.MetaPresupuestal) (*models.MetaPresupuestal, error)
	DeleteMetas(ctx context.Context) (int64, error)
}

// ClasificadorGastoReader defines read operations for expense classifiers.
type ClasificadorGastoReader interface {
	ListClasificadores(ctx context.Context) ([]models.ClasificadorGasto, error)
	// FirstClasificador returns the lowest-id classifier, used to anchor
	// placeholder budget lines when monthly data arrives first.
	FirstClasificador(ctx context.Context) (*models.ClasificadorGasto, error)
}

// ClasificadorGastoWriter defines write operations for expense classifiers.
type ClasificadorGastoWriter interface {
	UpsertClasificador(ctx context.Context, clasificador models.ClasificadorGasto) (*models.ClasificadorGasto, error)
	DeleteClasificadores(ctx context.Context) (int64, error)
}

// ActividadOperativaReader defines read operations for operational activities.
type ActividadOperativaReader interface {
	ListActividades(ctx context.Context) ([]models.ActividadOperativa, error)
}

// ActividadOperativaWriter defines write operations for operational activities.
type ActividadOperativaWriter interface {
	// UpsertActividad inserts or updates an activity keyed by codigo CEPLAN
	// and returns the stored row.
	UpsertActividad(ctx context.Context, actividad models.ActividadOperativa) (*models.ActividadOperativa, error)
	DeleteActividades(ctx context.Context) (int64, error)
}

// MaestrosRepositoryFacade combines all master-data operations.
type MaestrosRepositoryFacade interface {
	UnidadEjecutoraReader
	UnidadEjecutoraWriter
	MetaPresupuestalReader
	MetaPresupuestalWriter
	ClasificadorGastoReader
	ClasificadorGastoWriter
	ActividadOperativaReader
	ActividadOperativaWriter
}

// MaestrosRepositoryWithTx extends the facade with transaction support.
type MaestrosRepositoryWithTx interface {
	MaestrosRepositoryFacade
	TransactionManager
	// WithTx returns a copy of the repository bound to the transaction.
	WithTx(tx pgx.Tx) MaestrosRepositoryFacade
}
