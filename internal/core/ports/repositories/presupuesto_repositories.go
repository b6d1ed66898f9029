package repositories

import (
	"context"

	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// ProgramacionReader defines read operations for annual budget lines.
type ProgramacionReader interface {
	// FindProgramacion locates a budget line by its full natural key.
	FindProgramacion(ctx context.Context, anio int, unidadID, metaID, clasificadorID int64) (*models.ProgramacionPresupuestal, error)
	// FindProgramacionByScope locates the first budget line for
	// (anio, unidad, meta) regardless of classifier.
	FindProgramacionByScope(ctx context.Context, anio int, unidadID, metaID int64) (*models.ProgramacionPresupuestal, error)
}

// ProgramacionWriter defines write operations for annual budget lines.
type ProgramacionWriter interface {
	InsertProgramacion(ctx context.Context, p models.ProgramacionPresupuestal) (*models.ProgramacionPresupuestal, error)
	UpdateProgramacion(ctx context.Context, p models.ProgramacionPresupuestal) error
	DeleteProgramaciones(ctx context.Context) (int64, error)
}

// MensualReader defines read operations for monthly programming rows.
type MensualReader interface {
	FindMensual(ctx context.Context, programacionID int64, mes int) (*models.ProgramacionMensual, error)
}

// MensualWriter defines write operations for monthly programming rows.
type MensualWriter interface {
	InsertMensual(ctx context.Context, m models.ProgramacionMensual) (*models.ProgramacionMensual, error)
	UpdateMensual(ctx context.Context, m models.ProgramacionMensual) error
	DeleteMensuales(ctx context.Context) (int64, error)
}

// ModificacionWriter defines write operations for budget modification rows.
type ModificacionWriter interface {
	InsertModificacion(ctx context.Context, m models.ModificacionPresupuestal) (*models.ModificacionPresupuestal, error)
	DeleteModificaciones(ctx context.Context) (int64, error)
}

// PresupuestoRepositoryFacade combines all budget-line operations.
type PresupuestoRepositoryFacade interface {
	ProgramacionReader
	ProgramacionWriter
	MensualReader
	MensualWriter
	ModificacionWriter
}

// PresupuestoRepositoryWithTx extends the facade with transaction support.
type PresupuestoRepositoryWithTx interface {
	PresupuestoRepositoryFacade
	TransactionManager
	// WithTx returns a copy of the repository bound to the transaction.
	WithTx(tx pgx.Tx) PresupuestoRepositoryFacade
}
