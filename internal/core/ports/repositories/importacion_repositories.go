package repositories

import (
	"context"

	"github.com/inei-sipp/presupuesto_backend/internal/models"
)

// ImportacionReader defines read operations over the import audit trail.
type ImportacionReader interface {
	// ListRegistros returns the audit trail newest-first, optionally
	// filtered by the year of the import date.
	ListRegistros(ctx context.Context, anio *int) ([]models.RegistroImportacion, error)
	// LatestPorFormato returns the most recent audit row per format.
	LatestPorFormato(ctx context.Context) (map[string]models.RegistroImportacion, error)
}

// ImportacionWriter defines write operations over the import audit trail.
type ImportacionWriter interface {
	InsertRegistro(ctx context.Context, r models.RegistroImportacion) (*models.RegistroImportacion, error)
	DeleteRegistrosByFormato(ctx context.Context, formato string) (int64, error)
}

// ImportacionRepositoryFacade combines audit trail read and write operations.
// Audit rows are written outside the import transaction so the trail survives
// a rolled-back run.
type ImportacionRepositoryFacade interface {
	ImportacionReader
	ImportacionWriter
}
