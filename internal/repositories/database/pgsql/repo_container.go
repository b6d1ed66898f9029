package pgsql

import (
	portsrepo "github.com/inei-sipp/presupuesto_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx-backed repository over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		MaestrosRepo:    NewMaestrosRepository(dbPool),
		PresupuestoRepo: NewPresupuestoRepository(dbPool),
		ImportacionRepo: NewImportacionRepository(dbPool),
	}
}
