package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	portsrepo "github.com/inei-sipp/presupuesto_backend/internal/core/ports/repositories"
	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxImportacionRepository persists the import audit trail. It always runs
// on the pool, never inside the import transaction, so audit rows survive a
// rolled-back run.
type PgxImportacionRepository struct {
	BaseRepository
	db DBTX
}

// NewImportacionRepository creates a new repository for the audit trail.
func NewImportacionRepository(pool *pgxpool.Pool) portsrepo.ImportacionRepositoryFacade {
	return &PgxImportacionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		db:             pool,
	}
}

// Ensure implementation matches interface
var _ portsrepo.ImportacionRepositoryFacade = (*PgxImportacionRepository)(nil)

const registroColumns = `id, formato, archivo_nombre, fecha, usuario_id, usuario_username, ue_sigla,
	registros_ok, registros_error, estado, errores, warnings`

func scanRegistro(row pgx.Row) (models.RegistroImportacion, error) {
	var r models.RegistroImportacion
	var errores, warnings []byte
	err := row.Scan(&r.ID, &r.Formato, &r.ArchivoNombre, &r.Fecha, &r.UsuarioID, &r.UsuarioUsername, &r.UESigla,
		&r.RegistrosOK, &r.RegistrosError, &r.Estado, &errores, &warnings)
	if err != nil {
		return r, err
	}
	if len(errores) > 0 {
		_ = json.Unmarshal(errores, &r.Errores)
	}
	if len(warnings) > 0 {
		_ = json.Unmarshal(warnings, &r.Warnings)
	}
	return r, nil
}

// marshalLista serializes a message list to JSONB, keeping NULL for empty lists.
func marshalLista(msgs []string) ([]byte, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	return json.Marshal(msgs)
}

// InsertRegistro writes one audit row and returns it with its id.
func (r *PgxImportacionRepository) InsertRegistro(ctx context.Context, reg models.RegistroImportacion) (*models.RegistroImportacion, error) {
	errores, err := marshalLista(reg.Errores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal errores: %w", err)
	}
	warnings, err := marshalLista(reg.Warnings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal warnings: %w", err)
	}

	query := `
		INSERT INTO registros_importacion
			(formato, archivo_nombre, fecha, usuario_id, usuario_username, ue_sigla,
			 registros_ok, registros_error, estado, errores, warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + registroColumns + `;`
	stored, err := scanRegistro(r.db.QueryRow(ctx, query,
		reg.Formato, reg.ArchivoNombre, reg.Fecha, reg.UsuarioID, reg.UsuarioUsername, reg.UESigla,
		reg.RegistrosOK, reg.RegistrosError, reg.Estado, errores, warnings))
	if err != nil {
		return nil, fmt.Errorf("failed to insert registro de importacion: %w", err)
	}
	return &stored, nil
}

// ListRegistros returns the audit trail newest-first, optionally filtered by
// the year of the import date.
func (r *PgxImportacionRepository) ListRegistros(ctx context.Context, anio *int) ([]models.RegistroImportacion, error) {
	query := `SELECT ` + registroColumns + ` FROM registros_importacion`
	args := []any{}
	if anio != nil {
		query += ` WHERE EXTRACT(YEAR FROM fecha) = $1`
		args = append(args, *anio)
	}
	query += ` ORDER BY fecha DESC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registros: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RegistroImportacion, error) {
		return scanRegistro(row)
	})
}

// LatestPorFormato returns the most recent audit row per format.
func (r *PgxImportacionRepository) LatestPorFormato(ctx context.Context) (map[string]models.RegistroImportacion, error) {
	query := `
		SELECT DISTINCT ON (formato) ` + registroColumns + `
		FROM registros_importacion
		ORDER BY formato, fecha DESC;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest registros: %w", err)
	}
	defer rows.Close()

	registros, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RegistroImportacion, error) {
		return scanRegistro(row)
	})
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.RegistroImportacion, len(registros))
	for _, reg := range registros {
		latest[reg.Formato] = reg
	}
	return latest, nil
}

// DeleteRegistrosByFormato removes the audit rows of one format.
func (r *PgxImportacionRepository) DeleteRegistrosByFormato(ctx context.Context, formato string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM registros_importacion WHERE formato = $1;`, formato)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registros for %s: %w", formato, err)
	}
	return tag.RowsAffected(), nil
}
