package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	portsrepo "github.com/inei-sipp/presupuesto_backend/internal/core/ports/repositories"
	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxMaestrosRepository persists the master data: unidades ejecutoras,
// metas presupuestales, clasificadores de gasto and actividades operativas.
type PgxMaestrosRepository struct {
	BaseRepository
	db DBTX
}

// NewMaestrosRepository creates a new repository for master data.
func NewMaestrosRepository(pool *pgxpool.Pool) portsrepo.MaestrosRepositoryWithTx {
	return &PgxMaestrosRepository{
		BaseRepository: BaseRepository{Pool: pool},
		db:             pool,
	}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *PgxMaestrosRepository) WithTx(tx pgx.Tx) portsrepo.MaestrosRepositoryFacade {
	return &PgxMaestrosRepository{BaseRepository: r.BaseRepository, db: tx}
}

// Ensure implementation matches interface
var _ portsrepo.MaestrosRepositoryWithTx = (*PgxMaestrosRepository)(nil)

const unidadColumns = `id, codigo, nombre, sigla, tipo, activo, created_at, updated_at`

func scanUnidad(row pgx.Row) (models.UnidadEjecutora, error) {
	var u models.UnidadEjecutora
	err := row.Scan(&u.ID, &u.Codigo, &u.Nombre, &u.Sigla, &u.Tipo, &u.Activo, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ListUnidades retrieves all executing units ordered by codigo.
func (r *PgxMaestrosRepository) ListUnidades(ctx context.Context) ([]models.UnidadEjecutora, error) {
	query := `SELECT ` + unidadColumns + ` FROM unidades_ejecutoras ORDER BY codigo;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unidades: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UnidadEjecutora, error) {
		return scanUnidad(row)
	})
}

// FindUnidadByCodigo retrieves one executing unit by its codigo.
func (r *PgxMaestrosRepository) FindUnidadByCodigo(ctx context.Context, codigo string) (*models.UnidadEjecutora, error) {
	query := `SELECT ` + unidadColumns + ` FROM unidades_ejecutoras WHERE codigo = $1;`
	u, err := scanUnidad(r.db.QueryRow(ctx, query, codigo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find unidad by codigo %s: %w", codigo, err)
	}
	return &u, nil
}

// UpsertUnidad inserts or updates an executing unit keyed by codigo.
func (r *PgxMaestrosRepository) UpsertUnidad(ctx context.Context, unidad models.UnidadEjecutora) (*models.UnidadEjecutora, error) {
	query := `
		INSERT INTO unidades_ejecutoras (codigo, nombre, sigla, tipo, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (codigo) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			sigla = EXCLUDED.sigla,
			tipo = EXCLUDED.tipo,
			activo = EXCLUDED.activo,
			updated_at = now()
		RETURNING ` + unidadColumns + `;`
	u, err := scanUnidad(r.db.QueryRow(ctx, query, unidad.Codigo, unidad.Nombre, unidad.Sigla, unidad.Tipo, unidad.Activo))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert unidad %s: %w", unidad.Codigo, err)
	}
	return &u, nil
}

// DeleteUnidades removes every executing unit and returns the count.
func (r *PgxMaestrosRepository) DeleteUnidades(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM unidades_ejecutoras;`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unidades: %w", err)
	}
	return tag.RowsAffected(), nil
}

const metaColumns = `id, codigo, descripcion, sec_funcional, unidad_ejecutora_id, anio, activo, created_at, updated_at`

func scanMeta(row pgx.Row) (models.MetaPresupuestal, error) {
	var m models.MetaPresupuestal
	err := row.Scan(&m.ID, &m.Codigo, &m.Descripcion, &m.SecFuncional, &m.UnidadID, &m.Anio, &m.Activo, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ListMetas retrieves all budget goals.
func (r *PgxMaestrosRepository) ListMetas(ctx context.Context) ([]models.MetaPresupuestal, error) {
	query := `SELECT ` + metaColumns + ` FROM metas_presupuestales ORDER BY unidad_ejecutora_id, codigo;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metas: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.MetaPresupuestal, error) {
		return scanMeta(row)
	})
}

// UpsertMeta inserts or updates a budget goal keyed by (codigo, unidad).
func (r *PgxMaestrosRepository) UpsertMeta(ctx context.Context, meta models.MetaPresupuestal) (*models.MetaPresupuestal, error) {
	query := `
		INSERT INTO metas_presupuestales (codigo, descripcion, sec_funcional, unidad_ejecutora_id, anio, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (codigo, unidad_ejecutora_id) DO UPDATE SET
			descripcion = EXCLUDED.descripcion,
			sec_funcional = EXCLUDED.sec_funcional,
			anio = EXCLUDED.anio,
			activo = EXCLUDED.activo,
			updated_at = now()
		RETURNING ` + metaColumns + `;`
	m, err := scanMeta(r.db.QueryRow(ctx, query, meta.Codigo, meta.Descripcion, meta.SecFuncional, meta.UnidadID, meta.Anio, meta.Activo))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert meta %s: %w", meta.Codigo, err)
	}
	return &m, nil
}

// DeleteMetas removes every budget goal and returns the count.
func (r *PgxMaestrosRepository) DeleteMetas(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM metas_presupuestales;`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete metas: %w", err)
	}
	return tag.RowsAffected(), nil
}

const clasificadorColumns = `id, codigo, descripcion, tipo_generico, activo, created_at, updated_at`

func scanClasificador(row pgx.Row) (models.ClasificadorGasto, error) {
	var c models.ClasificadorGasto
	err := row.Scan(&c.ID, &c.Codigo, &c.Descripcion, &c.TipoGenerico, &c.Activo, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListClasificadores retrieves all expense classifiers ordered by codigo.
func (r *PgxMaestrosRepository) ListClasificadores(ctx context.Context) ([]models.ClasificadorGasto, error) {
	query := `SELECT ` + clasificadorColumns + ` FROM clasificadores_gasto ORDER BY codigo;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clasificadores: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ClasificadorGasto, error) {
		return scanClasificador(row)
	})
}

// FirstClasificador retrieves the lowest-id classifier.
func (r *PgxMaestrosRepository) FirstClasificador(ctx context.Context) (*models.ClasificadorGasto, error) {
	query := `SELECT ` + clasificadorColumns + ` FROM clasificadores_gasto ORDER BY id LIMIT 1;`
	c, err := scanClasificador(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find first clasificador: %w", err)
	}
	return &c, nil
}

// UpsertClasificador inserts or updates a classifier keyed by codigo.
func (r *PgxMaestrosRepository) UpsertClasificador(ctx context.Context, clasificador models.ClasificadorGasto) (*models.ClasificadorGasto, error) {
	query := `
		INSERT INTO clasificadores_gasto (codigo, descripcion, tipo_generico, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (codigo) DO UPDATE SET
			descripcion = EXCLUDED.descripcion,
			tipo_generico = EXCLUDED.tipo_generico,
			activo = EXCLUDED.activo,
			updated_at = now()
		RETURNING ` + clasificadorColumns + `;`
	c, err := scanClasificador(r.db.QueryRow(ctx, query, clasificador.Codigo, clasificador.Descripcion, clasificador.TipoGenerico, clasificador.Activo))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert clasificador %s: %w", clasificador.Codigo, err)
	}
	return &c, nil
}

// DeleteClasificadores removes every classifier and returns the count.
func (r *PgxMaestrosRepository) DeleteClasificadores(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM clasificadores_gasto;`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete clasificadores: %w", err)
	}
	return tag.RowsAffected(), nil
}

const actividadColumns = `id, codigo_ceplan, nombre, oei, aei, unidad_ejecutora_id, meta_presupuestal_id, anio, activo, created_at, updated_at`

func scanActividad(row pgx.Row) (models.ActividadOperativa, error) {
	var a models.ActividadOperativa
	err := row.Scan(&a.ID, &a.CodigoCeplan, &a.Nombre, &a.OEI, &a.AEI, &a.UnidadID, &a.MetaID, &a.Anio, &a.Activo, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListActividades retrieves all operational activities.
func (r *PgxMaestrosRepository) ListActividades(ctx context.Context) ([]models.ActividadOperativa, error) {
	query := `SELECT ` + actividadColumns + ` FROM actividades_operativas ORDER BY codigo_ceplan;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query actividades: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ActividadOperativa, error) {
		return scanActividad(row)
	})
}

// UpsertActividad inserts or updates an activity keyed by codigo CEPLAN.
func (r *PgxMaestrosRepository) UpsertActividad(ctx context.Context, actividad models.ActividadOperativa) (*models.ActividadOperativa, error) {
	query := `
		INSERT INTO actividades_operativas (codigo_ceplan, nombre, oei, aei, unidad_ejecutora_id, meta_presupuestal_id, anio, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (codigo_ceplan) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			oei = EXCLUDED.oei,
			aei = EXCLUDED.aei,
			unidad_ejecutora_id = COALESCE(EXCLUDED.unidad_ejecutora_id, actividades_operativas.unidad_ejecutora_id),
			meta_presupuestal_id = COALESCE(EXCLUDED.meta_presupuestal_id, actividades_operativas.meta_presupuestal_id),
			anio = EXCLUDED.anio,
			activo = EXCLUDED.activo,
			updated_at = now()
		RETURNING ` + actividadColumns + `;`
	a, err := scanActividad(r.db.QueryRow(ctx, query,
		actividad.CodigoCeplan, actividad.Nombre, actividad.OEI, actividad.AEI,
		actividad.UnidadID, actividad.MetaID, actividad.Anio, actividad.Activo))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert actividad %s: %w", actividad.CodigoCeplan, err)
	}
	return &a, nil
}

// DeleteActividades removes every operational activity and returns the count.
func (r *PgxMaestrosRepository) DeleteActividades(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM actividades_operativas;`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete actividades: %w", err)
	}
	return tag.RowsAffected(), nil
}
