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

// PgxPresupuestoRepository persists annual budget lines, their monthly
// programming and budget modification notes.
type PgxPresupuestoRepository struct {
	BaseRepository
	db DBTX
}

// NewPresupuestoRepository creates a new repository for budget data.
func NewPresupuestoRepository(pool *pgxpool.Pool) portsrepo.PresupuestoRepositoryWithTx {
	return &PgxPresupuestoRepository{
		BaseRepository: BaseRepository{Pool: pool},
		db:             pool,
	}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *PgxPresupuestoRepository) WithTx(tx pgx.Tx) portsrepo.PresupuestoRepositoryFacade {
	return &PgxPresupuestoRepository{BaseRepository: r.BaseRepository, db: tx}
}

// Ensure implementation matches interface
var _ portsrepo.PresupuestoRepositoryWithTx = (*PgxPresupuestoRepository)(nil)

const programacionColumns = `id, anio, unidad_ejecutora_id, meta_presupuestal_id, clasificador_id,
	pia, pim, certificado, compromiso_anual, devengado, girado, saldo, created_at, updated_at`

func scanProgramacion(row pgx.Row) (models.ProgramacionPresupuestal, error) {
	var p models.ProgramacionPresupuestal
	err := row.Scan(&p.ID, &p.Anio, &p.UnidadID, &p.MetaID, &p.ClasificadorID,
		&p.PIA, &p.PIM, &p.Certificado, &p.CompromisoAnual, &p.Devengado, &p.Girado, &p.Saldo,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// FindProgramacion locates a budget line by its full natural key.
func (r *PgxPresupuestoRepository) FindProgramacion(ctx context.Context, anio int, unidadID, metaID, clasificadorID int64) (*models.ProgramacionPresupuestal, error) {
	query := `SELECT ` + programacionColumns + `
		FROM programacion_presupuestal
		WHERE anio = $1 AND unidad_ejecutora_id = $2 AND meta_presupuestal_id = $3 AND clasificador_id = $4;`
	p, err := scanProgramacion(r.db.QueryRow(ctx, query, anio, unidadID, metaID, clasificadorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find programacion: %w", err)
	}
	return &p, nil
}

// FindProgramacionByScope locates the first budget line for (anio, unidad, meta).
func (r *PgxPresupuestoRepository) FindProgramacionByScope(ctx context.Context, anio int, unidadID, metaID int64) (*models.ProgramacionPresupuestal, error) {
	query := `SELECT ` + programacionColumns + `
		FROM programacion_presupuestal
		WHERE anio = $1 AND unidad_ejecutora_id = $2 AND meta_presupuestal_id = $3
		ORDER BY id LIMIT 1;`
	p, err := scanProgramacion(r.db.QueryRow(ctx, query, anio, unidadID, metaID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find programacion by scope: %w", err)
	}
	return &p, nil
}

// InsertProgramacion inserts a new budget line.
func (r *PgxPresupuestoRepository) InsertProgramacion(ctx context.Context, p models.ProgramacionPresupuestal) (*models.ProgramacionPresupuestal, error) {
	query := `
		INSERT INTO programacion_presupuestal
			(anio, unidad_ejecutora_id, meta_presupuestal_id, clasificador_id,
			 pia, pim, certificado, compromiso_anual, devengado, girado, saldo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING ` + programacionColumns + `;`
	stored, err := scanProgramacion(r.db.QueryRow(ctx, query,
		p.Anio, p.UnidadID, p.MetaID, p.ClasificadorID,
		p.PIA, p.PIM, p.Certificado, p.CompromisoAnual, p.Devengado, p.Girado, p.Saldo))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert programacion: %w", err)
	}
	return &stored, nil
}

// UpdateProgramacion overwrites the amount fields of an existing budget line.
func (r *PgxPresupuestoRepository) UpdateProgramacion(ctx context.Context, p models.ProgramacionPresupuestal) error {
	query := `
		UPDATE programacion_presupuestal SET
			pia = $2, pim = $3, certificado = $4, compromiso_anual = $5,
			devengado = $6, girado = $7, saldo = $8, updated_at = now()
		WHERE id = $1;`
	tag, err := r.db.Exec(ctx, query, p.ID, p.PIA, p.PIM, p.Certificado, p.CompromisoAnual, p.Devengado, p.Girado, p.Saldo)
	if err != nil {
		return fmt.Errorf("failed to update programacion %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteProgramaciones removes every budget line and returns the count.
func (r *PgxPresupuestoRepository) DeleteProgramaciones(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM programacion_presupuestal;`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete programaciones: %w", err)
	}
	return tag.RowsAffected(), nil
}

const mensualColumns = `id, programacion_presupuestal_id, mes, programado, ejecutado, saldo, created_at, updated_at`

func scanMensual(row pgx.Row) (models.ProgramacionMensual, error) {
	var m models.ProgramacionMensual
	err := row.Scan(&m.ID, &m.ProgramacionID, &m.Mes, &m.Programado, &m.Ejecutado, &m.Saldo, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// FindMensual locates the monthly row for (programacion, mes).
func (r *PgxPresupuestoRepository) FindMensual(ctx context.Context, programacionID int64, mes int) (*models.ProgramacionMensual, error) {
	query := `SELECT ` + mensualColumns + `
		FROM programacion_mensual
		WHERE programacion_presupuestal_id = $1 AND mes = $2;`
	m, err := scanMensual(r.db.QueryRow(ctx, query, programacionID, mes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find mensual: %w", err)
	}
	return &m, nil
}

// InsertMensual inserts a new monthly programming row.
func (r *PgxPresupuestoRepository) InsertMensual(ctx context.Context, m models.ProgramacionMensual) (*models.ProgramacionMensual, error) {
	query := `
		INSERT INTO programacion_mensual
			(programacion_presupuestal_id, mes, programado, ejecutado, saldo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING ` + mensualColumns + `;`
	stored, err := scanMensual(r.db.QueryRow(ctx, query, m.ProgramacionID, m.Mes, m.Programado, m.Ejecutado, m.Saldo))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert mensual: %w", err)
	}
	return &stored, nil
}

// UpdateMensual overwrites the amounts of an existing monthly row.
func (r *PgxPresupuestoRepository) UpdateMensual(ctx context.Context, m models.ProgramacionMensual) error {
	query := `
		UPDATE programacion_mensual SET
			programado = $2, ejecutado = $3, saldo = $4, updated_at = now()
		WHERE id = $1;`
	tag, err := r.db.Exec(ctx, query, m.ID, m.Programado, m.Ejecutado, m.Saldo)
	if err != nil {
		return fmt.Errorf("failed to update mensual %d: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteMensuales removes every monthly row and returns the count.
func (r *PgxPresupuestoRepository) DeleteMensuales(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM programacion_mensual;`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete mensuales: %w", err)
	}
	return tag.RowsAffected(), nil
}

const modificacionColumns = `id, anio, unidad_ejecutora_id, clasificador_id, tipo, monto,
	nota_modificacion, fecha, descripcion, asignado, habilitadora, habilitada, pim_resultante, created_at, updated_at`

func scanModificacion(row pgx.Row) (models.ModificacionPresupuestal, error) {
	var m models.ModificacionPresupuestal
	err := row.Scan(&m.ID, &m.Anio, &m.UnidadID, &m.ClasificadorID, &m.Tipo, &m.Monto,
		&m.NotaModificacion, &m.Fecha, &m.Descripcion, &m.Asignado, &m.Habilitadora, &m.Habilitada, &m.PIMResultante,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// InsertModificacion inserts a budget modification row.
func (r *PgxPresupuestoRepository) InsertModificacion(ctx context.Context, m models.ModificacionPresupuestal) (*models.ModificacionPresupuestal, error) {
	query := `
		INSERT INTO modificaciones_presupuestales
			(anio, unidad_ejecutora_id, clasificador_id, tipo, monto, nota_modificacion, fecha,
			 descripcion, asignado, habilitadora, habilitada, pim_resultante, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING ` + modificacionColumns + `;`
	stored, err := scanModificacion(r.db.QueryRow(ctx, query,
		m.Anio, m.UnidadID, m.ClasificadorID, m.Tipo, m.Monto, m.NotaModificacion, m.Fecha,
		m.Descripcion, m.Asignado, m.Habilitadora, m.Habilitada, m.PIMResultante))
	if err != nil {
		return nil, fmt.Errorf("failed to insert modificacion: %w", err)
	}
	return &stored, nil
}

// DeleteModificaciones removes every modification row and returns the count.
func (r *PgxPresupuestoRepository) DeleteModificaciones(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM modificaciones_presupuestales;`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete modificaciones: %w", err)
	}
	return tag.RowsAffected(), nil
}
