package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	portsrepo "github.com/inei-sipp/presupuesto_backend/internal/core/ports/repositories"
	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/inei-sipp/presupuesto_backend/internal/parsers"
	"github.com/shopspring/decimal"
)

// codeResolver turns the UE, meta and clasificador codes carried by parsed
// records into foreign keys. Missing master rows are auto-created so the data
// formats can be loaded before the master data arrives.
type codeResolver struct {
	maestros    portsrepo.MaestrosRepositoryFacade
	defaultAnio int

	ueMap   map[string]int64
	metaMap map[string]int64
	clasMap map[string]int64

	warnings []string
}

func newCodeResolver(ctx context.Context, maestros portsrepo.MaestrosRepositoryFacade, defaultAnio int) (*codeResolver, error) {
	r := &codeResolver{
		maestros:    maestros,
		defaultAnio: defaultAnio,
		ueMap:       map[string]int64{},
		metaMap:     map[string]int64{},
		clasMap:     map[string]int64{},
	}

	unidades, err := maestros.ListUnidades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to preload unidades: %w", err)
	}
	for _, u := range unidades {
		r.ueMap[u.Codigo] = u.ID
	}

	metas, err := maestros.ListMetas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to preload metas: %w", err)
	}
	for _, m := range metas {
		r.metaMap[m.Codigo] = m.ID
	}

	clasificadores, err := maestros.ListClasificadores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to preload clasificadores: %w", err)
	}
	for _, c := range clasificadores {
		r.clasMap[c.Codigo] = c.ID
	}

	return r, nil
}

func (r *codeResolver) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// resolvePresupuestales maps parsed budget rows to model rows with resolved
// foreign keys. Rows without a clasificador are dropped with a warning.
func (r *codeResolver) resolvePresupuestales(ctx context.Context, records []parsers.PresupuestalRecord) ([]models.ProgramacionPresupuestal, error) {
	defaultAnio := r.defaultAnio
	for _, rec := range records {
		if rec.Anio > 2000 {
			defaultAnio = rec.Anio
			break
		}
	}

	resolved := make([]models.ProgramacionPresupuestal, 0, len(records))
	for _, rec := range records {
		ueID, err := r.resolveUnidad(ctx, rec.UECodigo)
		if err != nil {
			return nil, err
		}
		metaID, err := r.resolveMeta(ctx, rec.MetaCodigo, ueID, rec.Anio, defaultAnio)
		if err != nil {
			return nil, err
		}
		clasID, ok, err := r.resolveClasificador(ctx, rec.Clasificador, rec.Descripcion)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		anio := rec.Anio
		if anio == 0 {
			anio = defaultAnio
		}

		resolved = append(resolved, models.ProgramacionPresupuestal{
			Anio:            anio,
			UnidadID:        ueID,
			MetaID:          metaID,
			ClasificadorID:  clasID,
			PIA:             decimal.NewFromFloat(rec.PIA),
			PIM:             decimal.NewFromFloat(rec.PIM),
			Certificado:     decimal.NewFromFloat(rec.Certificado),
			CompromisoAnual: decimal.NewFromFloat(rec.CompromisoAnual),
			Devengado:       decimal.NewFromFloat(rec.Devengado),
			Girado:          decimal.NewFromFloat(rec.Girado),
			Saldo:           decimal.NewFromFloat(rec.Saldo),
		})
	}

	return resolved, nil
}

func (r *codeResolver) resolveUnidad(ctx context.Context, ueCodigo string) (int64, error) {
	raw := strings.TrimSpace(ueCodigo)
	if raw == "" {
		// No code in the row: fall back to the sede central unit.
		if id, ok := r.ueMap["001"]; ok {
			return id, nil
		}
		stored, err := r.maestros.UpsertUnidad(ctx, models.UnidadEjecutora{
			Codigo: "001",
			Nombre: "INEI SEDE CENTRAL",
			Sigla:  "INEI-CENTRAL",
			Tipo:   models.UETipoCentral,
			Activo: true,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create default unidad: %w", err)
		}
		r.ueMap["001"] = stored.ID
		r.warnf("UE '001' (INEI SEDE CENTRAL) creada automaticamente.")
		return stored.ID, nil
	}

	// Rows sometimes carry "001 - NOMBRE"; the code is the part before the dash.
	clean := raw
	if strings.Contains(raw, "-") {
		clean = strings.TrimSpace(strings.SplitN(raw, "-", 2)[0])
	}
	if id, ok := r.ueMap[clean]; ok {
		return id, nil
	}

	nombre := "UE " + clean
	if strings.Contains(raw, "-") {
		nombre = raw
	}
	tipo := models.UETipoODEI
	if clean == "001" {
		tipo = models.UETipoCentral
	}
	stored, err := r.maestros.UpsertUnidad(ctx, models.UnidadEjecutora{
		Codigo: clean,
		Nombre: nombre,
		Sigla:  "UE-" + clean,
		Tipo:   tipo,
		Activo: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create unidad %s: %w", clean, err)
	}
	r.ueMap[clean] = stored.ID
	r.warnf("UE '%s' creada automaticamente.", clean)
	return stored.ID, nil
}

func (r *codeResolver) resolveMeta(ctx context.Context, metaCodigo string, ueID int64, recAnio, defaultAnio int) (int64, error) {
	code := strings.TrimSpace(metaCodigo)
	if code == "" {
		if id, ok := r.metaMap["0001"]; ok {
			return id, nil
		}
		stored, err := r.maestros.UpsertMeta(ctx, models.MetaPresupuestal{
			Codigo:      "0001",
			Descripcion: "Meta General (auto)",
			UnidadID:    ueID,
			Anio:        defaultAnio,
			Activo:      true,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create default meta: %w", err)
		}
		r.metaMap["0001"] = stored.ID
		r.warnf("Meta '0001' creada automaticamente.")
		return stored.ID, nil
	}

	if id, ok := r.metaMap[code]; ok {
		return id, nil
	}

	anio := recAnio
	if anio == 0 {
		anio = defaultAnio
	}
	stored, err := r.maestros.UpsertMeta(ctx, models.MetaPresupuestal{
		Codigo:      code,
		Descripcion: fmt.Sprintf("Meta %s (auto)", code),
		UnidadID:    ueID,
		Anio:        anio,
		Activo:      true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create meta %s: %w", code, err)
	}
	r.metaMap[code] = stored.ID
	r.warnf("Meta '%s' creada automaticamente.", code)
	return stored.ID, nil
}

// resolveClasificador returns ok=false when the row has no classifier code,
// which drops the row.
func (r *codeResolver) resolveClasificador(ctx context.Context, codigo, descripcion string) (int64, bool, error) {
	code := strings.TrimSpace(codigo)
	if code == "" {
		r.warnf("Registro sin clasificador; fila omitida.")
		return 0, false, nil
	}

	if id, ok := r.clasMap[code]; ok {
		return id, true, nil
	}

	desc := strings.TrimSpace(descripcion)
	if desc == "" {
		desc = "Clasificador " + code
	}
	tipoGenerico := ""
	if parts := strings.Split(code, "."); len(parts) >= 2 {
		tipoGenerico = parts[0] + "." + parts[1]
	}
	stored, err := r.maestros.UpsertClasificador(ctx, models.ClasificadorGasto{
		Codigo:       code,
		Descripcion:  desc,
		TipoGenerico: tipoGenerico,
		Activo:       true,
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to create clasificador %s: %w", code, err)
	}
	r.clasMap[code] = stored.ID
	r.warnf("Clasificador '%s' creado automaticamente.", code)
	return stored.ID, true, nil
}

// aoResolver maps AO-keyed monthly records to their annual budget line. When
// the monthly data arrives before any annual format, it anchors a zero
// placeholder line on the first known classifier.
type aoResolver struct {
	maestros    portsrepo.MaestrosRepositoryFacade
	presupuesto portsrepo.PresupuestoRepositoryFacade

	aoMap   map[string]models.ActividadOperativa
	ueMap   map[string]int64
	metaMap map[string]int64

	presupCache map[presupScope]int64
	warnings    []string
}

type presupScope struct {
	anio   int
	ueID   int64
	metaID int64
}

func newAOResolver(ctx context.Context, maestros portsrepo.MaestrosRepositoryFacade, presupuesto portsrepo.PresupuestoRepositoryFacade) (*aoResolver, error) {
	r := &aoResolver{
		maestros:    maestros,
		presupuesto: presupuesto,
		aoMap:       map[string]models.ActividadOperativa{},
		ueMap:       map[string]int64{},
		metaMap:     map[string]int64{},
		presupCache: map[presupScope]int64{},
	}

	actividades, err := maestros.ListActividades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to preload actividades: %w", err)
	}
	for _, ao := range actividades {
		r.aoMap[ao.CodigoCeplan] = ao
	}

	unidades, err := maestros.ListUnidades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to preload unidades: %w", err)
	}
	for _, u := range unidades {
		r.ueMap[u.Codigo] = u.ID
	}

	metas, err := maestros.ListMetas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to preload metas: %w", err)
	}
	for _, m := range metas {
		r.metaMap[m.Codigo] = m.ID
	}

	return r, nil
}

func (r *aoResolver) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// resolveMensuales maps parsed monthly rows to model rows carrying the
// programacion_presupuestal FK. Rows whose UE/meta cannot be resolved are
// dropped with a warning.
func (r *aoResolver) resolveMensuales(ctx context.Context, records []parsers.MensualRecord) ([]models.ProgramacionMensual, error) {
	resolved := make([]models.ProgramacionMensual, 0, len(records))

	for _, rec := range records {
		codigoAO := strings.ToUpper(strings.TrimSpace(rec.CodigoAO))

		var ueID, metaID int64
		if ao, ok := r.aoMap[codigoAO]; ok {
			if ao.UnidadID != nil {
				ueID = *ao.UnidadID
			}
			if ao.MetaID != nil {
				metaID = *ao.MetaID
			}
		}
		if ueID == 0 {
			if code := strings.TrimSpace(rec.UECodigo); code != "" {
				ueID = r.ueMap[code]
			}
		}
		if metaID == 0 {
			if code := strings.TrimSpace(rec.MetaCodigo); code != "" {
				metaID = r.metaMap[code]
			}
		}
		if ueID == 0 || metaID == 0 {
			r.warnf("AO '%s' mes %d: no se pudo resolver UE/Meta; omitido.", codigoAO, rec.Mes)
			continue
		}

		scope := presupScope{anio: rec.Anio, ueID: ueID, metaID: metaID}
		presupID, ok := r.presupCache[scope]
		if !ok {
			id, found, err := r.findOrCreateProgramacion(ctx, codigoAO, scope)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			presupID = id
			r.presupCache[scope] = presupID
		}

		resolved = append(resolved, models.ProgramacionMensual{
			ProgramacionID: presupID,
			Mes:            rec.Mes,
			Programado:     decimal.NewFromFloat(rec.Programado),
			Ejecutado:      decimal.NewFromFloat(rec.Ejecutado),
			Saldo:          decimal.NewFromFloat(rec.Saldo),
		})
	}

	return resolved, nil
}

func (r *aoResolver) findOrCreateProgramacion(ctx context.Context, codigoAO string, scope presupScope) (int64, bool, error) {
	existing, err := r.presupuesto.FindProgramacionByScope(ctx, scope.anio, scope.ueID, scope.metaID)
	if err == nil {
		return existing.ID, true, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, false, fmt.Errorf("failed to find programacion for AO %s: %w", codigoAO, err)
	}

	clas, err := r.maestros.FirstClasificador(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			r.warnf("AO '%s': no hay clasificadores en BD; cargue el formato TABLAS primero.", codigoAO)
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to pick clasificador for AO %s: %w", codigoAO, err)
	}

	placeholder, err := r.presupuesto.InsertProgramacion(ctx, models.ProgramacionPresupuestal{
		Anio:           scope.anio,
		UnidadID:       scope.ueID,
		MetaID:         scope.metaID,
		ClasificadorID: clas.ID,
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to create placeholder for AO %s: %w", codigoAO, err)
	}
	r.warnf("AO '%s': ProgramacionPresupuestal placeholder creada (id=%d). Cargue Formato 1/2 para datos reales.", codigoAO, placeholder.ID)
	return placeholder.ID, true, nil
}
