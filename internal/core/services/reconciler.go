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

// Format families: each family is routed to a different set of tables.
var (
	presupuestalFormats = map[string]bool{
		parsers.Formato1:    true,
		parsers.Formato2:    true,
		parsers.Formato3:    true,
		parsers.FormatoSIAF: true,
	}
	mensualFormats = map[string]bool{
		parsers.Formato5A: true,
		parsers.Formato5B: true,
	}
	maestroFormats = map[string]bool{
		parsers.FormatoCuadroAOMeta:  true,
		parsers.FormatoDatosMaestros: true,
		parsers.FormatoTablas:        true,
	}
	modificacionFormats = map[string]bool{
		parsers.Formato04: true,
	}
	passthroughFormats = map[string]bool{
		parsers.Formato5Resumen: true,
		parsers.FormatoAnexo01:  true,
		parsers.FormatoSIGA:     true,
	}
)

// persister routes parsed records to their tables. It works over tx-bound
// repository facades so one upload is all-or-nothing.
type persister struct {
	maestros    portsrepo.MaestrosRepositoryFacade
	presupuesto portsrepo.PresupuestoRepositoryFacade
	defaultAnio int
}

// persist stores the records of one parse run and returns the number of rows
// inserted or updated plus the warnings collected along the way.
func (p *persister) persist(ctx context.Context, formato string, result *parsers.ParseResult) (int, []string, error) {
	var (
		presupRecs    []parsers.PresupuestalRecord
		mensualRecs   []parsers.MensualRecord
		modifRecs     []parsers.ModificacionRecord
		unidadRecs    []parsers.UnidadRecord
		metaRecs      []parsers.MetaRecord
		actividadRecs []parsers.ActividadRecord
		clasRecs      []parsers.ClasificadorRecord
	)
	for _, rec := range result.Records {
		switch r := rec.(type) {
		case parsers.PresupuestalRecord:
			presupRecs = append(presupRecs, r)
		case parsers.MensualRecord:
			mensualRecs = append(mensualRecs, r)
		case parsers.ModificacionRecord:
			modifRecs = append(modifRecs, r)
		case parsers.UnidadRecord:
			unidadRecs = append(unidadRecs, r)
		case parsers.MetaRecord:
			metaRecs = append(metaRecs, r)
		case parsers.ActividadRecord:
			actividadRecs = append(actividadRecs, r)
		case parsers.ClasificadorRecord:
			clasRecs = append(clasRecs, r)
		}
	}

	switch {
	case maestroFormats[formato]:
		if formato == parsers.FormatoTablas {
			return p.upsertClasificadores(ctx, clasRecs)
		}
		return p.upsertCuadroAOMeta(ctx, unidadRecs, metaRecs, actividadRecs)

	case modificacionFormats[formato]:
		return p.insertModificaciones(ctx, modifRecs)

	case presupuestalFormats[formato]:
		total := 0
		var warnings []string

		resolver, err := newCodeResolver(ctx, p.maestros, p.defaultAnio)
		if err != nil {
			return 0, nil, err
		}
		rows, err := resolver.resolvePresupuestales(ctx, presupRecs)
		if err != nil {
			return 0, nil, err
		}
		warnings = append(warnings, resolver.warnings...)

		// SIAF carries real execution data and may refresh existing rows.
		n, insertWarnings, err := p.insertProgramaciones(ctx, rows, formato == parsers.FormatoSIAF)
		if err != nil {
			return 0, nil, err
		}
		total += n
		warnings = append(warnings, insertWarnings...)

		// Formato 1/2 also emit the monthly breakdown alongside the annual rows.
		if len(mensualRecs) > 0 {
			n, mensualWarnings, err := p.persistMensuales(ctx, mensualRecs, false)
			if err != nil {
				return 0, nil, err
			}
			total += n
			warnings = append(warnings, mensualWarnings...)
		}
		return total, warnings, nil

	case mensualFormats[formato]:
		// 5.B carries ejecutado data and may refresh the rows 5.A created.
		return p.persistMensuales(ctx, mensualRecs, formato == parsers.Formato5B)

	case passthroughFormats[formato] && len(result.Records) > 0:
		return len(result.Records), []string{
			fmt.Sprintf("Formato '%s': %d registros leídos correctamente.", formato, len(result.Records)),
		}, nil

	case len(result.Records) > 0:
		return len(result.Records), []string{
			fmt.Sprintf("Formato '%s': %d registros leídos correctamente (almacenamiento en tabla específica pendiente).", formato, len(result.Records)),
		}, nil
	}

	return 0, nil, nil
}

func (p *persister) persistMensuales(ctx context.Context, records []parsers.MensualRecord, upsert bool) (int, []string, error) {
	resolver, err := newAOResolver(ctx, p.maestros, p.presupuesto)
	if err != nil {
		return 0, nil, err
	}
	rows, err := resolver.resolveMensuales(ctx, records)
	if err != nil {
		return 0, nil, err
	}
	warnings := resolver.warnings

	n, insertWarnings, err := p.insertMensuales(ctx, rows, upsert)
	if err != nil {
		return 0, nil, err
	}
	return n, append(warnings, insertWarnings...), nil
}

// insertProgramaciones inserts resolved annual rows. With upsert, existing
// rows get their amounts refreshed field by field, taking only non-zero
// values that actually differ; without it, duplicates are skipped.
func (p *persister) insertProgramaciones(ctx context.Context, rows []models.ProgramacionPresupuestal, upsert bool) (int, []string, error) {
	inserted, updated := 0, 0
	var warnings []string

	for _, row := range rows {
		existing, err := p.presupuesto.FindProgramacion(ctx, row.Anio, row.UnidadID, row.MetaID, row.ClasificadorID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return 0, nil, err
		}

		if existing != nil {
			if !upsert {
				warnings = append(warnings, fmt.Sprintf(
					"Fila duplicada omitida: anio=%d, ue_id=%d, meta_id=%d, clasificador_id=%d.",
					row.Anio, row.UnidadID, row.MetaID, row.ClasificadorID))
				continue
			}

			changed := false
			refresh := func(dst *decimal.Decimal, src decimal.Decimal) {
				if !src.IsZero() && !src.Equal(*dst) {
					*dst = src
					changed = true
				}
			}
			refresh(&existing.Certificado, row.Certificado)
			refresh(&existing.CompromisoAnual, row.CompromisoAnual)
			refresh(&existing.Devengado, row.Devengado)
			refresh(&existing.Girado, row.Girado)
			refresh(&existing.Saldo, row.Saldo)
			refresh(&existing.PIA, row.PIA)
			refresh(&existing.PIM, row.PIM)

			if !changed {
				warnings = append(warnings, fmt.Sprintf(
					"Registro existente sin cambios: anio=%d, clasificador_id=%d.",
					row.Anio, row.ClasificadorID))
				continue
			}
			if err := p.presupuesto.UpdateProgramacion(ctx, *existing); err != nil {
				return 0, nil, err
			}
			updated++
			continue
		}

		if _, err := p.presupuesto.InsertProgramacion(ctx, row); err != nil {
			return 0, nil, err
		}
		inserted++
	}

	return inserted + updated, warnings, nil
}

// insertMensuales inserts resolved monthly rows. With upsert, existing
// (programacion, mes) rows get their amounts refreshed; without it,
// duplicates are skipped.
func (p *persister) insertMensuales(ctx context.Context, rows []models.ProgramacionMensual, upsert bool) (int, []string, error) {
	inserted, updated := 0, 0
	var warnings []string

	for _, row := range rows {
		if row.ProgramacionID == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"Registro mensual sin programacion_presupuestal_id (mes=%d); omitido.", row.Mes))
			continue
		}

		existing, err := p.presupuesto.FindMensual(ctx, row.ProgramacionID, row.Mes)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return 0, nil, err
		}

		if existing != nil {
			if !upsert {
				warnings = append(warnings, fmt.Sprintf(
					"Mes %d para programacion_id=%d ya existe; omitido.", row.Mes, row.ProgramacionID))
				continue
			}

			changed := false
			refresh := func(dst *decimal.Decimal, src decimal.Decimal) {
				if !src.Equal(*dst) {
					*dst = src
					changed = true
				}
			}
			refresh(&existing.Programado, row.Programado)
			refresh(&existing.Ejecutado, row.Ejecutado)
			refresh(&existing.Saldo, row.Saldo)

			if changed {
				if err := p.presupuesto.UpdateMensual(ctx, *existing); err != nil {
					return 0, nil, err
				}
				updated++
			}
			continue
		}

		if _, err := p.presupuesto.InsertMensual(ctx, row); err != nil {
			return 0, nil, err
		}
		inserted++
	}

	return inserted + updated, warnings, nil
}

// upsertCuadroAOMeta refreshes the three master tables from one master-data
// workbook: units first, then goals keyed by (codigo, unidad), then CEPLAN
// activities keyed by codigo.
func (p *persister) upsertCuadroAOMeta(ctx context.Context, unidades []parsers.UnidadRecord, metas []parsers.MetaRecord, actividades []parsers.ActividadRecord) (int, []string, error) {
	var warnings []string

	for _, rec := range unidades {
		codigo := strings.TrimSpace(rec.Codigo)
		if codigo == "" {
			continue
		}
		tipo := models.UnidadEjecutoraTipo(rec.Tipo)
		if tipo == "" {
			tipo = models.UETipoODEI
		}
		if _, err := p.maestros.UpsertUnidad(ctx, models.UnidadEjecutora{
			Codigo: codigo,
			Nombre: rec.Nombre,
			Sigla:  rec.Sigla,
			Tipo:   tipo,
			Activo: true,
		}); err != nil {
			return 0, nil, fmt.Errorf("failed to upsert unidad %s: %w", codigo, err)
		}
	}

	ueMap := map[string]int64{}
	storedUnidades, err := p.maestros.ListUnidades(ctx)
	if err != nil {
		return 0, nil, err
	}
	for _, u := range storedUnidades {
		ueMap[u.Codigo] = u.ID
	}

	for _, rec := range metas {
		codigo := strings.TrimSpace(rec.Codigo)
		if codigo == "" {
			continue
		}
		ueID, ok := ueMap[strings.TrimSpace(rec.UECodigo)]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Meta '%s': UE '%s' no encontrada; omitida.", codigo, rec.UECodigo))
			continue
		}
		anio := rec.Anio
		if anio == 0 {
			anio = p.defaultAnio
		}
		if _, err := p.maestros.UpsertMeta(ctx, models.MetaPresupuestal{
			Codigo:       codigo,
			Descripcion:  rec.Descripcion,
			SecFuncional: rec.SecFuncional,
			UnidadID:     ueID,
			Anio:         anio,
			Activo:       true,
		}); err != nil {
			return 0, nil, fmt.Errorf("failed to upsert meta %s: %w", codigo, err)
		}
	}

	type metaScope struct {
		codigo string
		ueID   int64
	}
	metaMap := map[metaScope]int64{}
	storedMetas, err := p.maestros.ListMetas(ctx)
	if err != nil {
		return 0, nil, err
	}
	for _, m := range storedMetas {
		metaMap[metaScope{codigo: m.Codigo, ueID: m.UnidadID}] = m.ID
	}

	for _, rec := range actividades {
		codigoCeplan := strings.ToUpper(strings.TrimSpace(rec.CodigoCeplan))
		if codigoCeplan == "" {
			continue
		}
		var ueID, metaID *int64
		if id, ok := ueMap[strings.TrimSpace(rec.UECodigo)]; ok {
			ueID = &id
			if mid, ok := metaMap[metaScope{codigo: strings.TrimSpace(rec.MetaCodigo), ueID: id}]; ok {
				metaID = &mid
			}
		}
		anio := rec.Anio
		if anio == 0 {
			anio = p.defaultAnio
		}
		if _, err := p.maestros.UpsertActividad(ctx, models.ActividadOperativa{
			CodigoCeplan: codigoCeplan,
			Nombre:       rec.Nombre,
			OEI:          rec.OEI,
			AEI:          rec.AEI,
			UnidadID:     ueID,
			MetaID:       metaID,
			Anio:         anio,
			Activo:       true,
		}); err != nil {
			return 0, nil, fmt.Errorf("failed to upsert actividad %s: %w", codigoCeplan, err)
		}
	}

	return len(unidades) + len(metas) + len(actividades), warnings, nil
}

func (p *persister) upsertClasificadores(ctx context.Context, records []parsers.ClasificadorRecord) (int, []string, error) {
	for _, rec := range records {
		codigo := strings.TrimSpace(rec.Codigo)
		if codigo == "" {
			continue
		}
		if _, err := p.maestros.UpsertClasificador(ctx, models.ClasificadorGasto{
			Codigo:       codigo,
			Descripcion:  rec.Descripcion,
			TipoGenerico: rec.TipoGenerico,
			Activo:       true,
		}); err != nil {
			return 0, nil, fmt.Errorf("failed to upsert clasificador %s: %w", codigo, err)
		}
	}
	return len(records), nil, nil
}

// insertModificaciones stores Formato 04 rows. UE and clasificador are
// lookup-only here: an unknown code leaves the FK empty with a warning
// instead of auto-creating master rows.
func (p *persister) insertModificaciones(ctx context.Context, records []parsers.ModificacionRecord) (int, []string, error) {
	var warnings []string

	ueMap := map[string]int64{}
	unidades, err := p.maestros.ListUnidades(ctx)
	if err != nil {
		return 0, nil, err
	}
	for _, u := range unidades {
		ueMap[u.Codigo] = u.ID
	}

	clasMap := map[string]int64{}
	clasificadores, err := p.maestros.ListClasificadores(ctx)
	if err != nil {
		return 0, nil, err
	}
	for _, c := range clasificadores {
		clasMap[c.Codigo] = c.ID
	}

	inserted := 0
	for _, rec := range records {
		var ueID, clasID *int64
		if code := strings.TrimSpace(rec.UECodigo); code != "" {
			if id, ok := ueMap[code]; ok {
				ueID = &id
			} else {
				warnings = append(warnings, fmt.Sprintf("Modif: UE '%s' no encontrada.", code))
			}
		}
		if code := strings.TrimSpace(rec.Clasificador); code != "" {
			if id, ok := clasMap[code]; ok {
				clasID = &id
			} else {
				warnings = append(warnings, fmt.Sprintf("Modif: Clasificador '%s' no encontrado.", code))
			}
		}

		if _, err := p.presupuesto.InsertModificacion(ctx, models.ModificacionPresupuestal{
			Anio:             rec.Anio,
			UnidadID:         ueID,
			ClasificadorID:   clasID,
			Tipo:             models.ModificacionTipo(rec.Tipo),
			Monto:            decimal.NewFromFloat(rec.Monto),
			NotaModificacion: rec.NotaModificacion,
			Fecha:            rec.Fecha,
			Descripcion:      rec.Descripcion,
			Asignado:         decimal.NewFromFloat(rec.Asignado),
			Habilitadora:     decimal.NewFromFloat(rec.Habilitadora),
			Habilitada:       decimal.NewFromFloat(rec.Habilitada),
			PIMResultante:    decimal.NewFromFloat(rec.PIMResultante),
		}); err != nil {
			return 0, nil, err
		}
		inserted++
	}

	return inserted, warnings, nil
}
