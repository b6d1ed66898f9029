package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inei-sipp/presupuesto_backend/internal/apperrors"
	portsrepo "github.com/inei-sipp/presupuesto_backend/internal/core/ports/repositories"
	portssvc "github.com/inei-sipp/presupuesto_backend/internal/core/ports/services"
	"github.com/inei-sipp/presupuesto_backend/internal/dto"
	"github.com/inei-sipp/presupuesto_backend/internal/middleware"
	"github.com/inei-sipp/presupuesto_backend/internal/models"
	"github.com/inei-sipp/presupuesto_backend/internal/parsers"
	"github.com/inei-sipp/presupuesto_backend/pkg/config"
)

// importacionService runs the import pipeline end to end: detect the format,
// parse the workbook, persist valid records inside one transaction and write
// an audit row whatever the outcome.
type importacionService struct {
	repos       *portsrepo.RepositoryProvider
	uploadDir   string
	defaultAnio int
}

// NewImportacionService creates the import service.
func NewImportacionService(repos *portsrepo.RepositoryProvider, cfg *config.Config) portssvc.ImportacionSvcFacade {
	return &importacionService{
		repos:       repos,
		uploadDir:   cfg.UploadDir,
		defaultAnio: cfg.DefaultAnio,
	}
}

// ProcesarArchivo processes one uploaded workbook.
//
// The audit row is written outside the data transaction so a rolled-back run
// still leaves a FALLIDO trace in the history.
func (s *importacionService) ProcesarArchivo(ctx context.Context, archivo portssvc.ArchivoSubido) (*dto.ImportacionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(archivo.Contenido) == 0 {
		return nil, apperrors.ErrArchivoVacio
	}
	filename := archivo.Nombre
	if filename == "" {
		filename = "upload.xlsx"
	}

	// Keep a copy of the raw upload on disk, best effort.
	if path, err := s.saveUpload(archivo.Contenido, filename, archivo.UsuarioUsername); err != nil {
		logger.Warn("could not save upload to disk", "error", err)
	} else {
		logger.Info("upload saved", "path", path)
	}

	autoFormato := parsers.DetectFormat(archivo.Contenido)
	formato := archivo.FormatoDeclarado
	if archivo.FormatoDeclarado == parsers.FormatoDatosMaestros {
		// The master-data upload covers two workbooks; let detection pick
		// between CUADRO_AO_META and TABLAS.
		if autoFormato == parsers.FormatoCuadroAOMeta || autoFormato == parsers.FormatoTablas {
			formato = autoFormato
		}
	} else if formato == "" {
		formato = autoFormato
	}
	logger.Info("procesando archivo",
		"archivo", filename, "formato_auto", autoFormato, "formato_efectivo", formato, "usuario", archivo.UsuarioUsername)

	ueSigla, err := s.detectarUESigla(ctx, filename)
	if err != nil {
		return nil, err
	}

	errs := []string{}
	warnings := []string{}
	result := &parsers.ParseResult{FormatName: formato, Metadata: map[string]any{}}

	parseFn, ok := parsers.Registry[formato]
	if !ok {
		errs = append(errs, fmt.Sprintf(
			"Formato '%s' no tiene un parser implementado. Verifique el archivo o contacte al administrador.", formato))
	} else {
		result = parseFn(archivo.Contenido)
		errs = append(errs, result.Errors...)
		warnings = append(warnings, result.Warnings...)
		if ueSigla == "" {
			if sigla, ok := result.Metadata["ue_sigla"].(string); ok {
				ueSigla = sigla
			}
		}
	}

	registrosOK := 0
	if len(result.Records) > 0 && len(errs) == 0 {
		n, persistWarnings, err := s.persistir(ctx, formato, result)
		if err != nil {
			logger.Error("fallo la insercion en base de datos", "formato", formato, "error", err)
			errs = append(errs, fmt.Sprintf("Error al insertar registros en la base de datos: %v", err))
		} else {
			registrosOK = n
			warnings = append(warnings, persistWarnings...)
		}
	}

	registrosError := len(result.Errors)

	// Request-level failures (unregistered format, persistence error) also
	// land in errs, so the estado reflects them even with zero rejected rows.
	estado := models.ImportacionExitoso
	if len(errs) > 0 {
		if registrosOK > 0 {
			estado = models.ImportacionParcial
		} else {
			estado = models.ImportacionFallido
		}
	}

	var usuarioID *string
	if archivo.UsuarioID != "" {
		usuarioID = &archivo.UsuarioID
	}
	if _, err := s.repos.ImportacionRepo.InsertRegistro(ctx, models.RegistroImportacion{
		Formato:         formato,
		ArchivoNombre:   filename,
		Fecha:           time.Now().UTC(),
		UsuarioID:       usuarioID,
		UsuarioUsername: archivo.UsuarioUsername,
		UESigla:         ueSigla,
		RegistrosOK:     registrosOK,
		RegistrosError:  registrosError,
		Estado:          estado,
		Errores:         errs,
		Warnings:        warnings,
	}); err != nil {
		logger.Error("no se pudo guardar el registro de importacion", "archivo", filename, "error", err)
		return nil, fmt.Errorf("error al guardar el registro de importación: %w", err)
	}

	metadata := map[string]any{
		"archivo":            filename,
		"ue_detectada":       ueSigla,
		"total_filas_leidas": len(result.Records) + registrosError,
	}
	for k, v := range result.Metadata {
		metadata[k] = v
	}

	return &dto.ImportacionResponse{
		FormatoDetectado: formato,
		RegistrosValidos: registrosOK,
		RegistrosError:   registrosError,
		Warnings:         warnings,
		Errors:           errs,
		Metadata:         metadata,
	}, nil
}

// persistir stores the parse result inside one transaction.
func (s *importacionService) persistir(ctx context.Context, formato string, result *parsers.ParseResult) (int, []string, error) {
	tx, err := s.repos.PresupuestoRepo.Begin(ctx)
	if err != nil {
		return 0, nil, err
	}

	p := &persister{
		maestros:    s.repos.MaestrosRepo.WithTx(tx),
		presupuesto: s.repos.PresupuestoRepo.WithTx(tx),
		defaultAnio: s.defaultAnio,
	}
	n, warnings, err := p.persist(ctx, formato, result)
	if err != nil {
		_ = s.repos.PresupuestoRepo.Rollback(ctx, tx)
		return 0, nil, err
	}
	if err := s.repos.PresupuestoRepo.Commit(ctx, tx); err != nil {
		return 0, nil, err
	}
	return n, warnings, nil
}

// detectarUESigla matches the filename against the active units' siglas.
func (s *importacionService) detectarUESigla(ctx context.Context, filename string) (string, error) {
	unidades, err := s.repos.MaestrosRepo.ListUnidades(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list unidades: %w", err)
	}
	filenameUpper := strings.ToUpper(filename)
	for _, ue := range unidades {
		if ue.Activo && ue.Sigla != "" && strings.Contains(filenameUpper, strings.ToUpper(ue.Sigla)) {
			return ue.Sigla, nil
		}
	}
	return "", nil
}

// saveUpload writes the raw upload under the configured uploads directory.
func (s *importacionService) saveUpload(contenido []byte, filename, username string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s_%s", time.Now().UTC().Format("20060102_150405"), username, filepath.Base(filename))
	path := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(path, contenido, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ListarHistorial returns the import history, most recent first.
func (s *importacionService) ListarHistorial(ctx context.Context, anio *int) ([]dto.HistorialItem, error) {
	registros, err := s.repos.ImportacionRepo.ListRegistros(ctx, anio)
	if err != nil {
		return nil, fmt.Errorf("failed to list historial: %w", err)
	}
	items := make([]dto.HistorialItem, 0, len(registros))
	for _, reg := range registros {
		items = append(items, dto.ToHistorialItem(reg))
	}
	return items, nil
}

// GetEstadoFormatos composes the load status dashboard from the latest audit
// row of each catalog format.
func (s *importacionService) GetEstadoFormatos(ctx context.Context) (*dto.EstadoFormatosResponse, error) {
	latest, err := s.repos.ImportacionRepo.LatestPorFormato(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest imports: %w", err)
	}

	resp := &dto.EstadoFormatosResponse{
		Formatos:            make([]dto.EstadoFormatoItem, 0, len(parsers.FormatoCatalog)),
		Total:               len(parsers.FormatoCatalog),
		RequeridosFaltantes: []string{},
	}

	for _, info := range parsers.FormatoCatalog {
		item := dto.EstadoFormatoItem{
			Formato:        info.Formato,
			Nombre:         info.Nombre,
			Descripcion:    info.Descripcion,
			Categoria:      info.Categoria,
			EsRequerido:    info.EsRequerido,
			TienePlantilla: info.TienePlantilla,
			Impacto:        info.Impacto,
			UploadEndpoint: info.UploadEndpoint,
			Estado:         models.ImportacionSinCargar,
		}
		if reg, ok := latest[info.Formato]; ok {
			fecha := reg.Fecha
			item.Estado = reg.Estado
			item.UltimaCarga = &fecha
			item.RegistrosOK = reg.RegistrosOK
			item.RegistrosError = reg.RegistrosError
		}

		switch item.Estado {
		case models.ImportacionExitoso:
			resp.CargadosExitosos++
		case models.ImportacionParcial:
			resp.CargadosParcial++
		case models.ImportacionSinCargar:
			resp.SinCargar++
			if info.EsRequerido {
				resp.RequeridosFaltantes = append(resp.RequeridosFaltantes, info.Formato)
			}
		}
		resp.Formatos = append(resp.Formatos, item)
	}

	return resp, nil
}

// LimpiarFormato deletes the data a format loaded plus its audit rows.
func (s *importacionService) LimpiarFormato(ctx context.Context, formato string) (*dto.LimpiezaResponse, error) {
	if _, ok := parsers.FindFormatoInfo(formato); !ok {
		return nil, fmt.Errorf("formato '%s' no existe en el catalogo: %w", formato, apperrors.ErrNotFound)
	}

	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.repos.PresupuestoRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	maestrosTx := s.repos.MaestrosRepo.WithTx(tx)
	presupuestoTx := s.repos.PresupuestoRepo.WithTx(tx)

	type purgeStep struct {
		tabla  string
		borrar func(context.Context) (int64, error)
	}
	var steps []purgeStep
	switch formato {
	case parsers.Formato1:
		steps = []purgeStep{
			{"programacion_mensual", presupuestoTx.DeleteMensuales},
			{"programacion_presupuestal", presupuestoTx.DeleteProgramaciones},
		}
	case parsers.Formato2, parsers.Formato3, parsers.FormatoSIAF:
		steps = []purgeStep{{"programacion_presupuestal", presupuestoTx.DeleteProgramaciones}}
	case parsers.Formato04:
		steps = []purgeStep{{"modificaciones_presupuestales", presupuestoTx.DeleteModificaciones}}
	case parsers.Formato5A, parsers.Formato5B:
		steps = []purgeStep{{"programacion_mensual", presupuestoTx.DeleteMensuales}}
	case parsers.FormatoCuadroAOMeta:
		steps = []purgeStep{
			{"actividades_operativas", maestrosTx.DeleteActividades},
			{"metas_presupuestales", maestrosTx.DeleteMetas},
			{"unidades_ejecutoras", maestrosTx.DeleteUnidades},
		}
	case parsers.FormatoTablas:
		steps = []purgeStep{{"clasificadores_gasto", maestrosTx.DeleteClasificadores}}
	}

	var datosEliminados int64
	tablasAfectadas := []string{}
	for _, step := range steps {
		n, err := step.borrar(ctx)
		if err != nil {
			_ = s.repos.PresupuestoRepo.Rollback(ctx, tx)
			return nil, fmt.Errorf("failed to purge %s: %w", step.tabla, err)
		}
		datosEliminados += n
		tablasAfectadas = append(tablasAfectadas, step.tabla)
	}
	if err := s.repos.PresupuestoRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	historialEliminado, err := s.repos.ImportacionRepo.DeleteRegistrosByFormato(ctx, formato)
	if err != nil {
		return nil, fmt.Errorf("failed to purge historial for %s: %w", formato, err)
	}

	logger.Info("formato limpiado",
		"formato", formato, "datos_eliminados", datosEliminados,
		"historial_eliminado", historialEliminado, "tablas", tablasAfectadas)

	return &dto.LimpiezaResponse{
		Formato:                      formato,
		RegistrosDatosEliminados:     datosEliminados,
		RegistrosHistorialEliminados: historialEliminado,
		TablasAfectadas:              tablasAfectadas,
	}, nil
}
