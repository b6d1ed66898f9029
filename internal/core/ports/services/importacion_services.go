package services

import (
	"context"

	"github.com/inei-sipp/presupuesto_backend/internal/dto"
)

// ArchivoSubido is an uploaded workbook plus its declared metadata.
type ArchivoSubido struct {
	Nombre           string
	Contenido        []byte
	FormatoDeclarado string
	UsuarioID        string
	UsuarioUsername  string
}

// ImportacionProcessorSvc runs the detect-parse-resolve-persist pipeline.
type ImportacionProcessorSvc interface {
	ProcesarArchivo(ctx context.Context, archivo ArchivoSubido) (*dto.ImportacionResponse, error)
}

// ImportacionHistorialSvc reads the import audit trail and the status dashboard.
type ImportacionHistorialSvc interface {
	ListarHistorial(ctx context.Context, anio *int) ([]dto.HistorialItem, error)
	GetEstadoFormatos(ctx context.Context) (*dto.EstadoFormatosResponse, error)
}

// ImportacionLimpiezaSvc purges the data loaded by one format.
type ImportacionLimpiezaSvc interface {
	LimpiarFormato(ctx context.Context, formato string) (*dto.LimpiezaResponse, error)
}

// ImportacionSvcFacade combines all import operations.
type ImportacionSvcFacade interface {
	ImportacionProcessorSvc
	ImportacionHistorialSvc
	ImportacionLimpiezaSvc
}
