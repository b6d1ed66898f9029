package models

import "time"

// ImportacionEstado is the outcome of one import run.
type ImportacionEstado string

const (
	ImportacionExitoso ImportacionEstado = "EXITOSO"
	ImportacionParcial ImportacionEstado = "PARCIAL"
	ImportacionFallido ImportacionEstado = "FALLIDO"
	// ImportacionSinCargar is a synthetic status for formats never uploaded;
	// it is reported by the status dashboard, never persisted.
	ImportacionSinCargar ImportacionEstado = "SIN_CARGAR"
)

// RegistroImportacion is the audit row written after every import attempt,
// successful or not.
type RegistroImportacion struct {
	ID              int64             `json:"id"`
	Formato         string            `json:"formato"`
	ArchivoNombre   string            `json:"archivoNombre"`
	Fecha           time.Time         `json:"fecha"`
	UsuarioID       *string           `json:"usuarioId,omitempty"`
	UsuarioUsername string            `json:"usuarioUsername"`
	UESigla         string            `json:"ueSigla"`
	RegistrosOK     int               `json:"registrosOk"`
	RegistrosError  int               `json:"registrosError"`
	Estado          ImportacionEstado `json:"estado"`
	Errores         []string          `json:"errores,omitempty"`
	Warnings        []string          `json:"warnings,omitempty"`
}
