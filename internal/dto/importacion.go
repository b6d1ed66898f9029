package dto

import (
	"time"

	"github.com/inei-sipp/presupuesto_backend/internal/models"
)

// UploadRequest carries the optional declared format of an upload. The file
// itself arrives as multipart form data.
type UploadRequest struct {
	Formato string `form:"formato"`
	Anio    int    `form:"anio"`
}

// ImportacionResponse is the outcome of one import run.
type ImportacionResponse struct {
	FormatoDetectado string         `json:"formatoDetectado"`
	RegistrosValidos int            `json:"registrosValidos"`
	RegistrosError   int            `json:"registrosError"`
	Warnings         []string       `json:"warnings"`
	Errors           []string       `json:"errors"`
	Metadata         map[string]any `json:"metadata"`
}

// HistorialItem is one row of the import history listing.
type HistorialItem struct {
	ID             int64                    `json:"id"`
	Formato        string                   `json:"formato"`
	ArchivoNombre  string                   `json:"archivoNombre"`
	Fecha          time.Time                `json:"fecha"`
	Usuario        string                   `json:"usuario"`
	UE             string                   `json:"ue"`
	RegistrosOK    int                      `json:"registrosOk"`
	RegistrosError int                      `json:"registrosError"`
	Estado         models.ImportacionEstado `json:"estado"`
}

// ToHistorialItem maps an audit row to its listing shape.
func ToHistorialItem(r models.RegistroImportacion) HistorialItem {
	return HistorialItem{
		ID:             r.ID,
		Formato:        r.Formato,
		ArchivoNombre:  r.ArchivoNombre,
		Fecha:          r.Fecha,
		Usuario:        r.UsuarioUsername,
		UE:             r.UESigla,
		RegistrosOK:    r.RegistrosOK,
		RegistrosError: r.RegistrosError,
		Estado:         r.Estado,
	}
}

// EstadoFormatoItem is one catalog entry enriched with its load status.
type EstadoFormatoItem struct {
	Formato        string                   `json:"formato"`
	Nombre         string                   `json:"nombre"`
	Descripcion    string                   `json:"descripcion"`
	Categoria      string                   `json:"categoria"`
	EsRequerido    bool                     `json:"esRequerido"`
	TienePlantilla bool                     `json:"tienePlantilla"`
	Impacto        string                   `json:"impacto"`
	UploadEndpoint string                   `json:"uploadEndpoint"`
	Estado         models.ImportacionEstado `json:"estado"`
	UltimaCarga    *time.Time               `json:"ultimaCarga,omitempty"`
	RegistrosOK    int                      `json:"registrosOk"`
	RegistrosError int                      `json:"registrosError"`
}

// EstadoFormatosResponse is the load status dashboard.
type EstadoFormatosResponse struct {
	Formatos            []EstadoFormatoItem `json:"formatos"`
	Total               int                 `json:"total"`
	CargadosExitosos    int                 `json:"cargadosExitosos"`
	CargadosParcial     int                 `json:"cargadosParcial"`
	SinCargar           int                 `json:"sinCargar"`
	RequeridosFaltantes []string            `json:"requeridosFaltantes"`
}

// LimpiezaResponse reports what a format purge removed.
type LimpiezaResponse struct {
	Formato                      string   `json:"formato"`
	RegistrosDatosEliminados     int64    `json:"registrosDatosEliminados"`
	RegistrosHistorialEliminados int64    `json:"registrosHistorialEliminados"`
	TablasAfectadas              []string `json:"tablasAfectadas"`
}
