package models

// UnidadEjecutoraTipo classifies an executing unit.
type UnidadEjecutoraTipo string

const (
	UETipoCentral UnidadEjecutoraTipo = "CENTRAL"
	UETipoODEI    UnidadEjecutoraTipo = "ODEI"
)

// UnidadEjecutora represents an executing unit (sede central or an ODEI).
type UnidadEjecutora struct {
	ID     int64               `json:"id"`
	Codigo string              `json:"codigo"` // e.g. "001"
	Nombre string              `json:"nombre"`
	Sigla  string              `json:"sigla"`
	Tipo   UnidadEjecutoraTipo `json:"tipo"`
	Activo bool                `json:"activo"`
	AuditFields
}

// MetaPresupuestal represents a budget goal scoped to an executing unit and year.
type MetaPresupuestal struct {
	ID           int64  `json:"id"`
	Codigo       string `json:"codigo"` // e.g. "0001"
	Descripcion  string `json:"descripcion"`
	SecFuncional string `json:"secFuncional"`
	UnidadID     int64  `json:"unidadEjecutoraId"`
	Anio         int    `json:"anio"`
	Activo       bool   `json:"activo"`
	AuditFields
}

// ClasificadorGasto represents an expense classifier (dotted code, e.g. "2.3.1.5.1.2").
type ClasificadorGasto struct {
	ID           int64  `json:"id"`
	Codigo       string `json:"codigo"`
	Descripcion  string `json:"descripcion"`
	TipoGenerico string `json:"tipoGenerico"` // "2.1", "2.3", "2.5" or "2.6"
	Activo       bool   `json:"activo"`
	AuditFields
}

// ActividadOperativa represents a CEPLAN operational activity.
type ActividadOperativa struct {
	ID           int64  `json:"id"`
	CodigoCeplan string `json:"codigoCeplan"`
	Nombre       string `json:"nombre"`
	OEI          string `json:"oei"`
	AEI          string `json:"aei"`
	UnidadID     *int64 `json:"unidadEjecutoraId,omitempty"`
	MetaID       *int64 `json:"metaPresupuestalId,omitempty"`
	Anio         int    `json:"anio"`
	Activo       bool   `json:"activo"`
	AuditFields
}
