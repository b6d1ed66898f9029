package parsers

import "fmt"

// Format labels produced by the detector and accepted by the registry.
const (
	FormatoCuadroAOMeta = "CUADRO_AO_META"
	FormatoTablas       = "TABLAS"
	Formato1            = "FORMATO_1"
	Formato2            = "FORMATO_2"
	Formato3            = "FORMATO_3"
	Formato04           = "FORMATO_04"
	Formato5A           = "FORMATO_5A"
	Formato5B           = "FORMATO_5B"
	Formato5Resumen     = "FORMATO_5_RESUMEN"
	FormatoAnexo01      = "ANEXO_01"
	FormatoSIAF         = "SIAF"
	FormatoSIGA         = "SIGA"
	FormatoDesconocido  = "DESCONOCIDO"

	// FormatoDatosMaestros is a registry alias of CUADRO_AO_META kept for
	// callers that declare the combined master-data workbook.
	FormatoDatosMaestros = "DATOS_MAESTROS"
)

// RecordType discriminates the families of records a parser can emit.
type RecordType string

const (
	TipoPresupuestal RecordType = "presupuestal"
	TipoMensual      RecordType = "mensual"
	TipoModificacion RecordType = "modificacion"
	TipoUnidad       RecordType = "unidad_ejecutora"
	TipoMeta         RecordType = "meta_presupuestal"
	TipoActividad    RecordType = "actividad_operativa"
	TipoClasificador RecordType = "clasificador_gasto"
	TipoAOResumen    RecordType = "ao_resumen"
	TipoPersonal     RecordType = "personal_rrhh"
	TipoSiga         RecordType = "siga_requerimiento"
)

// Record is one parsed row, tagged with the family it belongs to.
type Record interface {
	RecordType() RecordType
}

// PresupuestalRecord is an annual budget line as read from Formato 1/2/3 or SIAF.
type PresupuestalRecord struct {
	Anio            int
	UECodigo        string
	MetaCodigo      string
	Clasificador    string
	Descripcion     string
	PIA             float64
	PIM             float64
	Certificado     float64
	CompromisoAnual float64
	Devengado       float64
	Girado          float64
	Saldo           float64

	// Formato 2 extras
	CodigoAO  string
	DescAO    string
	CodTarea  string
	DescTarea string

	// Formato 3 extras
	Programado    float64
	Ejecutado     float64
	PctAvance     float64
	Justificacion string
	Observaciones string
}

func (PresupuestalRecord) RecordType() RecordType { return TipoPresupuestal }

// MensualRecord is one month of programming/execution for an operational
// activity (Formato 5.A/5.B) or a budget line (Formato 1/2 monthly columns).
type MensualRecord struct {
	CodigoAO     string
	NombreAO     string
	Clasificador string
	Anio         int
	UECodigo     string
	MetaCodigo   string
	Mes          int
	Programado   float64
	Ejecutado    float64
	Saldo        float64
}

func (MensualRecord) RecordType() RecordType { return TipoMensual }

// ModificacionRecord is one row of a budget modification note (Formato 04).
type ModificacionRecord struct {
	Anio             int
	UECodigo         string
	Clasificador     string
	Descripcion      string
	Tipo             string
	Monto            float64
	NotaModificacion string
	Fecha            string
	Asignado         float64
	Habilitadora     float64
	Habilitada       float64
	PIMResultante    float64
}

func (ModificacionRecord) RecordType() RecordType { return TipoModificacion }

// UnidadRecord is an executing unit read from the master-data workbook.
type UnidadRecord struct {
	Codigo string
	Nombre string
	Sigla  string
	Tipo   string
	Activo bool
}

func (UnidadRecord) RecordType() RecordType { return TipoUnidad }

// MetaRecord is a budget goal read from the master-data workbook.
type MetaRecord struct {
	Codigo       string
	Descripcion  string
	SecFuncional string
	UECodigo     string
	Anio         int
	Activo       bool
}

func (MetaRecord) RecordType() RecordType { return TipoMeta }

// ActividadRecord is a CEPLAN operational activity read from the master-data workbook.
type ActividadRecord struct {
	CodigoCeplan string
	Nombre       string
	OEI          string
	AEI          string
	MetaCodigo   string
	UECodigo     string
	Anio         int
	Activo       bool
}

func (ActividadRecord) RecordType() RecordType { return TipoActividad }

// ClasificadorRecord is an expense classifier read from the TABLAS sheet.
type ClasificadorRecord struct {
	Codigo       string
	Descripcion  string
	TipoGenerico string
}

func (ClasificadorRecord) RecordType() RecordType { return TipoClasificador }

// ResumenRecord is one AO summary row from Formato 5 Resumen. These are read
// and validated but not persisted to a dedicated table yet.
type ResumenRecord struct {
	Anio             int
	UECodigo         string
	MetaCodigo       string
	CodigoAO         string
	NombreAO         string
	PIM              float64
	CCP              float64
	CompromisoAnual  float64
	Devengado        float64
	Girado           float64
	Saldo            float64
	PctAvancePIM     float64
	PctAvanceCCP     float64
	Semaforo         string
	DevengadoMensual map[int]float64
}

func (ResumenRecord) RecordType() RecordType { return TipoAOResumen }

// PersonalRecord is one staff row from Anexo 01.
type PersonalRecord struct {
	Anio           int
	UECodigo       string
	UENombre       string
	Numero         int
	DNI            string
	NombreCompleto string
	Cargo          string
	Area           string
	RegimenLaboral string
	TipoContrato   string
	FechaInicio    string
	FechaFin       string
	Remuneracion   float64
	Observaciones  string
	Estado         string
}

func (PersonalRecord) RecordType() RecordType { return TipoPersonal }

// SigaRecord is one procurement requirement row from a SIGA export.
type SigaRecord struct {
	NumeroRequerimiento string
	Descripcion         string
	UnidadMedida        string
	Cantidad            float64
	PrecioUnitario      float64
	MontoTotal          float64
	Estado              string
	Proveedor           string
	Fecha               string
}

func (SigaRecord) RecordType() RecordType { return TipoSiga }

// ParseResult is the outcome of parsing one workbook. Errors means the run
// must not be persisted; warnings are informational.
type ParseResult struct {
	FormatName string
	Records    []Record
	Errors     []string
	Warnings   []string
	Metadata   map[string]any
}

// OK reports whether the parse produced no blocking errors.
func (r *ParseResult) OK() bool { return len(r.Errors) == 0 }

func newResult(format string) *ParseResult {
	return &ParseResult{FormatName: format, Metadata: map[string]any{}}
}

func (r *ParseResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ParseResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ParseFunc parses raw workbook bytes into a ParseResult. Failures are
// reported through the result's Errors, never through a panic.
type ParseFunc func(data []byte) *ParseResult

// Registry maps every known format label to its parser. DATOS_MAESTROS is an
// alias of CUADRO_AO_META.
var Registry = map[string]ParseFunc{
	FormatoCuadroAOMeta:  func(data []byte) *ParseResult { return ParseCuadroAOMeta(data, 0) },
	FormatoDatosMaestros: func(data []byte) *ParseResult { return ParseCuadroAOMeta(data, 0) },
	FormatoTablas:        ParseTablas,
	Formato1:             ParseFormato1,
	Formato2:             ParseFormato2,
	Formato3:             ParseFormato3,
	Formato04:            ParseFormato04,
	Formato5A:            ParseFormato5A,
	Formato5B:            ParseFormato5B,
	Formato5Resumen:      ParseFormato5Resumen,
	FormatoAnexo01:       ParseAnexo01,
	FormatoSIAF:          ParseSIAF,
	FormatoSIGA:          ParseSIGA,
}
