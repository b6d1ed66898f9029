package parsers

// Format catalog: the fixed list of supported formats shown on the load
// status dashboard, plus the template layout for each hand-filled format.

// Categories of the format catalog.
const (
	CategoriaDatosMaestros    = "DATOS_MAESTROS"
	CategoriaFormatosDDNNTT   = "FORMATOS_DDNNTT"
	CategoriaSistemasExternos = "SISTEMAS_EXTERNOS"
)

// FormatoInfo describes one catalog entry.
type FormatoInfo struct {
	Formato        string `json:"formato"`
	PlantillaKey   string `json:"plantillaKey,omitempty"`
	Nombre         string `json:"nombre"`
	Descripcion    string `json:"descripcion"`
	Categoria      string `json:"categoria"`
	EsRequerido    bool   `json:"esRequerido"`
	TienePlantilla bool   `json:"tienePlantilla"`
	Impacto        string `json:"impacto"`
	UploadEndpoint string `json:"uploadEndpoint"`
}

const uploadEndpoint = "/api/v1/importacion/upload"

// FormatoCatalog lists every supported format in dashboard order.
var FormatoCatalog = []FormatoInfo{
	{
		Formato:        FormatoCuadroAOMeta,
		PlantillaKey:   "cuadro_ao_meta",
		Nombre:         "Cuadro AO-Meta",
		Descripcion:    "Datos maestros: unidades ejecutoras, metas presupuestales y actividades operativas CEPLAN.",
		Categoria:      CategoriaDatosMaestros,
		EsRequerido:    true,
		TienePlantilla: true,
		Impacto:        "Habilita la resolución de UEs, metas y AOs en todos los demás formatos",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        FormatoTablas,
		PlantillaKey:   "tablas",
		Nombre:         "Tablas de Clasificadores",
		Descripcion:    "Catálogo de clasificadores de gasto con su tipo genérico.",
		Categoria:      CategoriaDatosMaestros,
		EsRequerido:    true,
		TienePlantilla: true,
		Impacto:        "Habilita la resolución de clasificadores en los formatos presupuestales",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        Formato1,
		PlantillaKey:   "formato1",
		Nombre:         "Formato 1 - Programación Anual",
		Descripcion:    "Programación presupuestal anual por clasificador (PIA, PIM y programación mensual).",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    true,
		TienePlantilla: true,
		Impacto:        "Dashboard Presupuesto: KPIs PIA/PIM/Certificado/Devengado",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        Formato2,
		PlantillaKey:   "formato2",
		Nombre:         "Formato 2 - Programación por Tarea",
		Descripcion:    "Programación presupuestal abierta por meta, actividad operativa y tarea.",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    false,
		TienePlantilla: true,
		Impacto:        "Detalle de programación por tarea y AO",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        Formato3,
		PlantillaKey:   "formato3",
		Nombre:         "Formato 3 - Seguimiento con Justificación",
		Descripcion:    "Seguimiento de ejecución por clasificador con justificación de desviaciones.",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    false,
		TienePlantilla: true,
		Impacto:        "Seguimiento de ejecución y justificaciones",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        Formato04,
		PlantillaKey:   "formato04",
		Nombre:         "Formato 04 - Nota de Modificación",
		Descripcion:    "Notas de modificación presupuestal (habilitadora / habilitada).",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    false,
		TienePlantilla: true,
		Impacto:        "Historial de modificaciones presupuestales",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        Formato5A,
		PlantillaKey:   "formato5a",
		Nombre:         "Formato 5.A - Programación Mensual por AO",
		Descripcion:    "Programación mensual por actividad operativa.",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    true,
		TienePlantilla: true,
		Impacto:        "Programación mensual del dashboard de actividades",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        Formato5B,
		PlantillaKey:   "formato5b",
		Nombre:         "Formato 5.B - Ejecución Mensual por AO",
		Descripcion:    "Seguimiento mensual programado/ejecutado/saldo por actividad operativa.",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    true,
		TienePlantilla: true,
		Impacto:        "Ejecución mensual del dashboard de actividades",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        Formato5Resumen,
		PlantillaKey:   "formato5_resumen",
		Nombre:         "Formato 5 Resumen",
		Descripcion:    "Resumen ejecutivo por actividad operativa con semáforo de avance.",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    false,
		TienePlantilla: true,
		Impacto:        "Resumen ejecutivo (solo lectura, sin persistencia específica)",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        FormatoAnexo01,
		PlantillaKey:   "anexo01",
		Nombre:         "Anexo 01 - Personal",
		Descripcion:    "Relación de personal con DNI, cargo y remuneración mensual.",
		Categoria:      CategoriaFormatosDDNNTT,
		EsRequerido:    false,
		TienePlantilla: true,
		Impacto:        "Información de RRHH (solo lectura, sin persistencia específica)",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        FormatoSIAF,
		Nombre:         "SIAF - Ejecución",
		Descripcion:    "Export de ejecución del SIAF por clasificador.",
		Categoria:      CategoriaSistemasExternos,
		EsRequerido:    false,
		TienePlantilla: false,
		Impacto:        "Actualiza ejecucion presupuestal real (devengado, girado)",
		UploadEndpoint: uploadEndpoint,
	},
	{
		Formato:        FormatoSIGA,
		Nombre:         "SIGA - Requerimientos",
		Descripcion:    "Export de requerimientos logísticos del SIGA.",
		Categoria:      CategoriaSistemasExternos,
		EsRequerido:    false,
		TienePlantilla: false,
		Impacto:        "Información logística (solo lectura, sin persistencia específica)",
		UploadEndpoint: uploadEndpoint,
	},
}

// FindFormatoInfo returns the catalog entry for a format label.
func FindFormatoInfo(formato string) (FormatoInfo, bool) {
	for _, fi := range FormatoCatalog {
		if fi.Formato == formato {
			return fi, true
		}
	}
	return FormatoInfo{}, false
}

// Plantilla describes the expected layout of a hand-filled template.
type Plantilla struct {
	Key         string   `json:"key"`
	Nombre      string   `json:"nombre"`
	Descripcion string   `json:"descripcion"`
	Hoja        string   `json:"hoja"`
	Columnas    []string `json:"columnas"`
	FilaInicio  int      `json:"filaInicio"` // 1-based first data row
}

var meses = []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

func withMeses(prefix string, cols ...string) []string {
	out := append([]string{}, cols...)
	for _, m := range meses {
		if prefix == "" {
			out = append(out, m)
		} else {
			out = append(out, prefix+" "+m)
		}
	}
	return out
}

// PlantillaCatalog maps template keys to their layouts.
var PlantillaCatalog = map[string]Plantilla{
	"cuadro_ao_meta": {
		Key:         "cuadro_ao_meta",
		Nombre:      "Cuadro AO-Meta",
		Descripcion: "Datos maestros de UEs, metas y actividades operativas.",
		Hoja:        "Cuadro AO-Meta",
		Columnas:    []string{"N°", "Codigo CEPLAN", "Nombre AO", "Codigo Meta", "Descripcion Meta", "Area Responsable"},
		FilaInicio:  7,
	},
	"tablas": {
		Key:         "tablas",
		Nombre:      "Tablas de Clasificadores",
		Descripcion: "Catálogo de clasificadores de gasto.",
		Hoja:        "Tablas",
		Columnas:    []string{"Clasificador", "Tipo Generico", "Tipo Especifico", "Sub Tipo", "Descripcion", "Estado"},
		FilaInicio:  5,
	},
	"formato1": {
		Key:         "formato1",
		Nombre:      "Formato 1",
		Descripcion: "Programación anual por clasificador.",
		Hoja:        "Formato 1",
		Columnas:    append(withMeses("", "Clasificador", "Descripcion", "PIA", "PIM"), "Total"),
		FilaInicio:  8,
	},
	"formato2": {
		Key:         "formato2",
		Nombre:      "Formato 2",
		Descripcion: "Programación por meta, AO y tarea.",
		Hoja:        "Formato 2",
		Columnas:    withMeses("", "Cod Meta", "Desc Meta", "Cod AO", "Desc AO", "Cod Tarea", "Desc Tarea", "Clasificador", "Desc Clasificador", "PIM"),
		FilaInicio:  8,
	},
	"formato3": {
		Key:         "formato3",
		Nombre:      "Formato 3",
		Descripcion: "Seguimiento con justificación.",
		Hoja:        "Formato 3",
		Columnas:    []string{"Clasificador", "Desc Clasificador", "PIM", "Programado", "Ejecutado", "Saldo", "% Avance", "Justificacion", "Observaciones"},
		FilaInicio:  8,
	},
	"formato04": {
		Key:         "formato04",
		Nombre:      "Formato 04",
		Descripcion: "Nota de modificación presupuestal.",
		Hoja:        "Formato 04",
		Columnas:    []string{"Clasificador", "Descripcion", "Asignado", "Habilitadora", "Habilitada", "PIM Resultante"},
		FilaInicio:  8,
	},
	"formato5a": {
		Key:         "formato5a",
		Nombre:      "Formato 5.A",
		Descripcion: "Programación mensual por AO.",
		Hoja:        "Formato 5.A",
		Columnas:    append(withMeses("", "Codigo AO", "Nombre AO"), "Total Programado"),
		FilaInicio:  12,
	},
	"formato5b": {
		Key:         "formato5b",
		Nombre:      "Formato 5.B",
		Descripcion: "Ejecución mensual por AO.",
		Hoja:        "Formato 5.B",
		Columnas: append(append(append(
			withMeses("Prog", "Codigo AO", "Nombre AO"),
			withMeses("Ejec")...),
			withMeses("Saldo")...),
			"Total Prog", "Total Ejec", "Total Saldo", "PIM", "% Avance"),
		FilaInicio: 12,
	},
	"formato5_resumen": {
		Key:         "formato5_resumen",
		Nombre:      "Formato 5 Resumen",
		Descripcion: "Resumen ejecutivo por AO.",
		Hoja:        "Formato 5 Resumen",
		Columnas:    withMeses("", "Codigo AO", "Nombre AO", "PIM", "CCP", "Compromiso Anual", "Devengado", "Girado", "Saldo", "% Avance PIM", "% Avance CCP", "Semaforo"),
		FilaInicio:  7,
	},
	"anexo01": {
		Key:         "anexo01",
		Nombre:      "Anexo 01",
		Descripcion: "Relación de personal.",
		Hoja:        "Anexo 01",
		Columnas:    []string{"N°", "DNI", "Apellidos y Nombres", "Cargo", "Area", "Regimen Laboral", "Tipo Contrato", "Fecha Inicio", "Fecha Fin", "Remuneracion Mensual", "Observaciones", "Estado"},
		FilaInicio:  8,
	},
}
