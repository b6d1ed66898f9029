package parsers

import (
	"regexp"
	"sort"
	"strings"
)

// TABLAS: the expense-classifier reference sheet. One row per classifier
// code with its description and generic type (2.1 / 2.3 / 2.5 / 2.6).

var tipoGenericoRe = regexp.MustCompile(`\b(2\.[1356])\b`)

var validTiposGenericos = map[string]bool{
	"2.1": true,
	"2.3": true,
	"2.5": true,
	"2.6": true,
}

// ParseTablas parses a TABLAS workbook.
func ParseTablas(data []byte) *ParseResult {
	res := newResult(FormatoTablas)

	f, err := openWorkbook(data)
	if err != nil {
		res.errorf("No se pudo abrir el archivo: %v", err)
		return res
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		res.errorf("El archivo no contiene hojas.")
		return res
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.Contains(strings.ToLower(s), "tabla") {
			sheet = s
			break
		}
	}
	rows, err := sheetRows(f, sheet)
	if err != nil {
		res.errorf("No se pudo leer la hoja '%s': %v", sheet, err)
		return res
	}

	headerRow := findHeaderRow(rows, 8, "codigo", "descripcion", "clasificador")
	if headerRow < 0 {
		headerRow = 0
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colCodigo := matchColumn(headers, "clasificador", "codigo", "código")
	colDescripcion := matchColumn(headers, "descripcion", "descripción")
	colTipo := matchColumn(headers, "tipo generico", "tipo genérico", "tipo")

	if colCodigo < 0 {
		res.errorf("Tablas: columna 'codigo' no encontrada. Columnas detectadas: %v", headers)
	}
	if colDescripcion < 0 {
		res.errorf("Tablas: columna 'descripcion' no encontrada. Columnas detectadas: %v", headers)
	}
	if !res.OK() {
		return res
	}

	seen := make(map[string]bool)
	tipos := make(map[string]bool)
	skippedRows := 0
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isTipoHeader(cellAt(rows, i, colCodigo)) {
			continue
		}

		codigo := normalizeClasificador(cleanStr(cellAt(rows, i, colCodigo)))
		if !isValidClasificador(codigo) {
			if codigo != "" {
				res.warnf("Fila %d: código clasificador inválido ('%s') — fila omitida.", i+1, codigo)
			}
			skippedRows++
			continue
		}

		descripcion := cleanStr(cellAt(rows, i, colDescripcion))
		if descripcion == "" {
			res.warnf("Fila %d: clasificador '%s' sin descripción; fila omitida.", i+1, codigo)
			skippedRows++
			continue
		}

		if seen[codigo] {
			res.warnf("Fila %d: clasificador '%s' duplicado; segunda ocurrencia omitida.", i+1, codigo)
			skippedRows++
			continue
		}
		seen[codigo] = true

		tipo := normalizeTipoGenerico(cellAt(rows, i, colTipo))
		if tipo == "" {
			tipo = inferTipoGenerico(codigo)
		}
		if tipo != "" {
			tipos[tipo] = true
		}

		res.Records = append(res.Records, ClasificadorRecord{
			Codigo:       codigo,
			Descripcion:  descripcion,
			TipoGenerico: tipo,
		})
	}

	tiposList := make([]string, 0, len(tipos))
	for t := range tipos {
		tiposList = append(tiposList, t)
	}
	sort.Strings(tiposList)

	res.Metadata["total_clasificadores"] = len(res.Records)
	res.Metadata["skipped_rows"] = skippedRows
	res.Metadata["tipos_genericos"] = tiposList
	return res
}

// isTipoHeader reports whether a code cell is really a section header
// ("GENERICO 2.3 ...", "TIPO ...") rather than a classifier row.
func isTipoHeader(s string) bool {
	sl := strings.ToLower(s)
	for _, kw := range []string{"grupo", "generico", "genérico", "tipo"} {
		if strings.Contains(sl, kw) {
			return true
		}
	}
	return false
}

// normalizeTipoGenerico extracts a valid generic type from free text.
func normalizeTipoGenerico(s string) string {
	if m := tipoGenericoRe.FindString(s); m != "" && validTiposGenericos[m] {
		return m
	}
	return ""
}

// inferTipoGenerico derives the generic type from the first two segments of
// the classifier code itself.
func inferTipoGenerico(codigo string) string {
	parts := strings.SplitN(codigo, ".", 3)
	if len(parts) < 2 {
		return ""
	}
	tipo := parts[0] + "." + parts[1]
	if validTiposGenericos[tipo] {
		return tipo
	}
	return ""
}
