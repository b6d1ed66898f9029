package parsers

import (
	"math"
	"regexp"
)

// SIAF: execution export from the national finance system. Carries real
// execution amounts (certificado, compromiso, devengado, girado) per
// classifier, with no unidad/meta context.

const siafDataStart = 4
const siafDefaultAnio = 2026

var siafAnioRe = regexp.MustCompile(`(20[2-3]\d)`)

// ParseSIAF parses a SIAF execution export.
func ParseSIAF(data []byte) *ParseResult {
	res := newResult(FormatoSIAF)

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
	rows, err := sheetRows(f, sheets[0])
	if err != nil {
		res.errorf("No se pudo leer la hoja '%s': %v", sheets[0], err)
		return res
	}

	defaultAnio := siafContextAnio(rows)

	headerRow := findHeaderRow(rows, 10, "clasificador", "devengado", "girado", "certificado")
	if headerRow < 0 {
		headerRow = siafDataStart - 1
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colAnio := matchColumn(headers, "año", "ano", "ejercicio")
	colClasificador := matchColumn(headers, "clasificador", "codigo", "código")
	colDescripcion := matchColumn(headers, "descripcion", "descripción")
	colPIA := matchColumn(headers, "pia")
	colPIM := matchColumn(headers, "pim")
	colCertificado := matchColumn(headers, "certificado", "certificacion", "certificación")
	colCompromiso := matchColumn(headers, "compromiso anual", "compromiso")
	colDevengado := matchColumn(headers, "devengado")
	colGirado := matchColumn(headers, "girado")

	if colClasificador < 0 {
		res.errorf("SIAF: columna 'clasificador' no encontrada. Columnas detectadas: %v", headers)
	}
	if colDevengado < 0 {
		res.errorf("SIAF: columna 'devengado' no encontrada. Columnas detectadas: %v", headers)
	}
	if !res.OK() {
		return res
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < siafDataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "clasificador", "devengado", "girado") {
			continue
		}

		clasificador := normalizeClasificador(cleanStr(cellAt(rows, i, colClasificador)))
		if !isValidClasificador(clasificador) {
			if clasificador != "" {
				res.warnf("Fila %d: código clasificador inválido ('%s') — fila omitida.", i+1, clasificador)
			}
			skippedRows++
			continue
		}

		anio := defaultAnio
		if colAnio >= 0 {
			if v := toInt(cellAt(rows, i, colAnio), 0); v > 2000 {
				anio = v
			}
		}

		pim := toFloat(cellAt(rows, i, colPIM), 0)
		devengado := toFloat(cellAt(rows, i, colDevengado), 0)

		res.Records = append(res.Records, PresupuestalRecord{
			Anio:            anio,
			Clasificador:    clasificador,
			Descripcion:     cleanStr(cellAt(rows, i, colDescripcion)),
			PIA:             toFloat(cellAt(rows, i, colPIA), 0),
			PIM:             pim,
			Certificado:     toFloat(cellAt(rows, i, colCertificado), 0),
			CompromisoAnual: toFloat(cellAt(rows, i, colCompromiso), 0),
			Devengado:       devengado,
			Girado:          toFloat(cellAt(rows, i, colGirado), 0),
			Saldo:           math.Round((pim-devengado)*100) / 100,
		})
		validRows++
	}

	res.Metadata["valid_rows"] = validRows
	res.Metadata["skipped_rows"] = skippedRows
	res.Metadata["anio"] = defaultAnio
	return res
}

// siafContextAnio scans the preamble for the fiscal year, defaulting to the
// current planning year when nothing is found.
func siafContextAnio(rows [][]string) int {
	if v := toInt(scanForValue(rows, "año", 10, 1), 0); v > 2000 {
		return v
	}
	if v := toInt(scanForValue(rows, "ejercicio", 10, 1), 0); v > 2000 {
		return v
	}
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		for _, c := range rows[i] {
			if m := siafAnioRe.FindString(c); m != "" {
				return toInt(m, siafDefaultAnio)
			}
		}
	}
	return siafDefaultAnio
}
