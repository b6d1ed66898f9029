package parsers

import "strings"

// Formato 5.A: physical/financial monthly programming per operational
// activity (AO), twelve programmed amounts per row.

const formato5aDataStart = 11

// ParseFormato5A parses a Formato 5.A workbook.
func ParseFormato5A(data []byte) *ParseResult {
	res := newResult(Formato5A)

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

	ctx := extractContext(rows, map[string][2]int{
		"ue_nombre":   {2, 2},
		"ue_codigo":   {2, 5},
		"meta_codigo": {3, 5},
		"anio":        {4, 5},
	})
	ueCodigo := ctx["ue_codigo"]
	if ueCodigo == "" {
		ueCodigo = ueCodigoFromNombre(ctx["ue_nombre"])
	}
	metaCodigo := ctx["meta_codigo"]
	if metaCodigo == "" {
		metaCodigo = scanForValue(rows, "meta", 15, 1)
	}
	anio := toInt(ctx["anio"], 0)
	if anio == 0 {
		anio = toInt(scanForValue(rows, "año", 15, 1), 0)
	}

	headerRow := findHeaderRow(rows, 12, "codigo ao", "código ao", "ceplan")
	if headerRow < 0 {
		headerRow = formato5aDataStart - 2
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colCodigoAO := matchColumn(headers, "codigo ao", "código ao", "codigo ceplan", "ceplan")
	colNombreAO := matchColumn(headers, "nombre ao", "nombre", "actividad")
	colTotal := matchColumn(headers, "total")

	if colCodigoAO < 0 {
		res.errorf("Formato5A: columna 'codigo_ao' no encontrada. Columnas detectadas: %v", headers)
		return res
	}

	monthCols := findMonthColumns(headers)
	if len(monthCols) < 12 {
		// Positional fallback: the twelve columns after nombre AO (or the code)
		base := colNombreAO
		if base < 0 {
			base = colCodigoAO
		}
		monthCols = make(map[int]int, 12)
		for m := 1; m <= 12; m++ {
			monthCols[m] = base + m
		}
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < formato5aDataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "codigo ao", "código ao", "ceplan") {
			continue
		}

		codigoAO := strings.ToUpper(cleanStr(cellAt(rows, i, colCodigoAO)))
		if len(normalizeClasificador(codigoAO)) < 6 {
			if codigoAO != "" {
				res.warnf("Fila %d: codigo_ao inválido ('%s') — fila omitida.", i+1, codigoAO)
			}
			skippedRows++
			continue
		}

		monthly := make(map[int]float64, 12)
		monthlyTotal := 0.0
		for m := 1; m <= 12; m++ {
			v := toFloat(cellAt(rows, i, monthCols[m]), 0)
			if v < 0 {
				v = 0
			}
			monthly[m] = v
			monthlyTotal += v
		}
		if colTotal >= 0 {
			declared := toFloat(cellAt(rows, i, colTotal), 0)
			if declared != 0 && abs(monthlyTotal-declared) > 1.0 {
				res.warnf("Fila %d: suma mensual (%.2f) ≠ total declarado (%.2f)", i+1, monthlyTotal, declared)
			}
		}

		nombreAO := cleanStr(cellAt(rows, i, colNombreAO))
		for m := 1; m <= 12; m++ {
			res.Records = append(res.Records, MensualRecord{
				CodigoAO:   codigoAO,
				NombreAO:   nombreAO,
				Anio:       anio,
				UECodigo:   ueCodigo,
				MetaCodigo: metaCodigo,
				Mes:        m,
				Programado: monthly[m],
				Saldo:      monthly[m],
			})
		}
		validRows++
	}

	res.Metadata["valid_rows"] = validRows
	res.Metadata["skipped_rows"] = skippedRows
	res.Metadata["anio"] = anio
	res.Metadata["ue_codigo"] = ueCodigo
	res.Metadata["meta_codigo"] = metaCodigo
	return res
}
