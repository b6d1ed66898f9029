package parsers

import "strings"

// Formato 5 Resumen: executive summary per operational activity with PIM,
// CCP, execution amounts, avance percentages and the semáforo flag.

const formato5ResumenDataStart = 6

// ParseFormato5Resumen parses a Formato 5 Resumen workbook.
func ParseFormato5Resumen(data []byte) *ParseResult {
	res := newResult(Formato5Resumen)

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

	headerRow := findHeaderRow(rows, 10, "codigo ao", "código ao", "devengado")
	if headerRow < 0 {
		headerRow = formato5ResumenDataStart - 1
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colCodigoAO := matchColumn(headers, "codigo ao", "código ao", "ceplan")
	colNombreAO := matchColumn(headers, "nombre ao", "nombre", "actividad")
	colPIM := matchColumn(headers, "pim")
	colCCP := matchColumn(headers, "ccp")
	colCompromiso := matchColumn(headers, "compromiso anual", "compromiso")
	colDevengado := matchColumn(headers, "devengado")
	colGirado := matchColumn(headers, "girado")
	colSaldo := matchColumn(headers, "saldo")
	colPctPIM := matchColumn(headers, "% avance pim", "avance pim")
	colPctCCP := matchColumn(headers, "% avance ccp", "avance ccp")
	colSemaforo := matchColumn(headers, "semaforo", "semáforo")

	if colCodigoAO < 0 {
		res.errorf("Formato5Resumen: columna 'codigo_ao' no encontrada. Columnas detectadas: %v", headers)
		return res
	}

	monthCols := findMonthColumns(headers)

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < formato5ResumenDataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "codigo ao", "código ao", "semaforo", "semáforo") {
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

		devengadoMensual := make(map[int]float64, len(monthCols))
		for m, c := range monthCols {
			devengadoMensual[m] = toFloat(cellAt(rows, i, c), 0)
		}

		res.Records = append(res.Records, ResumenRecord{
			Anio:             anio,
			UECodigo:         ueCodigo,
			MetaCodigo:       metaCodigo,
			CodigoAO:         codigoAO,
			NombreAO:         cleanStr(cellAt(rows, i, colNombreAO)),
			PIM:              toFloat(cellAt(rows, i, colPIM), 0),
			CCP:              toFloat(cellAt(rows, i, colCCP), 0),
			CompromisoAnual:  toFloat(cellAt(rows, i, colCompromiso), 0),
			Devengado:        toFloat(cellAt(rows, i, colDevengado), 0),
			Girado:           toFloat(cellAt(rows, i, colGirado), 0),
			Saldo:            toFloat(cellAt(rows, i, colSaldo), 0),
			PctAvancePIM:     toFloat(cellAt(rows, i, colPctPIM), 0),
			PctAvanceCCP:     toFloat(cellAt(rows, i, colPctCCP), 0),
			Semaforo:         cleanStr(cellAt(rows, i, colSemaforo)),
			DevengadoMensual: devengadoMensual,
		})
		validRows++
	}

	res.Metadata["valid_rows"] = validRows
	res.Metadata["skipped_rows"] = skippedRows
	res.Metadata["anio"] = anio
	res.Metadata["ue_codigo"] = ueCodigo
	res.Metadata["meta_codigo"] = metaCodigo
	return res
}
