package parsers

import "math"

// Formato 3: budget execution follow-up per classifier, with the
// justification text DDNNTT attach to each line.

const formato3DataStart = 7

// ParseFormato3 parses a Formato 3 workbook.
func ParseFormato3(data []byte) *ParseResult {
	res := newResult(Formato3)

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
		"ue_nombre":   {2, 1},
		"ue_codigo":   {2, 3},
		"meta_codigo": {3, 3},
		"anio":        {4, 3},
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

	headerRow := findHeaderRow(rows, 10, "justificacion", "justificación", "tarea")
	if headerRow < 0 {
		headerRow = formato3DataStart - 1
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colClasificador := matchColumn(headers, "clasificador")
	colDescripcion := matchColumn(headers, "desc clasificador", "descripcion", "descripción")
	colPIM := matchColumn(headers, "pim")
	colProgramado := matchColumn(headers, "programado")
	colEjecutado := matchColumn(headers, "ejecutado")
	colSaldo := matchColumn(headers, "saldo")
	colPctAvance := matchColumn(headers, "% avance", "avance")
	colJustificacion := matchColumn(headers, "justificacion", "justificación")
	colObservaciones := matchColumn(headers, "observaciones", "observación", "observacion")

	required := map[string]int{
		"clasificador":  colClasificador,
		"pim":           colPIM,
		"justificacion": colJustificacion,
	}
	for _, name := range []string{"clasificador", "pim", "justificacion"} {
		if required[name] < 0 {
			res.errorf("Formato3: columna '%s' no encontrada. Columnas detectadas: %v", name, headers)
		}
	}
	if !res.OK() {
		return res
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < formato3DataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "clasificador", "justificacion", "justificación") {
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

		pim := toFloat(cellAt(rows, i, colPIM), 0)
		if pim < 0 {
			res.warnf("Fila %d: PIM negativo; fila omitida.", i+1)
			skippedRows++
			continue
		}
		programado := toFloat(cellAt(rows, i, colProgramado), 0)
		ejecutado := toFloat(cellAt(rows, i, colEjecutado), 0)
		saldoDeclarado := toFloat(cellAt(rows, i, colSaldo), 0)
		pctAvance := toFloat(cellAt(rows, i, colPctAvance), 0)

		saldo := saldoDeclarado
		computed := math.Round((pim-ejecutado)*100) / 100
		if colSaldo < 0 || cleanStr(cellAt(rows, i, colSaldo)) == "" {
			saldo = computed
		} else if abs(saldoDeclarado-computed) > 1.0 {
			res.warnf("Fila %d: saldo declarado (%.2f) ≠ PIM - ejecutado (%.2f)", i+1, saldoDeclarado, computed)
		}

		res.Records = append(res.Records, PresupuestalRecord{
			Anio:          anio,
			UECodigo:      ueCodigo,
			MetaCodigo:    metaCodigo,
			Clasificador:  clasificador,
			Descripcion:   cleanStr(cellAt(rows, i, colDescripcion)),
			PIM:           pim,
			Saldo:         saldo,
			Programado:    programado,
			Ejecutado:     ejecutado,
			PctAvance:     pctAvance,
			Justificacion: cleanStr(cellAt(rows, i, colJustificacion)),
			Observaciones: cleanStr(cellAt(rows, i, colObservaciones)),
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
