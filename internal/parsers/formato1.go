package parsers

// Formato 1: annual budget programming per classifier (PIA, PIM and the
// twelve monthly programming columns), one workbook per unidad/meta.

const formato1DataStart = 7 // first data row, 0-based

// ParseFormato1 parses a Formato 1 workbook.
func ParseFormato1(data []byte) *ParseResult {
	res := newResult(Formato1)

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

	// Context block above the table
	ctx := extractContext(rows, map[string][2]int{
		"ue_nombre":   {1, 1},
		"meta_codigo": {2, 1},
		"anio":        {3, 1},
	})
	ueNombre := ctx["ue_nombre"]
	if ueNombre == "" {
		ueNombre = scanForValue(rows, "unidad ejecutora", 15, 1)
	}
	ueCodigo := ueCodigoFromNombre(ueNombre)
	if ueCodigo == "" {
		ueCodigo = scanForValue(rows, "codigo ue", 15, 1)
	}
	metaCodigo := ctx["meta_codigo"]
	if metaCodigo == "" {
		metaCodigo = scanForValue(rows, "meta presupuestal", 15, 1)
		if metaCodigo == "" {
			metaCodigo = scanForValue(rows, "meta", 15, 1)
		}
	}
	anioStr := ctx["anio"]
	if anioStr == "" {
		anioStr = scanForValue(rows, "año", 15, 1)
		if anioStr == "" {
			anioStr = scanForValue(rows, "ano", 15, 1)
		}
	}
	anio := toInt(anioStr, 0)
	if anio == 0 {
		res.warnf("Formato1: no se pudo determinar el año del contexto; se usará 0.")
	}

	headerRow := findHeaderRow(rows, 10, "pia", "pim")
	if headerRow < 0 {
		headerRow = formato1DataStart - 1
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colClasificador := matchColumn(headers, "clasificador", "codigo")
	colDescripcion := matchColumn(headers, "descripcion", "descripción")
	colPIA := matchColumn(headers, "pia")
	colPIM := matchColumn(headers, "pim")
	colTotal := matchColumn(headers, "total")

	required := map[string]int{
		"clasificador": colClasificador,
		"descripcion":  colDescripcion,
		"pia":          colPIA,
		"pim":          colPIM,
	}
	for _, name := range []string{"clasificador", "descripcion", "pia", "pim"} {
		if required[name] < 0 {
			res.errorf("Formato1: columna '%s' no encontrada. Columnas detectadas: %v", name, headers)
		}
	}
	if !res.OK() {
		return res
	}

	monthCols := findMonthColumns(headers)
	if len(monthCols) < 12 {
		// Positional fallback: the twelve columns after PIM
		monthCols = make(map[int]int, 12)
		for m := 1; m <= 12; m++ {
			monthCols[m] = colPIM + m
		}
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < formato1DataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "clasificador", "pia", "pim", "descripcion") {
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

		pia := toFloat(cellAt(rows, i, colPIA), 0)
		pim := toFloat(cellAt(rows, i, colPIM), 0)
		if pia < 0 || pim < 0 {
			res.warnf("Fila %d: PIA o PIM negativo; fila omitida.", i+1)
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

		res.Records = append(res.Records, PresupuestalRecord{
			Anio:         anio,
			UECodigo:     ueCodigo,
			MetaCodigo:   metaCodigo,
			Clasificador: clasificador,
			Descripcion:  cleanStr(cellAt(rows, i, colDescripcion)),
			PIA:          pia,
			PIM:          pim,
			Saldo:        pim,
		})
		for m := 1; m <= 12; m++ {
			res.Records = append(res.Records, MensualRecord{
				Clasificador: clasificador,
				Anio:         anio,
				UECodigo:     ueCodigo,
				MetaCodigo:   metaCodigo,
				Mes:          m,
				Programado:   monthly[m],
				Saldo:        monthly[m],
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

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
