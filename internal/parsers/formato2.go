package parsers

// Formato 2: budget programming opened up by meta / actividad operativa /
// tarea, one row per (tarea, clasificador) with PIM and monthly columns.

const formato2DataStart = 7

// ParseFormato2 parses a Formato 2 workbook.
func ParseFormato2(data []byte) *ParseResult {
	res := newResult(Formato2)

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

	headerRow := findHeaderRow(rows, 10, "clasificador", "tarea")
	if headerRow < 0 {
		headerRow = formato2DataStart - 1
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colCodMeta := matchColumn(headers, "cod meta", "codigo meta", "cod_meta")
	colCodAO := matchColumn(headers, "cod ao", "codigo ao", "cod_ao")
	colDescAO := matchColumn(headers, "desc ao", "descripcion ao")
	colCodTarea := matchColumn(headers, "cod tarea", "codigo tarea", "cod_tarea", "tarea")
	colDescTarea := matchColumn(headers, "desc tarea", "descripcion tarea")
	colClasificador := matchColumn(headers, "clasificador")
	colDescClasificador := matchColumn(headers, "desc clasificador", "descripcion clasificador", "descripcion", "descripción")
	colPIM := matchColumn(headers, "pim")
	colTotal := matchColumn(headers, "total")

	required := map[string]int{
		"clasificador": colClasificador,
		"pim":          colPIM,
		"cod_tarea":    colCodTarea,
	}
	for _, name := range []string{"clasificador", "pim", "cod_tarea"} {
		if required[name] < 0 {
			res.errorf("Formato2: columna '%s' no encontrada. Columnas detectadas: %v", name, headers)
		}
	}
	if !res.OK() {
		return res
	}

	monthCols := findMonthColumns(headers)
	if len(monthCols) < 12 {
		monthCols = make(map[int]int, 12)
		for m := 1; m <= 12; m++ {
			monthCols[m] = colPIM + m
		}
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < formato2DataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "clasificador", "tarea") {
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

		effectiveMeta := cleanStr(cellAt(rows, i, colCodMeta))
		if effectiveMeta == "" {
			effectiveMeta = metaCodigo
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
		declared := pim
		if colTotal >= 0 {
			if t := toFloat(cellAt(rows, i, colTotal), 0); t != 0 {
				declared = t
			}
		}
		if declared != 0 && abs(monthlyTotal-declared) > 1.0 {
			res.warnf("Fila %d: suma mensual (%.2f) ≠ total declarado (%.2f)", i+1, monthlyTotal, declared)
		}

		rec := PresupuestalRecord{
			Anio:         anio,
			UECodigo:     ueCodigo,
			MetaCodigo:   effectiveMeta,
			Clasificador: clasificador,
			Descripcion:  cleanStr(cellAt(rows, i, colDescClasificador)),
			PIM:          pim,
			Saldo:        pim,
			CodigoAO:     cleanStr(cellAt(rows, i, colCodAO)),
			DescAO:       cleanStr(cellAt(rows, i, colDescAO)),
			CodTarea:     cleanStr(cellAt(rows, i, colCodTarea)),
			DescTarea:    cleanStr(cellAt(rows, i, colDescTarea)),
		}
		res.Records = append(res.Records, rec)
		for m := 1; m <= 12; m++ {
			res.Records = append(res.Records, MensualRecord{
				Clasificador: clasificador,
				Anio:         anio,
				UECodigo:     ueCodigo,
				MetaCodigo:   effectiveMeta,
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
