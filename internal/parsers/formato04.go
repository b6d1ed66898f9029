package parsers

// Formato 04: nota de modificación presupuestal. Each row moves credit
// between classifiers (habilitadora gives, habilitada receives).

const formato04DataStart = 7

// ParseFormato04 parses a Formato 04 workbook.
func ParseFormato04(data []byte) *ParseResult {
	res := newResult(Formato04)

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
		"ue_nombre":   {1, 2},
		"ue_codigo":   {1, 5},
		"nota_numero": {2, 2},
		"fecha":       {2, 5},
		"anio":        {3, 5},
	})
	ueCodigo := ctx["ue_codigo"]
	if ueCodigo == "" {
		ueCodigo = scanForValue(rows, "codigo ue", 15, 1)
		if ueCodigo == "" {
			ueCodigo = ueCodigoFromNombre(ctx["ue_nombre"])
		}
	}
	notaNumero := ctx["nota_numero"]
	if notaNumero == "" {
		notaNumero = scanForValue(rows, "nota", 15, 1)
	}
	fecha := ctx["fecha"]
	if fecha == "" {
		fecha = scanForValue(rows, "fecha", 15, 1)
	}
	fecha = normalizeFecha(fecha)
	anio := toInt(ctx["anio"], 0)
	if anio == 0 {
		anio = toInt(scanForValue(rows, "año", 15, 1), 0)
	}

	headerRow := findHeaderRow(rows, 10, "habilitadora", "clasificador")
	if headerRow < 0 {
		headerRow = formato04DataStart - 1
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colClasificador := matchColumn(headers, "clasificador")
	colDescripcion := matchColumn(headers, "descripcion", "descripción")
	colAsignado := matchColumn(headers, "asignado")
	colHabilitadora := matchColumn(headers, "habilitadora")
	colHabilitada := matchColumn(headers, "habilitada")
	colPIMResultante := matchColumn(headers, "pim resultante", "pim")

	required := map[string]int{
		"clasificador":   colClasificador,
		"habilitadora":   colHabilitadora,
		"habilitada":     colHabilitada,
		"pim_resultante": colPIMResultante,
	}
	for _, name := range []string{"clasificador", "habilitadora", "habilitada", "pim_resultante"} {
		if required[name] < 0 {
			res.errorf("Formato04: columna '%s' no encontrada. Columnas detectadas: %v", name, headers)
		}
	}
	if !res.OK() {
		return res
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < formato04DataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "clasificador", "habilitadora", "habilitada") {
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

		asignado := toFloat(cellAt(rows, i, colAsignado), 0)
		habilitadora := toFloat(cellAt(rows, i, colHabilitadora), 0)
		habilitada := toFloat(cellAt(rows, i, colHabilitada), 0)
		pimDeclarado := toFloat(cellAt(rows, i, colPIMResultante), 0)

		pimCalculado := asignado + habilitadora - habilitada
		pimFinal := pimDeclarado
		if abs(pimCalculado-pimDeclarado) > 1.0 {
			res.warnf("Fila %d: PIM resultante declarado (%.2f) ≠ calculado (%.2f); usando calculado.", i+1, pimDeclarado, pimCalculado)
			pimFinal = pimCalculado
		}
		if pimFinal < 0 {
			res.warnf("Fila %d: PIM resultante negativo; fila omitida.", i+1)
			skippedRows++
			continue
		}

		monto := habilitadora
		if habilitada > monto {
			monto = habilitada
		}

		res.Records = append(res.Records, ModificacionRecord{
			Anio:             anio,
			UECodigo:         ueCodigo,
			Clasificador:     clasificador,
			Descripcion:      cleanStr(cellAt(rows, i, colDescripcion)),
			Tipo:             determineTipo(habilitadora, habilitada),
			Monto:            monto,
			NotaModificacion: notaNumero,
			Fecha:            fecha,
			Asignado:         asignado,
			Habilitadora:     habilitadora,
			Habilitada:       habilitada,
			PIMResultante:    pimFinal,
		})
		validRows++
	}

	res.Metadata["valid_rows"] = validRows
	res.Metadata["skipped_rows"] = skippedRows
	res.Metadata["anio"] = anio
	res.Metadata["ue_codigo"] = ueCodigo
	res.Metadata["nota_numero"] = notaNumero
	res.Metadata["fecha"] = fecha
	return res
}

// determineTipo classifies a modification row by which side carries the amount.
func determineTipo(habilitadora, habilitada float64) string {
	switch {
	case habilitadora > 0 && habilitada == 0:
		return "HABILITACION"
	case habilitada > 0 && habilitadora == 0:
		return "HABILITADA"
	case habilitadora > 0 && habilitada > 0:
		if habilitadora >= habilitada {
			return "HABILITACION"
		}
		return "HABILITADA"
	default:
		return "HABILITACION"
	}
}
