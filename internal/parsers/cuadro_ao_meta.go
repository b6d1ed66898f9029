package parsers

import "strings"

// CUADRO_AO_META: the master-data workbook. One row per operational
// activity, with the owning unidad ejecutora and meta repeated (or merged)
// on the left-hand hierarchy columns.

// ParseCuadroAOMeta parses a Cuadro AO-Meta workbook. anio scopes the metas
// and actividades it emits; 0 lets the resolver fall back to the default year.
func ParseCuadroAOMeta(data []byte, anio int) *ParseResult {
	res := newResult(FormatoCuadroAOMeta)

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
	sheet := resolveCuadroSheet(sheets)
	rows, err := sheetRows(f, sheet)
	if err != nil {
		res.errorf("No se pudo leer la hoja '%s': %v", sheet, err)
		return res
	}

	headerRow := findHeaderRow(rows, 8, "codigo", "nombre", "ceplan", "meta")
	if headerRow < 0 {
		headerRow = 0
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colCodigoUE := matchColumn(headers, "codigo ue", "cod ue")
	colNombreUE := matchColumn(headers, "nombre ue", "unidad ejecutora")
	colSigla := matchColumn(headers, "sigla")
	colCodigoMeta := matchColumn(headers, "codigo meta", "cod meta", "meta")
	colSecFuncional := matchColumn(headers, "sec funcional", "sec. funcional", "secuencia funcional", "sec func")
	colDescMeta := matchColumn(headers, "descripcion meta", "desc meta", "descripción meta")
	colCodigoCeplan := matchColumn(headers, "codigo ceplan", "código ceplan", "ceplan", "codigo ao", "código ao")
	colNombreAO := matchColumn(headers, "nombre ao", "actividad operativa", "nombre")
	colOEI := matchColumn(headers, "oei")
	colAEI := matchColumn(headers, "aei")

	if colCodigoCeplan < 0 {
		res.errorf("CuadroAOMeta: columna 'codigo_ceplan' no encontrada. Columnas detectadas: %v", headers)
	}
	if colNombreAO < 0 {
		res.errorf("CuadroAOMeta: columna 'nombre_ao' no encontrada. Columnas detectadas: %v", headers)
	}
	if !res.OK() {
		return res
	}

	// Merged hierarchy cells surface as blanks on continuation rows
	hierarchyCols := []int{colCodigoUE, colNombreUE, colSigla, colCodigoMeta, colSecFuncional, colDescMeta}
	forwardFillColumns(rows, headerRow+1, hierarchyCols)

	type metaKey struct{ ue, meta string }
	seenUEs := make(map[string]bool)
	seenMetas := make(map[metaKey]bool)
	seenAOs := make(map[string]bool)
	totalUEs, totalMetas, totalAOs := 0, 0, 0

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "ceplan", "codigo ue") {
			continue
		}

		codigoCeplan := strings.ToUpper(cleanStr(cellAt(rows, i, colCodigoCeplan)))
		if !isValidCeplan(codigoCeplan) {
			if codigoCeplan != "" {
				res.warnf("Fila %d: codigo CEPLAN inválido ('%s') — fila omitida.", i+1, codigoCeplan)
			}
			continue
		}

		ueCodigo := cleanStr(cellAt(rows, i, colCodigoUE))
		ueNombre := cleanStr(cellAt(rows, i, colNombreUE))
		metaCodigo := cleanStr(cellAt(rows, i, colCodigoMeta))

		if ueCodigo != "" && !seenUEs[ueCodigo] {
			seenUEs[ueCodigo] = true
			res.Records = append(res.Records, UnidadRecord{
				Codigo: ueCodigo,
				Nombre: ueNombre,
				Sigla:  cleanStr(cellAt(rows, i, colSigla)),
				Tipo:   inferUETipo(ueNombre),
				Activo: true,
			})
			totalUEs++
		}

		if metaCodigo != "" {
			key := metaKey{ueCodigo, metaCodigo}
			if !seenMetas[key] {
				seenMetas[key] = true
				res.Records = append(res.Records, MetaRecord{
					Codigo:       metaCodigo,
					Descripcion:  cleanStr(cellAt(rows, i, colDescMeta)),
					SecFuncional: cleanStr(cellAt(rows, i, colSecFuncional)),
					UECodigo:     ueCodigo,
					Anio:         anio,
					Activo:       true,
				})
				totalMetas++
			}
		}

		if !seenAOs[codigoCeplan] {
			seenAOs[codigoCeplan] = true
			res.Records = append(res.Records, ActividadRecord{
				CodigoCeplan: codigoCeplan,
				Nombre:       cleanStr(cellAt(rows, i, colNombreAO)),
				OEI:          cleanStr(cellAt(rows, i, colOEI)),
				AEI:          cleanStr(cellAt(rows, i, colAEI)),
				MetaCodigo:   metaCodigo,
				UECodigo:     ueCodigo,
				Anio:         anio,
				Activo:       true,
			})
			totalAOs++
		}
	}

	res.Metadata["anio"] = anio
	res.Metadata["total_ues"] = totalUEs
	res.Metadata["total_metas"] = totalMetas
	res.Metadata["total_aos"] = totalAOs
	return res
}

func resolveCuadroSheet(sheets []string) string {
	for _, s := range sheets {
		sl := strings.ToLower(s)
		if strings.Contains(sl, "ao") && strings.Contains(sl, "meta") {
			return s
		}
	}
	for _, s := range sheets {
		if strings.Contains(strings.ToLower(s), "cuadro") {
			return s
		}
	}
	return sheets[0]
}

// forwardFillColumns propagates last non-empty values down the given columns
// starting at startRow. Mutates rows in place.
func forwardFillColumns(rows [][]string, startRow int, cols []int) {
	last := make(map[int]string)
	for i := startRow; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		for _, c := range cols {
			if c < 0 {
				continue
			}
			for len(rows[i]) <= c {
				rows[i] = append(rows[i], "")
			}
			if cleanStr(rows[i][c]) == "" {
				rows[i][c] = last[c]
			} else {
				last[c] = rows[i][c]
			}
		}
	}
}

// isValidCeplan accepts CEPLAN activity codes: at least six non-space
// characters including a digit.
func isValidCeplan(code string) bool {
	stripped := normalizeClasificador(code)
	if len(stripped) < 6 {
		return false
	}
	return strings.ContainsAny(stripped, "0123456789")
}

// inferUETipo classifies a unit by its name: departmental offices are ODEI,
// the INEI headquarters is CENTRAL.
func inferUETipo(nombre string) string {
	n := strings.ToUpper(nombre)
	if strings.Contains(n, "ODEI") || strings.Contains(n, "OFICINA DEPARTAMENTAL") || strings.Contains(n, "REGIONAL") {
		return "ODEI"
	}
	if strings.Contains(n, "INEI") && !strings.Contains(n, "LIMA") {
		return "CENTRAL"
	}
	return "ODEI"
}
