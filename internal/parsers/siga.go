package parsers

import "strings"

// SIGA: procurement requirement export from the logistics system.

const sigaDataStart = 3

var sigaHeaderKeywords = []string{"requerimiento", "descripcion", "monto", "cantidad", "estado", "proveedor"}

// ParseSIGA parses a SIGA requirements export.
func ParseSIGA(data []byte) *ParseResult {
	res := newResult(FormatoSIGA)

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

	headerRow := bestSigaHeaderRow(rows)
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colNumero := matchColumn(headers, "numero requerimiento", "nro requerimiento", "requerimiento", "numero", "nro")
	colDescripcion := matchColumn(headers, "descripcion", "descripción")
	colUnidadMedida := matchColumn(headers, "unidad medida", "unidad de medida", "u.m.", "um")
	colCantidad := matchColumn(headers, "cantidad")
	colPrecio := matchColumn(headers, "precio unitario", "precio")
	colMontoTotal := matchColumn(headers, "monto total", "monto")
	colEstado := matchColumn(headers, "estado")
	colProveedor := matchColumn(headers, "proveedor")
	colFecha := matchColumn(headers, "fecha")

	if colDescripcion < 0 && colMontoTotal < 0 {
		res.errorf("SIGA: no se encontraron columnas 'descripcion' ni 'monto_total'. Columnas detectadas: %v", headers)
		return res
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "requerimiento", "descripcion", "proveedor") {
			continue
		}

		descripcion := cleanStr(cellAt(rows, i, colDescripcion))
		if descripcion == "" {
			skippedRows++
			continue
		}

		res.Records = append(res.Records, SigaRecord{
			NumeroRequerimiento: cleanStr(cellAt(rows, i, colNumero)),
			Descripcion:         descripcion,
			UnidadMedida:        cleanStr(cellAt(rows, i, colUnidadMedida)),
			Cantidad:            toFloat(cellAt(rows, i, colCantidad), 0),
			PrecioUnitario:      toFloat(cellAt(rows, i, colPrecio), 0),
			MontoTotal:          toFloat(cellAt(rows, i, colMontoTotal), 0),
			Estado:              cleanStr(cellAt(rows, i, colEstado)),
			Proveedor:           cleanStr(cellAt(rows, i, colProveedor)),
			Fecha:               normalizeFecha(cellAt(rows, i, colFecha)),
		})
		validRows++
	}

	res.Metadata["valid_rows"] = validRows
	res.Metadata["skipped_rows"] = skippedRows
	return res
}

// bestSigaHeaderRow scores the first rows by how many SIGA header keywords
// they contain and returns the best one. SIGA exports move their header
// around between versions.
func bestSigaHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > 8 {
		limit = 8
	}
	best, bestScore := sigaDataStart - 1, 0
	for i := 0; i < limit; i++ {
		score := 0
		for _, c := range rows[i] {
			cl := strings.ToLower(strings.TrimSpace(c))
			if cl == "" {
				continue
			}
			for _, kw := range sigaHeaderKeywords {
				if strings.Contains(cl, kw) {
					score++
					break
				}
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
