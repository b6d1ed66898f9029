package parsers

import "regexp"

// Anexo 01: staff roster with DNI, position and monthly remuneration.

const anexo01DataStart = 7

var dniRe = regexp.MustCompile(`^\d{8}$`)

// ParseAnexo01 parses an Anexo 01 workbook.
func ParseAnexo01(data []byte) *ParseResult {
	res := newResult(FormatoAnexo01)

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
		"ue_nombre": {2, 1},
		"ue_codigo": {2, 3},
		"anio":      {3, 3},
	})
	ueNombre := ctx["ue_nombre"]
	ueCodigo := ctx["ue_codigo"]
	if ueCodigo == "" {
		ueCodigo = ueCodigoFromNombre(ueNombre)
	}
	anio := toInt(ctx["anio"], 0)
	if anio == 0 {
		anio = toInt(scanForValue(rows, "año", 15, 1), 0)
	}

	headerRow := findHeaderRow(rows, 10, "dni", "apellidos")
	if headerRow < 0 {
		headerRow = anexo01DataStart - 1
	}
	headers := []string{}
	if headerRow < len(rows) {
		headers = rows[headerRow]
	}

	colNumero := matchColumn(headers, "n°", "nro", "numero", "número")
	colDNI := matchColumn(headers, "dni")
	colNombre := matchColumn(headers, "apellidos y nombres", "apellidos", "nombres", "nombre")
	colCargo := matchColumn(headers, "cargo")
	colArea := matchColumn(headers, "area", "área")
	colRegimen := matchColumn(headers, "regimen laboral", "régimen laboral", "regimen")
	colTipoContrato := matchColumn(headers, "tipo contrato", "tipo de contrato", "contrato")
	colFechaInicio := matchColumn(headers, "fecha inicio", "inicio")
	colFechaFin := matchColumn(headers, "fecha fin", "fin")
	colRemuneracion := matchColumn(headers, "remuneracion", "remuneración")
	colObservaciones := matchColumn(headers, "observaciones", "observacion", "observación")
	colEstado := matchColumn(headers, "estado")

	if colDNI < 0 {
		res.errorf("Anexo01: columna 'dni' no encontrada. Columnas detectadas: %v", headers)
		return res
	}

	validRows, skippedRows := 0, 0
	for i := headerRow + 1; i < len(rows); i++ {
		if i < anexo01DataStart {
			continue
		}
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "dni", "apellidos") {
			continue
		}

		dni := cleanStr(cellAt(rows, i, colDNI))
		if !dniRe.MatchString(dni) {
			if dni != "" {
				res.warnf("Fila %d: DNI inválido ('%s') — fila omitida.", i+1, dni)
			}
			skippedRows++
			continue
		}

		res.Records = append(res.Records, PersonalRecord{
			Anio:           anio,
			UECodigo:       ueCodigo,
			UENombre:       ueNombre,
			Numero:         toInt(cellAt(rows, i, colNumero), 0),
			DNI:            dni,
			NombreCompleto: cleanStr(cellAt(rows, i, colNombre)),
			Cargo:          cleanStr(cellAt(rows, i, colCargo)),
			Area:           cleanStr(cellAt(rows, i, colArea)),
			RegimenLaboral: cleanStr(cellAt(rows, i, colRegimen)),
			TipoContrato:   cleanStr(cellAt(rows, i, colTipoContrato)),
			FechaInicio:    normalizeFecha(cellAt(rows, i, colFechaInicio)),
			FechaFin:       normalizeFecha(cellAt(rows, i, colFechaFin)),
			Remuneracion:   toFloat(cellAt(rows, i, colRemuneracion), 0),
			Observaciones:  cleanStr(cellAt(rows, i, colObservaciones)),
			Estado:         cleanStr(cellAt(rows, i, colEstado)),
		})
		validRows++
	}

	res.Metadata["valid_rows"] = validRows
	res.Metadata["skipped_rows"] = skippedRows
	res.Metadata["anio"] = anio
	res.Metadata["ue_codigo"] = ueCodigo
	return res
}
