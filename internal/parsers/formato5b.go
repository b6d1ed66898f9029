package parsers

import (
	"fmt"
	"sort"
	"strings"
)

// Formato 5.B: monthly execution follow-up per operational activity. The
// header is compound: a month row with merged cells over a
// programado/ejecutado/saldo sub-header row.

const formato5bDataStart = 11

var formato5bSubcols = []string{"programado", "ejecutado", "saldo"}

// ParseFormato5B parses a Formato 5.B workbook.
func ParseFormato5B(data []byte) *ParseResult {
	res := newResult(Formato5B)

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

	rowA, rowB := findCompoundHeader(rows)
	headers := buildCompoundHeaders(rows, rowA, rowB)

	triples := monthTriples(headers)
	if len(triples) == 0 {
		res.errorf("Formato5B: no se detectaron columnas mensuales programado/ejecutado/saldo. Columnas: %v", headers)
		return res
	}

	colCodigoAO := matchColumn(headers, "codigo ao", "código ao", "codigo ceplan", "ceplan")
	colNombreAO := matchColumn(headers, "nombre ao", "nombre", "actividad")
	if colCodigoAO < 0 {
		colCodigoAO = 0
	}

	months := make([]int, 0, len(triples))
	for m := range triples {
		months = append(months, m)
	}
	sort.Ints(months)

	validRows, skippedRows := 0, 0
	for i := rowB + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if isHeaderRow(row, "codigo ao", "código ao", "programado") {
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
		nombreAO := cleanStr(cellAt(rows, i, colNombreAO))

		for _, m := range months {
			cols := triples[m]
			programado, ejecutado := 0.0, 0.0
			if c, ok := cols["programado"]; ok {
				programado = toFloat(cellAt(rows, i, c), 0)
				if programado < 0 {
					programado = 0
				}
			}
			if c, ok := cols["ejecutado"]; ok {
				ejecutado = toFloat(cellAt(rows, i, c), 0)
				if ejecutado < 0 {
					ejecutado = 0
				}
			}
			if ejecutado > programado+0.01 {
				res.warnf("Fila %d mes %d: ejecutado (%.2f) > programado (%.2f)", i+1, m, ejecutado, programado)
			}
			computedSaldo := programado - ejecutado
			if saldoCol, ok := cols["saldo"]; ok {
				declared := toFloat(cellAt(rows, i, saldoCol), 0)
				if cleanStr(cellAt(rows, i, saldoCol)) != "" && abs(declared-computedSaldo) > 1.0 {
					res.warnf("Fila %d mes %d: saldo declarado (%.2f) ≠ programado - ejecutado (%.2f)", i+1, m, declared, computedSaldo)
				}
			}

			res.Records = append(res.Records, MensualRecord{
				CodigoAO:   codigoAO,
				NombreAO:   nombreAO,
				Anio:       anio,
				UECodigo:   ueCodigo,
				MetaCodigo: metaCodigo,
				Mes:        m,
				Programado: programado,
				Ejecutado:  ejecutado,
				Saldo:      computedSaldo,
			})
		}
		validRows++
	}

	// A well-formed 5.B carries complete quarters
	for q := 1; q <= 4; q++ {
		n := 0
		for _, m := range months {
			if (m-1)/3+1 == q {
				n++
			}
		}
		if n < 3 {
			res.warnf("Formato5B: trimestre %d tiene solo %d de 3 meses detectados.", q, n)
		}
	}

	res.Metadata["valid_rows"] = validRows
	res.Metadata["skipped_rows"] = skippedRows
	res.Metadata["anio"] = anio
	res.Metadata["ue_codigo"] = ueCodigo
	res.Metadata["meta_codigo"] = metaCodigo
	res.Metadata["months_detected"] = months
	return res
}

// findCompoundHeader locates the consecutive (month row, sub-header row)
// pair, falling back to the usual layout rows 8 and 9.
func findCompoundHeader(rows [][]string) (int, int) {
	limit := formato5bDataStart + 2
	if limit > len(rows)-1 {
		limit = len(rows) - 1
	}
	for i := 0; i < limit; i++ {
		if rowHasSubcol(rows[i+1]) && rowHasMonthLabel(rows[i]) {
			return i, i + 1
		}
	}
	return 8, 9
}

func rowHasSubcol(row []string) bool {
	for _, c := range row {
		cl := strings.ToLower(strings.TrimSpace(c))
		for _, sub := range formato5bSubcols {
			if strings.Contains(cl, sub) {
				return true
			}
		}
	}
	return false
}

func rowHasMonthLabel(row []string) bool {
	for _, c := range row {
		if isMonthLabel(strings.ToLower(strings.TrimSpace(c))) {
			return true
		}
	}
	return false
}

func isMonthLabel(s string) bool {
	if s == "" {
		return false
	}
	for m := 0; m < 12; m++ {
		if strings.HasPrefix(s, monthAbbrevs[m]) || s == monthNames[m] {
			return true
		}
	}
	return false
}

// buildCompoundHeaders merges the month row and the sub-header row into one
// flat header list: "ene_programado", "ene_ejecutado", ...
func buildCompoundHeaders(rows [][]string, rowA, rowB int) []string {
	width := 0
	if rowA < len(rows) && len(rows[rowA]) > width {
		width = len(rows[rowA])
	}
	if rowB < len(rows) && len(rows[rowB]) > width {
		width = len(rows[rowB])
	}

	headers := make([]string, width)
	group := ""
	for j := 0; j < width; j++ {
		a := strings.ToLower(cleanStr(cellAt(rows, rowA, j)))
		b := strings.ToLower(cleanStr(cellAt(rows, rowB, j)))
		if a != "" {
			group = a
		}
		switch {
		case b != "" && group != "" && isSubcol(b):
			headers[j] = group + "_" + b
		case b != "":
			headers[j] = b
		case group != "":
			headers[j] = group
		default:
			headers[j] = fmt.Sprintf("col_%d", j)
		}
	}
	return headers
}

func isSubcol(s string) bool {
	for _, sub := range formato5bSubcols {
		if strings.HasPrefix(s, sub) {
			return true
		}
	}
	return false
}

// monthTriples groups compound headers into per-month column sets:
// {mes: {"programado": col, "ejecutado": col, "saldo": col}}.
func monthTriples(headers []string) map[int]map[string]int {
	triples := make(map[int]map[string]int)
	for idx, h := range headers {
		parts := strings.SplitN(h, "_", 2)
		if len(parts) != 2 {
			continue
		}
		prefix, suffix := parts[0], parts[1]
		mes := 0
		for m := 0; m < 12; m++ {
			if strings.HasPrefix(prefix, monthAbbrevs[m]) || prefix == monthNames[m] {
				mes = m + 1
				break
			}
		}
		if mes == 0 {
			continue
		}
		for _, sub := range formato5bSubcols {
			if strings.HasPrefix(suffix, sub) {
				if triples[mes] == nil {
					triples[mes] = make(map[string]int)
				}
				if _, ok := triples[mes][sub]; !ok {
					triples[mes][sub] = idx
				}
				break
			}
		}
	}
	return triples
}
