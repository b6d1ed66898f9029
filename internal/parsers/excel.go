package parsers

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// monthAbbrevs and monthNames drive month-column detection. Spanish, no accents.
var monthAbbrevs = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}
var monthNames = [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// clasificadorRe validates dotted classifier codes like "2.3.1.5.1.2".
var clasificadorRe = regexp.MustCompile(`^\d+(\.\d+){1,5}$`)

var leadingUECodigoRe = regexp.MustCompile(`^\d{3}`)

// openWorkbook opens an xlsx workbook from raw bytes.
func openWorkbook(data []byte) (*excelize.File, error) {
	return excelize.OpenReader(bytes.NewReader(data))
}

// sheetRows loads every row of a sheet as raw cell strings.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

// cellAt returns the trimmed cell at (row, col), or "" when out of bounds.
func cellAt(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	r := rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// cleanStr trims a raw cell and collapses pandas-style NaN markers to "".
func cleanStr(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

// toFloat coerces a raw cell to a float amount. Currency prefixes, thousand
// separators and dash placeholders are tolerated; anything unparseable
// yields def.
func toFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" {
		return def
	}
	s = strings.TrimLeft(s, "S/.$ ")
	s = strings.NewReplacer(",", "", " ", "", "\t", "").Replace(s)
	if s == "" || s == "-" || s == "—" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// toInt coerces a raw cell to an int, going through float to accept "2026.0".
func toInt(s string, def int) int {
	f := toFloat(s, float64(def))
	return int(f)
}

// normalizeClasificador strips every whitespace character from a classifier code.
func normalizeClasificador(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isValidClasificador reports whether code looks like a dotted classifier code.
func isValidClasificador(code string) bool {
	return clasificadorRe.MatchString(code)
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, c := range row {
		if cleanStr(c) != "" {
			return false
		}
	}
	return true
}

// isHeaderRow reports whether any cell contains any of the keywords
// (case-insensitive). Used to skip repeated header rows inside the data area.
func isHeaderRow(row []string, keywords ...string) bool {
	for _, c := range row {
		cl := strings.ToLower(strings.TrimSpace(c))
		if cl == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(cl, kw) {
				return true
			}
		}
	}
	return false
}

// matchColumn locates a header column by alias. Exact matches across all
// aliases win over substring matches.
func matchColumn(headers []string, aliases ...string) int {
	for _, alias := range aliases {
		for i, h := range headers {
			if strings.ToLower(strings.TrimSpace(h)) == alias {
				return i
			}
		}
	}
	for _, alias := range aliases {
		for i, h := range headers {
			if strings.Contains(strings.ToLower(h), alias) {
				return i
			}
		}
	}
	return -1
}

// findMonthColumns maps month numbers (1..12) to header column indexes by
// prefix-matching Spanish month names and abbreviations.
func findMonthColumns(headers []string) map[int]int {
	monthCols := make(map[int]int)
	for idx, h := range headers {
		hl := strings.ToLower(strings.TrimSpace(h))
		if hl == "" {
			continue
		}
		for m := 0; m < 12; m++ {
			if strings.HasPrefix(hl, monthAbbrevs[m]) || strings.HasPrefix(hl, monthNames[m]) {
				if _, ok := monthCols[m+1]; !ok {
					monthCols[m+1] = idx
				}
				break
			}
		}
	}
	return monthCols
}

// scanForValue looks for a label in the first searchRows rows and returns the
// cell colOffset positions to its right.
func scanForValue(rows [][]string, label string, searchRows, colOffset int) string {
	label = strings.ToLower(label)
	limit := len(rows)
	if searchRows < limit {
		limit = searchRows
	}
	for i := 0; i < limit; i++ {
		for j, c := range rows[i] {
			if strings.Contains(strings.ToLower(c), label) {
				if v := cellAt(rows, i, j+colOffset); v != "" {
					return cleanStr(v)
				}
			}
		}
	}
	return ""
}

// extractContext reads fixed-position context cells (0-based row/col).
func extractContext(rows [][]string, positions map[string][2]int) map[string]string {
	out := make(map[string]string, len(positions))
	for field, pos := range positions {
		out[field] = cleanStr(cellAt(rows, pos[0], pos[1]))
	}
	return out
}

// forwardFillMerged propagates the last non-empty value down the leftmost
// width columns. Merged header cells in exports surface as blanks on
// continuation rows.
func forwardFillMerged(rows [][]string, width int) [][]string {
	filled := make([][]string, len(rows))
	last := make([]string, width)
	for i, row := range rows {
		cp := make([]string, len(row))
		copy(cp, row)
		for c := 0; c < width && c < len(cp); c++ {
			if cleanStr(cp[c]) == "" {
				cp[c] = last[c]
			} else {
				last[c] = cp[c]
			}
		}
		filled[i] = cp
	}
	return filled
}

// findHeaderRow returns the index of the first row within limit whose cells
// contain any keyword, or -1.
func findHeaderRow(rows [][]string, limit int, keywords ...string) int {
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if isHeaderRow(rows[i], keywords...) {
			return i
		}
	}
	return -1
}

// normalizeFecha tries the date layouts seen in the exports and returns
// YYYY-MM-DD, or the input unchanged when nothing matches.
func normalizeFecha(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"02/01/2006", "02-01-2006", "2006-01-02", "02/01/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// ueCodigoFromNombre extracts the unit code from a "001 - INEI ..." header
// cell: the part before " - ", or a leading 3-digit run.
func ueCodigoFromNombre(nombre string) string {
	if strings.Contains(nombre, " - ") {
		return strings.TrimSpace(strings.SplitN(nombre, " - ", 2)[0])
	}
	if m := leadingUECodigoRe.FindString(strings.TrimSpace(nombre)); m != "" {
		return m
	}
	return ""
}
