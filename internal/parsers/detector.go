package parsers

import "strings"

// sheetNameRules map sheet-name fragments to format labels. Order matters:
// more specific fragments come first and the first match wins.
var sheetNameRules = []struct {
	fragment string
	format   string
}{
	{"cuadro ao-meta", FormatoCuadroAOMeta},
	{"cuadro ao meta", FormatoCuadroAOMeta},
	{"ao-meta", FormatoCuadroAOMeta},
	{"tablas", FormatoTablas},
	{"formato 1", Formato1},
	{"formato1", Formato1},
	{"formato 2", Formato2},
	{"formato2", Formato2},
	{"formato 3", Formato3},
	{"formato3", Formato3},
	{"formato 04", Formato04},
	{"formato04", Formato04},
	{"formato 4", Formato04},
	{"formato4", Formato04},
	{"formato 5.a", Formato5A},
	{"formato5a", Formato5A},
	{"formato 5a", Formato5A},
	{"f5a", Formato5A},
	{"formato 5.b", Formato5B},
	{"formato5b", Formato5B},
	{"formato 5b", Formato5B},
	{"f5b", Formato5B},
	{"formato 5 resumen", Formato5Resumen},
	{"5 resumen", Formato5Resumen},
	{"resumen 5", Formato5Resumen},
	{"5-resumen", Formato5Resumen},
	{"5resumen", Formato5Resumen},
	{"5_resumen", Formato5Resumen},
	{"anexo 01", FormatoAnexo01},
	{"anexo01", FormatoAnexo01},
	{"anexo_01", FormatoAnexo01},
	{"siaf", FormatoSIAF},
	{"siga", FormatoSIGA},
}

// headerKeywordRules map keyword sets to format labels. A rule matches when
// every keyword appears in the concatenated header text of the first sheet.
// Order matters: specific sets (e.g. the 5 Resumen ones) must precede the
// broader SIAF rule.
var headerKeywordRules = []struct {
	keywords []string
	format   string
}{
	{[]string{"ceplan", "aei", "oei"}, FormatoCuadroAOMeta},
	{[]string{"clasificador", "tipo generico"}, FormatoTablas},
	{[]string{"clasificador", "tipo genérico"}, FormatoTablas},
	{[]string{"pia", "pim", "clasificador"}, Formato1},
	{[]string{"habilitadora", "habilitada", "clasificador"}, Formato04},
	{[]string{"asignado", "habilitadora", "habilitada"}, Formato04},
	{[]string{"programado", "ejecutado", "saldo"}, Formato5B},
	{[]string{"programado", "codigo ao"}, Formato5A},
	{[]string{"programado", "código ao"}, Formato5A},
	{[]string{"codigo ao", "devengado", "semaforo"}, Formato5Resumen},
	{[]string{"codigo ao", "devengado", "semáforo"}, Formato5Resumen},
	{[]string{"codigo ao", "devengado", "% avance pim"}, Formato5Resumen},
	{[]string{"código ao", "devengado", "semaforo"}, Formato5Resumen},
	{[]string{"cod tarea", "clasificador", "pim"}, Formato2},
	{[]string{"tarea", "clasificador", "cod ao"}, Formato2},
	{[]string{"justificacion", "clasificador"}, Formato3},
	{[]string{"justificación", "clasificador"}, Formato3},
	{[]string{"dni", "remuneracion"}, FormatoAnexo01},
	{[]string{"dni", "remuneración"}, FormatoAnexo01},
	{[]string{"anexo", "certificacion"}, FormatoAnexo01},
	{[]string{"anexo", "certificación"}, FormatoAnexo01},
	{[]string{"devengado", "girado", "compromiso"}, FormatoSIAF},
	{[]string{"siga", "requerimiento"}, FormatoSIGA},
}

// columnCountRules are the last-resort ranges of non-empty cells in the
// widest row of the first sheet. Inclusive bounds, first match wins.
var columnCountRules = []struct {
	min, max int
	format   string
}{
	{40, 50, Formato5B},
	{20, 26, Formato5A},
	{20, 26, Formato1},
	{4, 8, Formato04},
}

// DetectFormat inspects a workbook and returns the best-guess format label.
// It never fails: anything unreadable or unrecognizable is DESCONOCIDO.
func DetectFormat(data []byte) string {
	f, err := openWorkbook(data)
	if err != nil {
		return FormatoDesconocido
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return FormatoDesconocido
	}

	// Pass 1: sheet names
	for _, sheet := range sheets {
		name := strings.ToLower(strings.TrimSpace(sheet))
		for _, rule := range sheetNameRules {
			if strings.Contains(name, rule.fragment) {
				return rule.format
			}
		}
	}

	rows, err := sheetRows(f, sheets[0])
	if err != nil {
		return FormatoDesconocido
	}

	// Pass 2: header keywords over the first 15 rows of the first sheet
	if format := detectByHeaderKeywords(rows); format != "" {
		return format
	}

	// Pass 3: column count of the widest row
	if format := detectByColumnCount(rows); format != "" {
		return format
	}

	return FormatoDesconocido
}

func detectByHeaderKeywords(rows [][]string) string {
	limit := len(rows)
	if limit > 15 {
		limit = 15
	}
	var cells []string
	for i := 0; i < limit; i++ {
		for _, c := range rows[i] {
			if v := strings.TrimSpace(c); v != "" {
				cells = append(cells, strings.ToLower(v))
			}
		}
	}
	if len(cells) == 0 {
		return ""
	}
	headerText := strings.Join(cells, " | ")

	for _, rule := range headerKeywordRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(headerText, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.format
		}
	}
	return ""
}

func detectByColumnCount(rows [][]string) string {
	maxCells := 0
	for _, row := range rows {
		n := 0
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				n++
			}
		}
		if n > maxCells {
			maxCells = n
		}
	}
	if maxCells == 0 {
		return ""
	}
	for _, rule := range columnCountRules {
		if maxCells >= rule.min && maxCells <= rule.max {
			return rule.format
		}
	}
	return ""
}
