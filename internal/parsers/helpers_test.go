package parsers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook builds an in-memory xlsx with one sheet and the given rows.
// Row and column positions are 0-based; nil cells stay empty.
func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		for j, val := range row {
			if val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// recordsOfType filters the records of a parse result by concrete type.
func recordsOfType[T Record](res *ParseResult) []T {
	var out []T
	for _, r := range res.Records {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
