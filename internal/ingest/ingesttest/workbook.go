// Package ingesttest builds in-memory workbooks for tests.
package ingesttest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one named sheet of test rows. Numeric values are written as
// numeric cells, so date columns can be given as serial numbers.
type Sheet struct {
	Name string
	Rows [][]any
}

// Workbook writes the sheets, in order, to an .xlsx byte slice.
func Workbook(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sh.Name))
		} else {
			_, err := f.NewSheet(sh.Name)
			require.NoError(t, err)
		}
		for r, row := range sh.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sh.Name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// Single is Workbook with one sheet named "Sheet1".
func Single(t testing.TB, rows ...[]any) []byte {
	t.Helper()
	return Workbook(t, Sheet{Name: "Sheet1", Rows: rows})
}
