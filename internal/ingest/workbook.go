package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook is an opened spreadsheet held fully in memory.
type Workbook struct {
	file   *excelize.File
	sheets []string
}

// OpenWorkbook parses workbook bytes. The returned Workbook must be closed.
func OpenWorkbook(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, Invalid("Uploaded file is not a readable Excel workbook")
	}
	return &Workbook{file: f, sheets: f.GetSheetList()}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// HasSheet reports whether a sheet with the exact name exists.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.sheets {
		if s == name {
			return true
		}
	}
	return false
}

// FirstSheet returns the name of the first sheet, or "" for an empty workbook.
func (w *Workbook) FirstSheet() string {
	if len(w.sheets) == 0 {
		return ""
	}
	return w.sheets[0]
}

// Rows returns every row of a sheet as raw cell strings. Raw values keep
// date cells as serial numbers instead of formatted text.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
