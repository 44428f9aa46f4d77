package ingest

import (
	"math"
	"strings"
	"time"
)

// Record is one mapped row. The pipeline only needs its customer to decide
// the replace scope.
type Record interface {
	Customer() string
}

// MapFunc turns a row into a record. Returning false skips the row.
type MapFunc func(Row) (Record, bool)

// Row gives a mapper typed, default-aware access to one spreadsheet row.
type Row struct {
	Cells []string
	Cols  Columns
	Now   time.Time
}

// Has reports whether the field was bound to a column.
func (r Row) Has(field string) bool {
	return r.Cols.Index(field) >= 0
}

// Raw returns the untouched cell for field, or "" when the column is missing
// or the row is shorter than the header.
func (r Row) Raw(field string) string {
	i := r.Cols.Index(field)
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Text returns the trimmed cell value.
func (r Row) Text(field string) string {
	return strings.TrimSpace(r.Raw(field))
}

// TextOr returns the trimmed cell value, or def when it is blank.
func (r Row) TextOr(field, def string) string {
	if v := r.Text(field); v != "" {
		return v
	}
	return def
}

// Optional returns the trimmed cell value, or nil when it is blank.
func (r Row) Optional(field string) *string {
	v := r.Text(field)
	if v == "" {
		return nil
	}
	return &v
}

// Number returns the numeric cell value, or 0 when blank or not a number.
func (r Row) Number(field string) float64 {
	return NumberOr(r.Raw(field), 0)
}

// Int is Number rounded to the nearest integer.
func (r Row) Int(field string) int {
	return int(math.Round(r.Number(field)))
}

// Date coerces the cell to a date, using fallback for blank or bad input.
func (r Row) Date(field string, fallback *time.Time) *time.Time {
	return CoerceDate(r.Raw(field), fallback)
}

// IsBlank reports whether every cell is empty after trimming.
func IsBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SheetSpec describes how one sheet of a workbook maps onto one entity.
type SheetSpec struct {
	Entity string // entity key the records belong to
	Sheet  string // sheet name; empty selects the first sheet

	// FallbackToFirst reads the first sheet when Sheet is not present.
	FallbackToFirst bool

	// Required sheets must exist with a header and at least one data row.
	// EmptyMessage is the error returned when they do not.
	Required     bool
	EmptyMessage string

	Header HeaderFunc
	Mode   MatchMode
	Fields []Field
	Map    MapFunc
}

// SheetResult is the outcome of reading one sheet.
type SheetResult struct {
	Entity      string
	Sheet       string
	Found       bool
	RowsRead    int
	Records     []Record
	Missing     []string
	Ambiguities []Ambiguity
}

// ReadSheet locates the sheet for spec, resolves its columns and maps every
// non-blank data row. Cell-level problems never fail the read; only a missing
// or empty required sheet does.
func ReadSheet(wb *Workbook, spec SheetSpec, now time.Time) (SheetResult, error) {
	res := SheetResult{Entity: spec.Entity}

	name := spec.Sheet
	if name == "" || (!wb.HasSheet(name) && spec.FallbackToFirst) {
		name = wb.FirstSheet()
	}
	if name == "" || !wb.HasSheet(name) {
		if spec.Required {
			return res, Invalid("%s", spec.EmptyMessage)
		}
		return res, nil
	}
	res.Sheet = name
	res.Found = true

	rows, err := wb.Rows(name)
	if err != nil {
		return res, err
	}
	if len(rows) < 2 {
		if spec.Required {
			return res, Invalid("%s", spec.EmptyMessage)
		}
		return res, nil
	}

	header := spec.Header
	if header == nil {
		header = NormalizeHeader
	}
	headers := NormalizeRow(rows[0], header)

	cols, ambiguous := Resolve(headers, spec.Fields, spec.Mode)
	for i := range ambiguous {
		ambiguous[i].Sheet = name
	}
	res.Ambiguities = ambiguous

	for _, f := range spec.Fields {
		if !f.Optional && cols.Index(f.Name) < 0 {
			res.Missing = append(res.Missing, f.Name)
		}
	}

	res.RowsRead = len(rows) - 1
	for _, cells := range rows[1:] {
		if IsBlank(cells) {
			continue
		}
		rec, ok := spec.Map(Row{Cells: cells, Cols: cols, Now: now})
		if !ok {
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}
