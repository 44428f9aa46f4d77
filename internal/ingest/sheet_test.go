package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/controltower/internal/ingest/ingesttest"
)

type testRecord struct {
	Name     string
	Count    int
	Start    *time.Time
	customer string
}

func (r testRecord) Customer() string { return r.customer }

var testNow = time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

func testSpec() SheetSpec {
	return SheetSpec{
		Entity:       "items",
		Sheet:        "Items",
		Required:     true,
		EmptyMessage: "Excel has no data rows",
		Fields: []Field{
			{Name: "name", Aliases: []string{"name"}, Contains: []string{"name"}},
			{Name: "count", Aliases: []string{"count"}, Contains: []string{"count"}},
			{Name: "start", Aliases: []string{"start date"}, Contains: []string{"start"}},
			CustomerField(),
		},
		Map: func(r Row) (Record, bool) {
			if r.Text("name") == "" {
				return nil, false
			}
			today := Today(r.Now)
			return testRecord{
				Name:     r.Text("name"),
				Count:    r.Int("count"),
				Start:    r.Date("start", &today),
				customer: r.Text("customerName"),
			}, true
		},
	}
}

func openTest(t *testing.T, data []byte) *Workbook {
	t.Helper()
	wb, err := OpenWorkbook(data)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestReadSheet_MapsRows(t *testing.T) {
	wb := openTest(t, ingesttest.Workbook(t, ingesttest.Sheet{
		Name: "Items",
		Rows: [][]any{
			{"Name", "Count", "Start Date", "Customer Name"},
			{"alpha", 2.6, 45000, "Acme"},
			{nil, nil, nil, nil},
			{"beta", "n/a", "", " Acme "},
			{"", 4, 45010, "Acme"},
		},
	}))

	res, err := ReadSheet(wb, testSpec(), testNow)
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, "Items", res.Sheet)
	assert.Equal(t, 4, res.RowsRead)
	assert.Empty(t, res.Missing)
	require.Len(t, res.Records, 2)

	first := res.Records[0].(testRecord)
	assert.Equal(t, "alpha", first.Name)
	assert.Equal(t, 3, first.Count)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), *first.Start)
	assert.Equal(t, "Acme", first.Customer())

	second := res.Records[1].(testRecord)
	assert.Equal(t, 0, second.Count)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *second.Start)
	assert.Equal(t, "Acme", second.Customer())
}

func TestReadSheet_RaggedRows(t *testing.T) {
	wb := openTest(t, ingesttest.Workbook(t, ingesttest.Sheet{
		Name: "Items",
		Rows: [][]any{
			{"Name", "Count", "Start Date", "Customer Name"},
			{"short"},
		},
	}))

	res, err := ReadSheet(wb, testSpec(), testNow)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	rec := res.Records[0].(testRecord)
	assert.Equal(t, "short", rec.Name)
	assert.Equal(t, "", rec.Customer())
}

func TestReadSheet_MissingColumns(t *testing.T) {
	wb := openTest(t, ingesttest.Workbook(t, ingesttest.Sheet{
		Name: "Items",
		Rows: [][]any{
			{"Name"},
			{"alpha"},
		},
	}))

	res, err := ReadSheet(wb, testSpec(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "start"}, res.Missing)
	require.Len(t, res.Records, 1)
}

func TestReadSheet_AmbiguityTaggedWithSheet(t *testing.T) {
	wb := openTest(t, ingesttest.Workbook(t, ingesttest.Sheet{
		Name: "Items",
		Rows: [][]any{
			{"Name", "Item Count", "Box Count"},
			{"alpha", 1, 2},
		},
	}))

	res, err := ReadSheet(wb, testSpec(), testNow)
	require.NoError(t, err)
	require.Len(t, res.Ambiguities, 1)
	assert.Equal(t, "Items", res.Ambiguities[0].Sheet)
	assert.Equal(t, "count", res.Ambiguities[0].Field)
	assert.Equal(t, "item count", res.Ambiguities[0].Chosen)
	assert.Equal(t, 1, res.Records[0].(testRecord).Count)
}

func TestReadSheet_RequiredSheetErrors(t *testing.T) {
	tests := []struct {
		name   string
		sheets []ingesttest.Sheet
	}{
		{"header only", []ingesttest.Sheet{{Name: "Items", Rows: [][]any{{"Name"}}}}},
		{"empty sheet", []ingesttest.Sheet{{Name: "Items"}}},
		{"sheet missing", []ingesttest.Sheet{{Name: "Other", Rows: [][]any{{"Name"}, {"x"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := openTest(t, ingesttest.Workbook(t, tt.sheets...))
			_, err := ReadSheet(wb, testSpec(), testNow)
			require.Error(t, err)
			assert.True(t, IsRejection(err))
			assert.Equal(t, "Excel has no data rows", err.Error())
		})
	}
}

func TestReadSheet_OptionalSheetMissing(t *testing.T) {
	wb := openTest(t, ingesttest.Workbook(t, ingesttest.Sheet{Name: "Other", Rows: [][]any{{"Name"}, {"x"}}}))

	spec := testSpec()
	spec.Required = false
	res, err := ReadSheet(wb, spec, testNow)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Records)
}

func TestReadSheet_FallbackToFirst(t *testing.T) {
	wb := openTest(t, ingesttest.Workbook(t,
		ingesttest.Sheet{Name: "Export", Rows: [][]any{{"Name"}, {"alpha"}}},
		ingesttest.Sheet{Name: "Notes", Rows: [][]any{{"Name"}, {"ignored"}}},
	))

	spec := testSpec()
	spec.FallbackToFirst = true
	res, err := ReadSheet(wb, spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Export", res.Sheet)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "alpha", res.Records[0].(testRecord).Name)
}

func TestReadSheet_CompactHeadersExactMode(t *testing.T) {
	wb := openTest(t, ingesttest.Single(t,
		[]any{"Job ID", "Candidate Name"},
		[]any{"J-1", "Ann"},
	))

	spec := SheetSpec{
		Entity: "candidates",
		Header: CompactHeader,
		Mode:   MatchExact,
		Fields: []Field{
			{Name: "jobId", Aliases: []string{"jobid"}},
			{Name: "candidateName", Aliases: []string{"candidatename"}},
			{Name: "candidate", Aliases: []string{"candidate"}, Contains: []string{"candidate"}, Optional: true},
		},
		Map: func(r Row) (Record, bool) {
			return testRecord{Name: r.Text("jobId") + "-" + r.Text("candidateName") + r.Text("candidate")}, true
		},
	}

	res, err := ReadSheet(wb, spec, testNow)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "J-1-Ann", res.Records[0].(testRecord).Name)
}

func TestOpenWorkbook_RejectsGarbage(t *testing.T) {
	_, err := OpenWorkbook([]byte("not a workbook"))
	require.Error(t, err)
	assert.True(t, IsRejection(err))
}

func TestWorkbook_SheetNames(t *testing.T) {
	wb := openTest(t, ingesttest.Workbook(t,
		ingesttest.Sheet{Name: "A"},
		ingesttest.Sheet{Name: "B"},
	))
	assert.Equal(t, []string{"A", "B"}, wb.SheetNames())
	assert.Equal(t, "A", wb.FirstSheet())
	assert.True(t, wb.HasSheet("B"))
	assert.False(t, wb.HasSheet("b"))
}
