package trackers

import (
	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/ingest"
)

func init() {
	registerProgram()
}

// programSheet reads the first sheet of a program delivery workbook. Every
// field falls back to a default, so any non-blank row produces a task.
var programSheet = ingest.SheetSpec{
	Required:     true,
	EmptyMessage: "Excel has no data rows",
	Mode:         ingest.MatchSubstring,
	Fields: []ingest.Field{
		{Name: "workstream", Aliases: []string{"workstream"}, Contains: []string{"workstream"}},
		{Name: "deliverable", Aliases: []string{"deliverable"}, Contains: []string{"deliverable"}},
		{Name: "status", Aliases: []string{"status"}, Contains: []string{"status"}},
		{Name: "duration", Aliases: []string{"duration", "duration (days)"}, Contains: []string{"duration"}},
		{Name: "startDate", Aliases: []string{"start date", "start"}, Contains: []string{"start"}},
		{Name: "endDate", Aliases: []string{"end date", "end"}, Contains: []string{"end"}},
		{Name: "progress", Aliases: []string{"progress", "progress %", "% progress"}, Contains: []string{"progress"}},
		{Name: "phase", Aliases: []string{"phase"}, Contains: []string{"phase"}},
		{Name: "milestone", Aliases: []string{"milestone"}, Contains: []string{"milestone"}},
		{Name: "owner", Aliases: []string{"owner"}, Contains: []string{"owner"}},
		ingest.CustomerField(),
	},
	Map: mapProgramTask,
}

func mapProgramTask(r ingest.Row) (ingest.Record, bool) {
	today := ingest.Today(r.Now)
	start := ingest.CoerceDateOr(r.Raw("startDate"), today)
	end := ingest.CoerceDateOr(r.Raw("endDate"), start)

	return &core.ProgramTask{
		Workstream:   r.TextOr("workstream", "General"),
		Deliverable:  r.TextOr("deliverable", "TBD"),
		Status:       r.TextOr("status", "WIP"),
		Duration:     r.Int("duration"),
		StartDate:    &start,
		EndDate:      &end,
		Progress:     r.Number("progress"),
		Phase:        r.Text("phase"),
		Milestone:    r.Text("milestone"),
		Owner:        r.Text("owner"),
		CustomerName: r.Optional("customerName"),
	}, true
}

func registerProgram() {
	core.RegisterTracker(core.Tracker{
		Key:     "program",
		Label:   "Program Tracker",
		Message: "Program tracker replaced",
		Scoped:  false,
		Sheets:  []core.TrackerSheet{{Entity: core.ProgramTasks, Spec: programSheet}},
	})
}
