package trackers

import (
	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/ingest"
)

func init() {
	registerInfra()
}

var infraSheet = ingest.SheetSpec{
	Required:     true,
	EmptyMessage: "Excel has no data rows",
	Mode:         ingest.MatchSubstring,
	Fields: []ingest.Field{
		{Name: "infraPhase", Aliases: []string{"infra phase"}, Contains: []string{"infra"}},
		{Name: "taskName", Aliases: []string{"task name", "task"}, Contains: []string{"task"}},
		{Name: "status", Aliases: []string{"status"}, Contains: []string{"status"}},
		{Name: "percentComplete", Aliases: []string{"% complete", "percent complete", "complete"}, Contains: []string{"complete"}},
		{Name: "startDate", Aliases: []string{"start date", "start"}, Contains: []string{"start"}},
		{Name: "endDate", Aliases: []string{"end date", "end"}, Contains: []string{"end"}},
		{Name: "owner", Aliases: []string{"owner"}, Contains: []string{"owner"}},
		ingest.CustomerField(),
	},
	Map: mapInfraTask,
}

// mapInfraTask never leaves StartDate empty: a missing start is today and a
// missing end is the start.
func mapInfraTask(r ingest.Row) (ingest.Record, bool) {
	start := ingest.CoerceDateOr(r.Raw("startDate"), ingest.Today(r.Now))
	end := ingest.CoerceDateOr(r.Raw("endDate"), start)

	return &core.InfraTask{
		InfraPhase:      r.TextOr("infraPhase", "General"),
		TaskName:        r.TextOr("taskName", "TBD"),
		Status:          r.TextOr("status", "Planned"),
		PercentComplete: r.Number("percentComplete"),
		StartDate:       start,
		EndDate:         &end,
		Owner:           r.Text("owner"),
		CustomerName:    r.Optional("customerName"),
	}, true
}

func registerInfra() {
	core.RegisterTracker(core.Tracker{
		Key:            "infra",
		Label:          "Infra Setup Tracker",
		Message:        "Infra Excel replaced successfully",
		Scoped:         true,
		Sheets:         []core.TrackerSheet{{Entity: core.InfraTasks, Spec: infraSheet}},
		NoRowsError:    "No valid Infra rows found in Excel",
		ReportRowsRead: true,
	})
}
