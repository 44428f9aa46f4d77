package web

import (
	"net/http"

	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/web/views"
)

// dashboardRuns is how many ingestion runs the dashboard lists.
const dashboardRuns = 20

var uploadActions = map[string]string{
	"program": "/excel/replace",
	"infra":   "/excel/infra-replace",
	"ta":      "/excel/ta-replace",
}

// handleDashboard renders the upload forms and recent ingestion runs.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := viewFor(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	runs, err := s.service.History(r.Context(), view, dashboardRuns)
	if err != nil {
		respondError(w, r, err)
		return
	}

	data := views.DashboardData{
		User:     actor(r),
		Customer: view.Customer,
		Runs:     runs,
	}
	for _, t := range core.Trackers() {
		// Restricted views cannot replace unscoped trackers.
		if view.Restricted && !t.Scoped {
			continue
		}
		if action, ok := uploadActions[t.Key]; ok {
			data.Forms = append(data.Forms, views.UploadForm{Label: t.Label, Action: action})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Dashboard(data).Render(r.Context(), w); err != nil {
		respondError(w, r, err)
	}
}
