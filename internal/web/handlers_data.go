package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/controltower/internal/core"
)

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  core.MapError(err).Message,
		})
		return
	}
	writeJSON(w, map[string]any{
		"status":  "ok",
		"uploads": s.service.Limiter().Status(),
	})
}

// handleHistory lists recent ingestion runs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	view, err := viewFor(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 {
			badRequest(w, r, "limit must be a positive integer")
			return
		}
	}

	runs, err := s.service.History(r.Context(), view, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, runs)
}

// handleRun returns one ingestion run.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		badRequest(w, r, "Invalid run id")
		return
	}
	view, err := viewFor(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	run, err := s.service.Run(r.Context(), view, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, run)
}

// handleTATracker returns the five TA lists.
func (s *Server) handleTATracker(w http.ResponseWriter, r *http.Request) {
	view, err := viewFor(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	data, err := s.service.TATracker(r.Context(), view)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, data)
}

// handleTADashboard returns the TA summary.
func (s *Server) handleTADashboard(w http.ResponseWriter, r *http.Request) {
	view, err := viewFor(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	dash, err := s.service.TADashboard(r.Context(), view)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, dash)
}
