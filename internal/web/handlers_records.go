package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/controltower/internal/core"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

func (s *Server) handleListRecords(e *core.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := viewFor(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		recs, err := s.service.ListRecords(r.Context(), e, view)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, recs)
	}
}

func (s *Server) handleCreateRecord(e *core.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := viewFor(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		rec := e.New()
		if err := decodeRecord(w, r, rec); err != nil {
			respondError(w, r, err)
			return
		}
		created, err := s.service.CreateRecord(r.Context(), e, rec, view)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, created)
	}
}

func (s *Server) handleUpdateRecord(e *core.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		view, err := viewFor(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		rec := e.New()
		if err := decodeRecord(w, r, rec); err != nil {
			respondError(w, r, err)
			return
		}
		updated, err := s.service.UpdateRecord(r.Context(), e, id, rec, view)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, updated)
	}
}

func (s *Server) handleDeleteRecord(e *core.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		view, err := viewFor(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if err := s.service.DeleteRecord(r.Context(), e, id, view); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// parseID reads the {id} URL parameter and responds 400 when it is not a
// positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		badRequest(w, r, "Invalid id")
		return 0, false
	}
	return id, true
}
