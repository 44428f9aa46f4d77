package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/ingest"
)

// maxMemory is how much of a multipart form is kept in memory before
// spilling to temp files.
const maxMemory = 8 << 20

// replaceResponse is the body of a successful replace. Deleted and Inserted
// are totals, or per-entity maps for trackers with nested counts.
type replaceResponse struct {
	Message  string             `json:"message"`
	Deleted  any                `json:"deleted"`
	Inserted any                `json:"inserted"`
	RowsRead *int               `json:"rowsRead,omitempty"`
	Scope    string             `json:"scope"`
	RunID    string             `json:"runId"`
	Warnings []ingest.Ambiguity `json:"warnings,omitempty"`
}

// handleReplace uploads a workbook and replaces the tracker's rows. The
// workbook arrives in the multipart field "file".
func (s *Server) handleReplace(tracker string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

		data, name, err := readUpload(r)
		if err != nil {
			respondUploadError(w, r, err)
			return
		}

		view, err := viewFor(r)
		if err != nil {
			respondUploadError(w, r, err)
			return
		}

		ctx := WithRequestMetadata(r.Context(), r)
		res, err := s.service.Replace(ctx, core.ReplaceRequest{
			Tracker:  tracker,
			FileName: name,
			Data:     data,
			View:     view,
			Actor:    actor(r),
		})
		if err != nil {
			respondUploadError(w, r, err)
			return
		}

		writeJSON(w, toReplaceResponse(res))
	}
}

// readUpload returns the uploaded file's bytes and name. A request without
// a file yields no data, which the service rejects as "No file uploaded".
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, io.EOF) {
			return nil, "", nil
		}
		return nil, "", ingest.Invalid("Invalid upload form: %v", err)
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", ingest.Invalid("Invalid upload form: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func toReplaceResponse(res *core.ReplaceResult) replaceResponse {
	resp := replaceResponse{
		Message:  res.Tracker.Message,
		Deleted:  res.Deleted(),
		Inserted: res.Inserted(),
		Scope:    res.Scope.String(),
		RunID:    res.RunID.String(),
		Warnings: res.Warnings,
	}
	if res.Tracker.NestedCounts {
		deleted := make(map[string]int64, len(res.Tracker.Sheets))
		inserted := make(map[string]int64, len(res.Tracker.Sheets))
		for _, sh := range res.Tracker.Sheets {
			c := res.CountFor(sh.Entity.Key)
			deleted[sh.Entity.Key] = c.Deleted
			inserted[sh.Entity.Key] = c.Inserted
		}
		resp.Deleted = deleted
		resp.Inserted = inserted
	}
	if res.Tracker.ReportRowsRead {
		n := res.RowsRead
		resp.RowsRead = &n
	}
	return resp
}
