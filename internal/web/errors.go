package web

// errors.go turns service errors into HTTP responses.
//
// The status comes from core.KindOf. Errors of a known kind carry a message
// written for the caller, which is returned verbatim. Internal errors are
// logged in full and replaced by the core.MapError message. Every response
// carries the MapError code and action so the portal can show guidance.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Action string `json:"action,omitempty"`
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindInvalid:
		return http.StatusBadRequest
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status its kind calls for.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorWith(w, r, err, false)
}

// respondUploadError is respondError for the replace endpoints, which
// return the raw error message even for storage failures.
func respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorWith(w, r, err, true)
}

func respondErrorWith(w http.ResponseWriter, r *http.Request, err error, raw bool) {
	kind := core.KindOf(err)
	status := statusFor(kind)
	msg := core.MapError(err)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
		kind = core.KindInvalid
	}

	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError && kind != core.KindBusy {
		log.Error("request failed", "path", r.URL.Path, "status", status, "error", err, "code", msg.Code)
	} else {
		log.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err, "code", msg.Code)
	}

	resp := ErrorResponse{Error: err.Error(), Code: msg.Code, Action: msg.Action}
	if kind == core.KindInternal && !raw {
		resp.Error = msg.Message
	}
	if kind == core.KindBusy {
		w.Header().Set("Retry-After", "5")
	}
	writeJSONStatus(w, status, resp)
}

// badRequest responds 400 with msg.
func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	respondError(w, r, core.Errorf(core.KindInvalid, "%s", msg))
}

// writeJSON encodes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON with the given status. Encoding errors
// are only logged since the header is already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
