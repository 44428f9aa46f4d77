package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/controltower/internal/ingest"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"postgres duplicate key", errors.New("ERROR: duplicate key value violates unique constraint"), "DB001"},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.email"), "DB002"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), "DB003"},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), "DB005"},
		{"validation range", ValidationError{Field: "progress", Message: "must be at most 100"}, "VAL001"},
		{"validation required", ValidationError{Field: "candidateName", Message: "is required"}, "VAL002"},
		{"scope mismatch", &ingest.ScopeError{Active: "Acme", Found: []string{"Globex"}}, "VAL003"},
		{"body too large", errors.New("http: request body too large"), "FILE001"},
		{"not a workbook", ingest.Invalid("Uploaded file is not a readable Excel workbook"), "FILE002"},
		{"no file", errors.New("No file uploaded"), "FILE003"},
		{"no rows", errors.New("Requisition sheet has no data rows"), "FILE004"},
		{"no infra rows", errors.New("No valid Infra rows found in Excel"), "FILE004"},
		{"busy", ErrTooManyUploads, "UPL001"},
		{"wrapped cancel", fmt.Errorf("replace: %w", errors.New("context canceled")), "UPL002"},
		{"bad login", errors.New("Invalid credentials"), "AUTH001"},
		{"pending", errors.New("Your account is pending approval"), "AUTH002"},
		{"rejected", errors.New("Your account has been rejected"), "AUTH003"},
		{"expired token", errors.New("Reset token has expired"), "AUTH004"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_CaseInsensitive(t *testing.T) {
	for _, msg := range []string{"DUPLICATE KEY", "Duplicate Key", "duplicate key"} {
		if got := MapError(errors.New(msg)).Code; got != "DB001" {
			t.Errorf("MapError(%q).Code = %q, want DB001", msg, got)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrTooManyUploads)
	want := "System is busy processing other uploads (Code: UPL001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(errors.New("connection refused")) {
		t.Error("connection refused should be user facing")
	}
	if IsUserFacing(errors.New("random failure")) {
		t.Error("unmatched errors should not be user facing")
	}
}

func TestErrorPatterns_HaveCodes(t *testing.T) {
	for _, ep := range errorPatterns {
		if ep.msg.Code == "" || ep.msg.Message == "" || ep.msg.Action == "" {
			t.Errorf("pattern %q has an incomplete message: %+v", ep.pattern, ep.msg)
		}
	}
}
