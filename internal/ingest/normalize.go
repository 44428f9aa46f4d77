// Package ingest turns uploaded Excel workbooks into typed tracker records.
//
// The package is storage-agnostic. It knows how to normalize header cells,
// bind semantic fields to columns, coerce spreadsheet dates, walk sheet rows
// and decide which customer a replace is scoped to. Persisting the result is
// the caller's job.
package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// HeaderFunc normalizes a raw header cell into a lookup key.
type HeaderFunc func(string) string

// NormalizeHeader lowercases a header, collapses whitespace runs to a single
// space and trims the ends. "  Start  Date " becomes "start date".
func NormalizeHeader(v string) string {
	return strings.Join(strings.Fields(fold(v)), " ")
}

// CompactHeader lowercases a header and removes all whitespace.
// "Job ID" becomes "jobid".
func CompactHeader(v string) string {
	return strings.Join(strings.Fields(fold(v)), "")
}

// fold applies NFKC so full-width letters and no-break spaces exported by
// Excel compare equal to their ASCII forms.
func fold(v string) string {
	return strings.ToLower(norm.NFKC.String(v))
}

// NormalizeRow applies fn to every header cell.
func NormalizeRow(headers []string, fn HeaderFunc) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = fn(h)
	}
	return out
}
