package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial dates count days from 1899-12-30, so serial 25569 is
// the Unix epoch.
const (
	serialUnixEpoch = 25569
	secondsPerDay   = 86400
)

// dateLayouts are tried in order for text date cells.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Mon Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"02-Jan-06",
}

// ParseNumber parses a cell as a finite float.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOr parses a numeric cell, returning def for blank or non-numeric input.
func NumberOr(raw string, def float64) float64 {
	if f, ok := ParseNumber(raw); ok {
		return f
	}
	return def
}

// SerialToTime converts a spreadsheet serial day number to UTC midnight of
// that day. Fractional days (time of day) are discarded.
func SerialToTime(serial float64) time.Time {
	days := int64(math.Floor(serial - serialUnixEpoch))
	return time.Unix(days*secondsPerDay, 0).UTC()
}

// CoerceDate converts a raw cell into a date.
//
// Numeric cells are treated as serial day numbers. Other non-blank cells are
// parsed against the known text layouts. Blank or unparseable input returns
// fallback, which may be nil.
func CoerceDate(raw string, fallback *time.Time) *time.Time {
	if serial, ok := ParseNumber(raw); ok {
		t := SerialToTime(serial)
		return &t
	}

	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return fallback
}

// CoerceDateOr is CoerceDate for call sites whose fallback is always set.
func CoerceDateOr(raw string, fallback time.Time) time.Time {
	return *CoerceDate(raw, &fallback)
}

// Today returns UTC midnight of the day containing t.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
