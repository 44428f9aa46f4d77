package ingest

import "strings"

// MatchMode selects how fields are bound to header columns.
type MatchMode int

const (
	// MatchSubstring tries exact aliases first and falls back to the first
	// header containing one of the field's substrings.
	MatchSubstring MatchMode = iota

	// MatchExact only accepts headers equal to one of the field's aliases.
	MatchExact
)

// Field describes one semantic field and the headers that may carry it.
type Field struct {
	Name     string   // record field, e.g. "startDate"
	Aliases  []string // normalized headers accepted verbatim, in priority order
	Contains []string // substrings tried when no alias matches (MatchSubstring only)
	Optional bool     // absence is expected and not worth a warning

	// Unordered gives every alias the same priority so the left-most
	// matching header wins regardless of which spelling it uses.
	Unordered bool
}

// Ambiguity records a field that more than one header could satisfy.
type Ambiguity struct {
	Sheet   string   `json:"sheet,omitempty"`
	Field   string   `json:"field"`
	Headers []string `json:"headers"`
	Chosen  string   `json:"chosen"`
}

// Columns maps field names to zero-based column indexes.
type Columns map[string]int

// Index returns the column bound to field, or -1.
func (c Columns) Index(field string) int {
	if i, ok := c[field]; ok {
		return i
	}
	return -1
}

// IndexOf returns the first header containing sub, or -1.
func IndexOf(headers []string, sub string) int {
	if sub == "" {
		return -1
	}
	for i, h := range headers {
		if strings.Contains(h, sub) {
			return i
		}
	}
	return -1
}

// ExactIndex returns the first header equal to key, or -1.
func ExactIndex(headers []string, key string) int {
	for i, h := range headers {
		if h == key {
			return i
		}
	}
	return -1
}

// Resolve binds every field to a column of the already normalized headers.
//
// Exact aliases are tried in order and the first alias with a match wins.
// In MatchSubstring mode a field with no alias match falls back to its
// substrings. When several headers tie at the winning step the left-most one
// is used and an Ambiguity is reported. Unmatched fields resolve to -1.
func Resolve(headers []string, fields []Field, mode MatchMode) (Columns, []Ambiguity) {
	cols := make(Columns, len(fields))
	var ambiguous []Ambiguity

	for _, f := range fields {
		var hits []int
		if f.Unordered {
			hits = matchAny(headers, f.Aliases)
		} else {
			hits = matchAliases(headers, f.Aliases)
		}
		if len(hits) == 0 && mode == MatchSubstring {
			if f.Unordered {
				hits = matchAnyContains(headers, f.Contains)
			} else {
				hits = matchSubstrings(headers, f.Contains)
			}
		}

		if len(hits) == 0 {
			cols[f.Name] = -1
			continue
		}

		cols[f.Name] = hits[0]
		if len(hits) > 1 {
			names := make([]string, len(hits))
			for i, idx := range hits {
				names[i] = headers[idx]
			}
			ambiguous = append(ambiguous, Ambiguity{
				Field:   f.Name,
				Headers: names,
				Chosen:  headers[hits[0]],
			})
		}
	}

	return cols, ambiguous
}

func matchAliases(headers, aliases []string) []int {
	for _, alias := range aliases {
		var hits []int
		for i, h := range headers {
			if h != "" && h == alias {
				hits = append(hits, i)
			}
		}
		if len(hits) > 0 {
			return hits
		}
	}
	return nil
}

func matchAny(headers, aliases []string) []int {
	var hits []int
	for i, h := range headers {
		if h == "" {
			continue
		}
		for _, alias := range aliases {
			if h == alias {
				hits = append(hits, i)
				break
			}
		}
	}
	return hits
}

func matchSubstrings(headers, subs []string) []int {
	for _, sub := range subs {
		if sub == "" {
			continue
		}
		var hits []int
		for i, h := range headers {
			if strings.Contains(h, sub) {
				hits = append(hits, i)
			}
		}
		if len(hits) > 0 {
			return hits
		}
	}
	return nil
}

func matchAnyContains(headers, subs []string) []int {
	var hits []int
	for i, h := range headers {
		for _, sub := range subs {
			if sub != "" && strings.Contains(h, sub) {
				hits = append(hits, i)
				break
			}
		}
	}
	return hits
}

// CustomerField is the customer column shared by every tracker sheet.
// Both the spaced and unspaced spellings are accepted.
func CustomerField() Field {
	return Field{
		Name:      "customerName",
		Aliases:   []string{"customer name", "customername"},
		Contains:  []string{"customername", "customer name"},
		Optional:  true,
		Unordered: true,
	}
}
