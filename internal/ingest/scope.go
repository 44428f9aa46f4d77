package ingest

import "strings"

// Scope is the customer filter applied by a replace.
type Scope struct {
	// Customer limits deletes to rows of one customer. Empty when All is set.
	Customer string `json:"customer,omitempty"`

	// All deletes every row of the affected entities.
	All bool `json:"all"`

	// Inferred is set when Customer came from the file rather than the caller.
	Inferred bool `json:"inferred,omitempty"`
}

// ReplaceAll is the unfiltered scope.
var ReplaceAll = Scope{All: true}

// String renders the scope for logs and history.
func (s Scope) String() string {
	if s.All || s.Customer == "" {
		return "all"
	}
	return "customer:" + s.Customer
}

// DistinctCustomers returns the trimmed, non-empty customer names in order of
// first appearance.
func DistinctCustomers(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ResolveScope decides the replace scope from the customer names found in an
// upload and the caller's active customer view (empty when none).
//
// With an active view the file must contain exactly that one customer, or the
// upload is rejected with a *ScopeError. Without one, a single customer in the
// file is inferred as the scope and anything else replaces all rows.
func ResolveScope(found []string, active string) (Scope, error) {
	customers := DistinctCustomers(found)
	active = strings.TrimSpace(active)

	if active != "" {
		if len(customers) != 1 || customers[0] != active {
			return Scope{}, &ScopeError{Active: active, Found: customers}
		}
		return Scope{Customer: active}, nil
	}

	if len(customers) == 1 {
		return Scope{Customer: customers[0], Inferred: true}, nil
	}
	return ReplaceAll, nil
}
