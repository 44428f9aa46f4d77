package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/controltower/internal/ingest"
)

// TrackerSheet binds one sheet of a tracker workbook to the entity it
// replaces.
type TrackerSheet struct {
	Entity *Entity
	Spec   ingest.SheetSpec
}

// Tracker describes one Excel upload: which sheets it reads and how the
// replace is scoped.
type Tracker struct {
	Key     string // "program", "infra", "ta"
	Label   string // display name
	Message string // success message returned to the uploader

	// Scoped trackers resolve a customer scope from the uploaded rows.
	// Unscoped trackers always replace every row.
	Scoped bool

	Sheets []TrackerSheet

	// NoRowsError rejects an upload that mapped zero records in total.
	// Empty means zero records is a valid (emptying) replace.
	NoRowsError string

	// ReportRowsRead adds the data row count of the first sheet to the
	// response.
	ReportRowsRead bool

	// NestedCounts reports deleted and inserted per entity instead of as
	// totals.
	NestedCounts bool
}

var (
	registry   = make(map[string]Tracker)
	registryMu sync.RWMutex
)

// RegisterTracker adds a tracker to the registry.
// Panics if a tracker with the same key is already registered.
func RegisterTracker(t Tracker) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[t.Key]; exists {
		panic(fmt.Sprintf("tracker already registered: %s", t.Key))
	}
	if len(t.Sheets) == 0 {
		panic(fmt.Sprintf("tracker %s has no sheets", t.Key))
	}
	for i := range t.Sheets {
		if t.Sheets[i].Spec.Entity == "" {
			t.Sheets[i].Spec.Entity = t.Sheets[i].Entity.Key
		}
	}

	registry[t.Key] = t
}

// TrackerByKey returns a tracker by key.
func TrackerByKey(key string) (Tracker, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	t, ok := registry[key]
	return t, ok
}

// Trackers returns all registered trackers sorted by key.
func Trackers() []Tracker {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Tracker, 0, len(registry))
	for _, t := range registry {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// ClearTrackers removes all registered trackers.
// Primarily useful for testing.
func ClearTrackers() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Tracker)
}
