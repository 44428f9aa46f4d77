package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/controltower/internal/auth"
	"github.com/JonMunkholm/controltower/internal/core"
	_ "github.com/JonMunkholm/controltower/internal/core/trackers"
	"github.com/JonMunkholm/controltower/internal/store"
	"github.com/JonMunkholm/controltower/internal/store/storetest"
)

var testNow = time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)

var cheapParams = auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func newService(t *testing.T, cfg core.ServiceConfig, opts ...core.Option) (*core.Service, *store.Store) {
	t.Helper()
	st := storetest.New(t)

	// Each reading advances a second so history rows order deterministically.
	var mu sync.Mutex
	tick := testNow
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}

	opts = append([]core.Option{
		core.WithClock(clock),
		core.WithPasswordParams(cheapParams),
	}, opts...)
	return core.NewService(st, cfg, opts...), st
}

func strPtr(s string) *string { return &s }

func list[T core.Record](t *testing.T, st *store.Store, e *core.Entity, customer string) []T {
	t.Helper()
	recs, err := st.ListRecords(context.Background(), e, customer)
	require.NoError(t, err)
	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.(T)
	}
	return out
}

// memArchiver keeps archived workbooks in memory.
type memArchiver struct {
	mu   sync.Mutex
	keys []string
}

func (a *memArchiver) Put(_ context.Context, key string, _ []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return "mem://" + key, nil
}
