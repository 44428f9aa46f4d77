package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/ingest"
)

// Replace deletes the scoped rows of every batch's entity and inserts the
// new records in a single transaction. Any failure rolls the whole
// replace back, so the previous data stays untouched.
func (s *Store) Replace(ctx context.Context, scope ingest.Scope, batches []core.Batch) ([]core.EntityCount, error) {
	counts := make([]core.EntityCount, 0, len(batches))

	err := s.inTx(ctx, func(tx txn) error {
		for _, b := range batches {
			e := b.Entity

			var (
				deleted int64
				err     error
			)
			customer := strings.TrimSpace(scope.Customer)
			if b.Unscoped || scope.All || customer == "" {
				deleted, err = tx.exec(ctx, "DELETE FROM "+e.Table)
			} else {
				deleted, err = tx.exec(ctx, s.q("DELETE FROM "+e.Table+" WHERE customer_name = ?"), customer)
			}
			if err != nil {
				return fmt.Errorf("delete %s: %w", e.Key, err)
			}

			values := make([][]any, len(b.Records))
			for i, r := range b.Records {
				values[i] = r.Values()
			}
			inserted, err := tx.bulkInsert(ctx, e.Table, e.Columns, values)
			if err != nil {
				return fmt.Errorf("insert %s: %w", e.Key, err)
			}

			counts = append(counts, core.EntityCount{Entity: e.Key, Deleted: deleted, Inserted: inserted})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
