package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/controltower/internal/core"
)

const runColumns = "id, tracker, file_name, scope, outcome, deleted, inserted, message, " +
	"user_email, customer_name, ip_address, created_at"

func scanRun(r row) (*core.IngestRun, error) {
	var (
		run         core.IngestRun
		id, outcome string
	)
	err := r.Scan(&id, &run.Tracker, &run.FileName, &run.Scope, &outcome, &run.Deleted, &run.Inserted,
		&run.Message, &run.UserEmail, &run.Customer, &run.IPAddress, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("run id %q: %w", id, err)
	}
	run.Outcome = core.Outcome(outcome)
	return &run, nil
}

// InsertRun records one ingestion attempt.
func (s *Store) InsertRun(ctx context.Context, run core.IngestRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := s.b.exec(ctx, s.q("INSERT INTO ingest_runs ("+runColumns+") VALUES ("+placeholders(12)+")"),
		run.ID.String(), run.Tracker, run.FileName, run.Scope, string(run.Outcome), run.Deleted, run.Inserted,
		run.Message, run.UserEmail, run.Customer, run.IPAddress, run.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, f core.RunFilter) ([]core.IngestRun, error) {
	query := "SELECT " + runColumns + " FROM ingest_runs"
	var args []any
	if f.Customer != "" {
		query += " WHERE customer_name = ?"
		args = append(args, f.Customer)
	}
	query += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rs, err := s.b.query(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rs.Close()

	out := []core.IngestRun{}
	for rs.Next() {
		run, err := scanRun(rs)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *run)
	}
	return out, rs.Err()
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*core.IngestRun, error) {
	run, err := scanRun(s.b.queryRow(ctx, s.q("SELECT "+runColumns+" FROM ingest_runs WHERE id = ?"), id.String()))
	if isNoRows(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// DeleteRunsBefore prunes runs created before the cutoff.
func (s *Store) DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.b.exec(ctx, s.q("DELETE FROM ingest_runs WHERE created_at < ?"), before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return n, nil
}
