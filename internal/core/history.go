package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/controltower/internal/logging"
)

// Default and maximum page sizes for history listings.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// recordRun stores an ingestion run. History is best effort: a failure is
// logged and never changes the outcome of the upload.
func (s *Service) recordRun(ctx context.Context, run IngestRun) {
	if err := s.store.InsertRun(ctx, run); err != nil {
		logging.FromContext(ctx).Error("failed to record ingestion run",
			"run_id", run.ID,
			"tracker", run.Tracker,
			"error", err,
		)
	}
}

// History lists recent ingestion runs, newest first. Restricted views only
// see their own customer's runs.
func (s *Service) History(ctx context.Context, view View, limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	f := RunFilter{Limit: limit}
	if view.Restricted || view.Customer != "" {
		f.Customer = view.Customer
	}
	return s.store.ListRuns(ctx, f)
}

// Run returns one ingestion run.
func (s *Service) Run(ctx context.Context, view View, id uuid.UUID) (*IngestRun, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, notFound(err, "Ingestion run")
	}
	if view.Restricted && run.Customer != view.Customer {
		return nil, Errorf(KindNotFound, "Ingestion run not found")
	}
	return run, nil
}

// PruneHistory deletes runs older than the retention window.
func (s *Service) PruneHistory(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteRunsBefore(ctx, s.now().Add(-retention))
}
