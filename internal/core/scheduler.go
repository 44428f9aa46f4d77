package core

// scheduler.go runs periodic maintenance in the background:
//  1. Delete expired login sessions
//  2. Prune ingestion history past its retention window
//
// The scheduler is long-running and stops when its context is cancelled.
// A failing job is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// MaintenanceConfig holds configuration for the maintenance scheduler.
type MaintenanceConfig struct {
	HistoryRetentionDays int           // Days to keep ingestion runs (default: 180)
	CheckInterval        time.Duration // How often to run (default: 1h)
}

func (c MaintenanceConfig) withDefaults() MaintenanceConfig {
	if c.HistoryRetentionDays <= 0 {
		c.HistoryRetentionDays = 180
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	return c
}

// StartMaintenance runs the maintenance job immediately and then every
// CheckInterval until ctx is cancelled.
func (s *Service) StartMaintenance(ctx context.Context, cfg MaintenanceConfig) {
	cfg = cfg.withDefaults()
	slog.Info("maintenance scheduler started",
		"history_retention_days", cfg.HistoryRetentionDays,
		"interval", cfg.CheckInterval,
	)

	s.RunMaintenance(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("maintenance scheduler stopped")
			return
		case <-ticker.C:
			s.RunMaintenance(ctx, cfg)
		}
	}
}

// RunMaintenance performs one maintenance cycle.
func (s *Service) RunMaintenance(ctx context.Context, cfg MaintenanceConfig) {
	cfg = cfg.withDefaults()
	start := time.Now()

	sessions, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		slog.Error("session cleanup failed", "error", err)
	} else if sessions > 0 {
		slog.Info("deleted expired sessions", "sessions_deleted", sessions)
	}

	retention := time.Duration(cfg.HistoryRetentionDays) * 24 * time.Hour
	runs, err := s.PruneHistory(ctx, retention)
	if err != nil {
		slog.Error("history prune failed", "error", err)
	} else if runs > 0 {
		slog.Info("pruned ingestion history", "runs_deleted", runs)
	}

	slog.Debug("maintenance job completed", "duration_ms", time.Since(start).Milliseconds())
}
