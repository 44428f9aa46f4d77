package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/controltower/internal/archive"
	"github.com/JonMunkholm/controltower/internal/config"
	"github.com/JonMunkholm/controltower/internal/core"
	_ "github.com/JonMunkholm/controltower/internal/core/trackers" // Register all trackers
	"github.com/JonMunkholm/controltower/internal/store"
	"github.com/JonMunkholm/controltower/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// newService builds the service with its archiver and metrics.
func newService(ctx context.Context, cfg *config.Config, st *store.Store, reg prometheus.Registerer) (*core.Service, error) {
	arch, err := archive.New(ctx, cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	opts := []core.Option{core.WithArchiver(arch)}
	if reg != nil {
		opts = append(opts, core.WithMetrics(core.NewMetrics(reg)))
	}

	return core.NewService(st, core.ServiceConfig{
		MaxConcurrentUploads: cfg.Upload.MaxConcurrent,
		UploadWait:           cfg.Upload.MaxWaitTime,
		UploadTimeout:        cfg.Upload.Timeout,
		SessionTTL:           cfg.Security.SessionTTL,
	}, opts...), nil
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"auth_required", cfg.Security.AuthRequired,
		"archive_driver", cfg.Archive.Driver,
	)

	st, err := openStore(ctx, cfg, cfg.Database.AutoMigrate)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service, err := newService(ctx, cfg, st, reg)
	if err != nil {
		return err
	}
	if err := service.EnsureAdmin(ctx, "Administrator", cfg.Security.AdminEmail, cfg.Security.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	trackers := core.Trackers()
	keys := make([]string, 0, len(trackers))
	for _, t := range trackers {
		keys = append(keys, t.Key)
	}
	slog.Info("trackers registered", "count", len(trackers), "keys", keys)

	server := web.NewServer(service, cfg,
		web.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background jobs stop with the signal context.
	go service.StartMaintenance(ctx, core.MaintenanceConfig{
		HistoryRetentionDays: cfg.History.RetentionDays,
		CheckInterval:        cfg.History.CheckInterval,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}
