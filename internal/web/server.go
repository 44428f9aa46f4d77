// Package web provides the HTTP API and dashboard of the control tower.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/controltower/internal/config"
	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/web/middleware"
)

// Server is the HTTP server for the control tower API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h at the configured metrics path.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(middleware.CORS(s.cfg.Server.AllowedOrigins))

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.RateLimit("general", s.cfg.Rate.RequestsPerMinute))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.With(middleware.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys)).
			Handle(s.cfg.Metrics.Path, s.metrics)
	}

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup/employee", s.handleSignup(core.RoleEmployee))
		r.Post("/signup/customer", s.handleSignup(core.RoleCustomer))
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/set-password-first", s.handleSetPasswordFirst)
		r.Post("/reset/info", s.handleResetInfo)
		r.Post("/reset/generate-token", s.handleGenerateResetToken)
		r.Post("/reset/confirm", s.handleResetPassword)

		r.With(middleware.Session(s.service, true)).Get("/me", s.handleMe)

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Session(s.service, true))
			r.Use(middleware.RequireAdmin)
			r.Get("/pending", s.handlePendingUsers)
			r.Post("/{id}/approve", s.handleApproveUser)
			r.Post("/{id}/reject", s.handleRejectUser)
		})
	})

	// Tracker routes. With AUTH_REQUIRED=false anonymous callers pass and
	// pick their customer view with ?customerName=.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Session(s.service, s.cfg.Security.AuthRequired))

		r.Get("/", s.handleDashboard)

		r.Route("/excel", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					r.Use(middleware.RateLimit("upload", s.cfg.Rate.UploadLimit))
				}
				r.Post("/replace", s.handleReplace("program"))
				r.Post("/infra-replace", s.handleReplace("infra"))
				r.Post("/ta-replace", s.handleReplace("ta"))
			})
			r.Get("/history", s.handleHistory)
			r.Get("/history/{runID}", s.handleRun)
		})

		s.mountRecords(r, "/tasks", core.ProgramTasks)
		s.mountRecords(r, "/infra-tasks", core.InfraTasks)

		r.Route("/ta", func(r chi.Router) {
			r.Get("/tracker", s.handleTATracker)
			r.Get("/dashboard", s.handleTADashboard)
			for _, e := range core.TAEntities {
				s.mountRecords(r, "/"+e.Key, e)
			}
		})
	})
}

// mountRecords registers list, create, update and delete for one entity.
func (s *Server) mountRecords(r chi.Router, path string, e *core.Entity) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", s.handleListRecords(e))
		r.Post("/", s.handleCreateRecord(e))
		r.Put("/{id}", s.handleUpdateRecord(e))
		r.Delete("/{id}", s.handleDeleteRecord(e))
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown waits for in-flight replaces to finish and then stops the
// server. Both waits share ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.service.Limiter().WaitForDrain(ctx); err != nil {
		slog.Warn("shutdown: uploads still running", "active", s.service.Limiter().ActiveCount(), "error", err)
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
