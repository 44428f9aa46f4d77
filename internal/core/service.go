package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/controltower/internal/auth"
)

// Default timeouts used when ServiceConfig leaves them unset.
const (
	DefaultUploadTimeout = 2 * time.Minute
	DefaultSessionTTL    = 12 * time.Hour
	DefaultResetTokenTTL = time.Hour
)

// ServiceConfig tunes the service. Zero values select the defaults.
type ServiceConfig struct {
	MaxConcurrentUploads int
	UploadWait           time.Duration
	UploadTimeout        time.Duration
	SessionTTL           time.Duration
}

// Archiver stores a copy of every uploaded workbook.
type Archiver interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// ArchiveKey is the object key of an archived workbook:
// <tracker>/<yyyy>/<mm>/<id>.xlsx.
func ArchiveKey(tracker string, at time.Time, id uuid.UUID) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s.xlsx", tracker, at.Year(), int(at.Month()), id)
}

// Service provides the business logic of the control tower.
type Service struct {
	store    Store
	limiter  *UploadLimiter
	cfg      ServiceConfig
	archiver Archiver
	metrics  *Metrics
	now      func() time.Time

	passwordParams auth.Params
}

// Option configures a Service.
type Option func(*Service)

// WithArchiver archives uploaded workbooks before they are ingested.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithMetrics records ingestion metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the service clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPasswordParams overrides the argon2id cost of new password hashes.
func WithPasswordParams(p auth.Params) Option {
	return func(s *Service) { s.passwordParams = p }
}

// NewService creates a new Service instance.
func NewService(store Store, cfg ServiceConfig, opts ...Option) *Service {
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	s := &Service{
		store:   store,
		limiter: NewUploadLimiter(cfg.MaxConcurrentUploads, cfg.UploadWait),
		cfg:     cfg,
		now:     time.Now,

		passwordParams: auth.DefaultParams,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter exposes the upload limiter for shutdown draining.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// notFound converts a store ErrNotFound into a user-facing error naming the
// missing thing. Other errors pass through.
func notFound(err error, what string) error {
	if errors.Is(err, ErrNotFound) {
		return Errorf(KindNotFound, "%s not found", what)
	}
	return err
}
