package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/controltower/internal/ingest"
)

// Store is the persistence contract the service runs on. internal/store
// implements it for Postgres and SQLite.
//
// Methods that address a single row return ErrNotFound when it does not
// exist. A customer argument of "" disables customer filtering.
type Store interface {
	// Replace deletes the rows selected by scope and inserts the batches'
	// records, all in one transaction. Unscoped batches delete every row.
	Replace(ctx context.Context, scope ingest.Scope, batches []Batch) ([]EntityCount, error)

	ListRecords(ctx context.Context, e *Entity, customer string) ([]Record, error)
	GetRecord(ctx context.Context, e *Entity, id int64) (Record, error)
	CreateRecord(ctx context.Context, e *Entity, rec Record) error
	UpdateRecord(ctx context.Context, e *Entity, rec Record) error
	DeleteRecord(ctx context.Context, e *Entity, id int64) error

	CreateUser(ctx context.Context, u *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ListUsersByStatus(ctx context.Context, status Status) ([]User, error)

	CreateSession(ctx context.Context, s Session) error
	SessionUser(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	InsertRun(ctx context.Context, run IngestRun) error
	ListRuns(ctx context.Context, f RunFilter) ([]IngestRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*IngestRun, error)
	DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
