// Package store persists control tower data in Postgres or SQLite.
//
// Both engines sit behind a small backend interface so every query is
// written once. Queries use "?" placeholders and are rebound to "$n" for
// Postgres. Bulk inserts use the COPY protocol on Postgres and a prepared
// statement on SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/controltower/internal/config"
	"github.com/JonMunkholm/controltower/internal/core"
)

// Drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// row is a single-row query result.
type row interface {
	Scan(dest ...any) error
}

// rows is a multi-row query result. pgx.Rows satisfies it directly.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// querier runs statements on a pool or inside a transaction.
type querier interface {
	exec(ctx context.Context, q string, args ...any) (int64, error)
	query(ctx context.Context, q string, args ...any) (rows, error)
	queryRow(ctx context.Context, q string, args ...any) row
}

type txn interface {
	querier
	bulkInsert(ctx context.Context, table string, columns []string, values [][]any) (int64, error)
	commit(ctx context.Context) error
	rollback(ctx context.Context) error
}

type backend interface {
	querier
	begin(ctx context.Context) (txn, error)
	sqlDB() *sql.DB
	driver() string
	ping(ctx context.Context) error
	close() error
}

// Store implements core.Store.
type Store struct {
	b backend
}

var _ core.Store = (*Store)(nil)

// Open connects to the database selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres, "":
		return OpenPostgres(ctx, cfg)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Driver reports the backend in use.
func (s *Store) Driver() string {
	return s.b.driver()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.b.ping(ctx)
}

// Close releases all connections.
func (s *Store) Close() error {
	return s.b.close()
}

// q rebinds a "?" query for the backend.
func (s *Store) q(query string) string {
	if s.b.driver() != DriverPostgres {
		return query
	}
	return rebind(query)
}

// rebind converts "?" placeholders to "$1", "$2", ...
func rebind(query string) string {
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx txn) error) error {
	tx, err := s.b.begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.rollback(ctx)
		return err
	}
	if err := tx.commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
