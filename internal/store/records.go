package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/controltower/internal/core"
)

func selectColumns(e *core.Entity) string {
	return "id, " + strings.Join(e.Columns, ", ")
}

// ListRecords returns the entity's rows ordered by id, limited to one
// customer when customer is set.
func (s *Store) ListRecords(ctx context.Context, e *core.Entity, customer string) ([]core.Record, error) {
	query := "SELECT " + selectColumns(e) + " FROM " + e.Table
	var args []any
	if customer != "" {
		query += " WHERE customer_name = ?"
		args = append(args, customer)
	}
	query += " ORDER BY id"

	rs, err := s.b.query(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", e.Key, err)
	}
	defer rs.Close()

	out := []core.Record{}
	for rs.Next() {
		rec := e.New()
		if err := rs.Scan(rec.Targets()...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", e.Key, err)
		}
		out = append(out, rec)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", e.Key, err)
	}
	return out, nil
}

// GetRecord loads one row by id.
func (s *Store) GetRecord(ctx context.Context, e *core.Entity, id int64) (core.Record, error) {
	rec := e.New()
	err := s.b.queryRow(ctx, s.q("SELECT "+selectColumns(e)+" FROM "+e.Table+" WHERE id = ?"), id).
		Scan(rec.Targets()...)
	if isNoRows(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", e.Key, err)
	}
	return rec, nil
}

// CreateRecord inserts rec and sets its id.
func (s *Store) CreateRecord(ctx context.Context, e *core.Entity, rec core.Record) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		e.Table, strings.Join(e.Columns, ", "), placeholders(len(e.Columns)))

	var id int64
	if err := s.b.queryRow(ctx, s.q(query), rec.Values()...).Scan(&id); err != nil {
		return fmt.Errorf("create %s: %w", e.Key, err)
	}
	rec.SetRecordID(id)
	return nil
}

// UpdateRecord overwrites every column of the row with rec's id.
func (s *Store) UpdateRecord(ctx context.Context, e *core.Entity, rec core.Record) error {
	sets := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		sets[i] = c + " = ?"
	}
	query := "UPDATE " + e.Table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	args := append(rec.Values(), rec.RecordID())
	n, err := s.b.exec(ctx, s.q(query), args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", e.Key, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteRecord removes one row by id.
func (s *Store) DeleteRecord(ctx context.Context, e *core.Entity, id int64) error {
	n, err := s.b.exec(ctx, s.q("DELETE FROM "+e.Table+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", e.Key, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
