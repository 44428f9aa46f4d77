package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/controltower/internal/core"
)

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, sess core.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	_, err := s.b.exec(ctx, s.q("INSERT INTO sessions (token_hash, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)"),
		sess.TokenHash, sess.UserID, sess.ExpiresAt.UTC(), sess.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SessionUser returns the owner of an unexpired session.
func (s *Store) SessionUser(ctx context.Context, tokenHash string, now time.Time) (*core.User, error) {
	query := "SELECT " + prefixed("u.", userColumns) +
		" FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.token_hash = ? AND s.expires_at > ?"

	u, err := scanUser(s.b.queryRow(ctx, s.q(query), tokenHash, now.UTC()))
	if isNoRows(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session user: %w", err)
	}
	return u, nil
}

// DeleteSession removes a session. Deleting an unknown session is not an
// error.
func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := s.b.exec(ctx, s.q("DELETE FROM sessions WHERE token_hash = ?"), tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired at or before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.b.exec(ctx, s.q("DELETE FROM sessions WHERE expires_at <= ?"), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

// prefixed qualifies every column of a comma separated list.
func prefixed(prefix, columns string) string {
	cols := strings.Split(columns, ", ")
	for i, c := range cols {
		cols[i] = prefix + c
	}
	return strings.Join(cols, ", ")
}
