package store

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/controltower/internal/core"
)

const userColumns = "id, name, email, role, status, phone, country, place, customer_name, " +
	"password_hash, reset_token, reset_token_expires, created_at, updated_at"

func scanUser(r row) (*core.User, error) {
	var (
		u            core.User
		role, status string
	)
	err := r.Scan(&u.ID, &u.Name, &u.Email, &role, &status, &u.Phone, &u.Country, &u.Place,
		&u.CustomerName, &u.PasswordHash, &u.ResetToken, &u.ResetExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = core.Role(role)
	u.Status = core.Status(status)
	return &u, nil
}

// CreateUser inserts u and sets its id.
func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	err := s.b.queryRow(ctx, s.q(`INSERT INTO users
		(name, email, role, status, phone, country, place, customer_name,
		 password_hash, reset_token, reset_token_expires, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		u.Name, u.Email, string(u.Role), string(u.Status), u.Phone, u.Country, u.Place, u.CustomerName,
		u.PasswordHash, u.ResetToken, utcPtr(u.ResetExpiresAt), u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByEmail looks a user up by exact email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	u, err := scanUser(s.b.queryRow(ctx, s.q("SELECT "+userColumns+" FROM users WHERE email = ?"), email))
	if isNoRows(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

// UserByID looks a user up by id.
func (s *Store) UserByID(ctx context.Context, id int64) (*core.User, error) {
	u, err := scanUser(s.b.queryRow(ctx, s.q("SELECT "+userColumns+" FROM users WHERE id = ?"), id))
	if isNoRows(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

// UpdateUser writes every mutable field of u.
func (s *Store) UpdateUser(ctx context.Context, u *core.User) error {
	n, err := s.b.exec(ctx, s.q(`UPDATE users SET
		name = ?, role = ?, status = ?, phone = ?, country = ?, place = ?, customer_name = ?,
		password_hash = ?, reset_token = ?, reset_token_expires = ?, updated_at = ?
		WHERE id = ?`),
		u.Name, string(u.Role), string(u.Status), u.Phone, u.Country, u.Place, u.CustomerName,
		u.PasswordHash, u.ResetToken, utcPtr(u.ResetExpiresAt), u.UpdatedAt.UTC(), u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListUsersByStatus returns users with the given status, oldest first.
func (s *Store) ListUsersByStatus(ctx context.Context, status core.Status) ([]core.User, error) {
	rs, err := s.b.query(ctx, s.q("SELECT "+userColumns+" FROM users WHERE status = ? ORDER BY created_at, id"),
		string(status))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rs.Close()

	out := []core.User{}
	for rs.Next() {
		u, err := scanUser(rs)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rs.Err()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
