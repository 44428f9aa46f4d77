package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/controltower/internal/auth"
	"github.com/JonMunkholm/controltower/internal/logging"
)

// SignupInput is a self-service account request.
type SignupInput struct {
	Name         string `json:"name" validate:"max=255"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Phone        string `json:"phone" validate:"max=50"`
	Country      string `json:"country" validate:"max=100"`
	Place        string `json:"place" validate:"max=100"`
	CustomerName string `json:"customerName" validate:"max=255"`
}

// SignupResult is returned for a new account.
type SignupResult struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Status Status `json:"status"`
	Role   Role   `json:"role"`
}

// LoginResult is the signed-in user plus the session token to hand to the
// client.
type LoginResult struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	CustomerName *string   `json:"customerName"`
	Token        string    `json:"-"`
	ExpiresAt    time.Time `json:"-"`
}

// PasswordInput sets a first password or resets one.
type PasswordInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
	OldPassword string `json:"oldPassword"`
	ResetToken  string `json:"resetToken"`
}

// AccountRef is the minimal account view returned after a password is set.
type AccountRef struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ResetInfo tells the reset screen which flow applies to an email.
type ResetInfo struct {
	Exists      bool    `json:"exists"`
	Status      *Status `json:"status,omitempty"`
	HasPassword *bool   `json:"hasPassword,omitempty"`
}

// ResetToken is a freshly issued password reset token.
type ResetToken struct {
	ResetToken string    `json:"resetToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a pending EMPLOYEE or CUSTOMER account.
func (s *Service) Signup(ctx context.Context, role Role, in SignupInput) (*SignupResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.CustomerName = strings.TrimSpace(in.CustomerName)

	switch role {
	case RoleEmployee:
		if in.Name == "" || in.Email == "" {
			return nil, Errorf(KindInvalid, "Name and email are required")
		}
		in.CustomerName = ""
	case RoleCustomer:
		if in.Name == "" || in.Email == "" || in.CustomerName == "" {
			return nil, Errorf(KindInvalid, "Name, email and customer name are required")
		}
	default:
		return nil, Errorf(KindInvalid, "Unsupported role %q", role)
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
		return nil, Errorf(KindInvalid, "User with this email already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := s.now().UTC()
	u := &User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         role,
		Status:       StatusPending,
		Phone:        optional(in.Phone),
		Country:      optional(in.Country),
		Place:        optional(in.Place),
		CustomerName: optional(in.CustomerName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logging.FromContext(ctx).Info("signup received", "user_id", u.ID, "role", role)
	return &SignupResult{ID: u.ID, Email: u.Email, Status: u.Status, Role: u.Role}, nil
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, Errorf(KindInvalid, "Email and password are required")
	}

	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, Errorf(KindInvalid, "Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	switch u.Status {
	case StatusPending:
		return nil, Errorf(KindForbidden, "Your account is pending approval")
	case StatusRejected:
		return nil, Errorf(KindForbidden, "Your account has been rejected")
	}
	if !u.HasPassword() {
		return nil, Errorf(KindInvalid, "Password not set yet")
	}

	ok, err := auth.VerifyPassword(password, *u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, Errorf(KindInvalid, "Invalid credentials")
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := Session{
		TokenHash: auth.HashToken(token),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &LoginResult{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		CustomerName: u.CustomerName,
		Token:        token,
		ExpiresAt:    sess.ExpiresAt,
	}, nil
}

// Authenticate resolves a session token to its principal.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, Errorf(KindUnauthorized, "Authentication required")
	}

	u, err := s.store.SessionUser(ctx, auth.HashToken(token), s.now().UTC())
	if errors.Is(err, ErrNotFound) {
		return Principal{}, Errorf(KindUnauthorized, "Session expired, authentication required")
	}
	if err != nil {
		return Principal{}, fmt.Errorf("load session: %w", err)
	}
	if u.Status != StatusApproved {
		return Principal{}, Errorf(KindUnauthorized, "Account is no longer active, authentication required")
	}

	return Principal{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		CustomerName: deref(u.CustomerName),
	}, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.store.DeleteSession(ctx, auth.HashToken(token))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// User returns one account.
func (s *Service) User(ctx context.Context, id int64) (*User, error) {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

// PendingUsers lists accounts waiting for approval, oldest first.
func (s *Service) PendingUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsersByStatus(ctx, StatusPending)
}

// ApproveUser approves an account, optionally correcting its customer name.
func (s *Service) ApproveUser(ctx context.Context, id int64, customerName string) (*User, error) {
	return s.updateUser(ctx, id, func(u *User) {
		u.Status = StatusApproved
		if c := optional(customerName); c != nil {
			u.CustomerName = c
		}
	})
}

// RejectUser rejects an account.
func (s *Service) RejectUser(ctx context.Context, id int64) (*User, error) {
	return s.updateUser(ctx, id, func(u *User) {
		u.Status = StatusRejected
	})
}

func (s *Service) updateUser(ctx context.Context, id int64, mutate func(*User)) (*User, error) {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	mutate(u)
	u.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, notFound(err, "User")
	}
	logging.FromContext(ctx).Info("user status changed", "user_id", u.ID, "status", u.Status)
	return u, nil
}

// SetPasswordFirst sets the password of an approved account that has none.
// A reset token, when given, must be valid.
func (s *Service) SetPasswordFirst(ctx context.Context, in PasswordInput) (*AccountRef, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, Errorf(KindInvalid, "Email and password are required")
	}

	u, err := s.approvedUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.HasPassword() {
		return nil, Errorf(KindInvalid, "Password already set")
	}
	if in.ResetToken != "" {
		if err := s.checkResetToken(u, in.ResetToken); err != nil {
			return nil, err
		}
	}

	if err := s.setPassword(ctx, u, in.Password); err != nil {
		return nil, err
	}
	return &AccountRef{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// ResetInfo reports whether an account exists and which reset flow applies.
func (s *Service) ResetInfo(ctx context.Context, email string) (*ResetInfo, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, Errorf(KindInvalid, "Email is required")
	}

	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return &ResetInfo{Exists: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	status := u.Status
	has := u.HasPassword()
	return &ResetInfo{Exists: true, Status: &status, HasPassword: &has}, nil
}

// GenerateResetToken issues a one-hour reset token for an approved account.
func (s *Service) GenerateResetToken(ctx context.Context, email string) (*ResetToken, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, Errorf(KindInvalid, "Email is required")
	}

	u, err := s.approvedUser(ctx, email)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return nil, err
	}
	expires := s.now().UTC().Add(DefaultResetTokenTTL)
	u.ResetToken = &token
	u.ResetExpiresAt = &expires
	u.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	return &ResetToken{ResetToken: token, ExpiresAt: expires}, nil
}

// ResetPassword changes a password, proven by the old password or a reset
// token.
func (s *Service) ResetPassword(ctx context.Context, in PasswordInput) error {
	email := NormalizeEmail(in.Email)
	if email == "" || in.NewPassword == "" {
		return Errorf(KindInvalid, "Email and new password are required")
	}

	u, err := s.approvedUser(ctx, email)
	if err != nil {
		return err
	}

	switch {
	case in.OldPassword != "":
		if !u.HasPassword() {
			return Errorf(KindInvalid, "Password not set yet")
		}
		ok, err := auth.VerifyPassword(in.OldPassword, *u.PasswordHash)
		if err != nil {
			return fmt.Errorf("verify password: %w", err)
		}
		if !ok {
			return Errorf(KindInvalid, "Old password is incorrect")
		}
	case in.ResetToken != "":
		if err := s.checkResetToken(u, in.ResetToken); err != nil {
			return err
		}
	default:
		return Errorf(KindInvalid, "Old password or reset token is required")
	}

	return s.setPassword(ctx, u, in.NewPassword)
}

// EnsureAdmin creates an approved ADMIN account when none exists for email.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	u := &User{
		Name:         name,
		Email:        email,
		Role:         RoleAdmin,
		Status:       StatusApproved,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logging.FromContext(ctx).Info("admin account created", "email", email)
	return nil
}

// ViewFor derives the customer view of a request. p is nil when
// authentication is disabled, in which case the requested customer is used
// as given.
func ViewFor(p *Principal, requested string) (View, error) {
	requested = strings.TrimSpace(requested)
	if p == nil || !p.IsCustomer() {
		return View{Customer: requested}, nil
	}

	if p.CustomerName == "" {
		return View{}, Errorf(KindForbidden, "Customer account has no customer assigned, access not allowed")
	}
	if requested != "" && requested != p.CustomerName {
		return View{}, Errorf(KindForbidden, "Viewing other customers is not allowed")
	}
	return View{Customer: p.CustomerName, Restricted: true}, nil
}

func (s *Service) approvedUser(ctx context.Context, email string) (*User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, Errorf(KindNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u.Status != StatusApproved {
		return nil, Errorf(KindInvalid, "User is not approved")
	}
	return u, nil
}

func (s *Service) checkResetToken(u *User, token string) error {
	if u.ResetToken == nil || *u.ResetToken != token {
		return Errorf(KindInvalid, "Invalid reset token")
	}
	if u.ResetExpiresAt != nil && u.ResetExpiresAt.Before(s.now()) {
		return Errorf(KindInvalid, "Reset token has expired")
	}
	return nil
}

func (s *Service) setPassword(ctx context.Context, u *User, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = &hash
	u.ResetToken = nil
	u.ResetExpiresAt = nil
	u.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	return auth.HashPasswordWith(password, s.passwordParams)
}
