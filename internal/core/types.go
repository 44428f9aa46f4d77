package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/controltower/internal/ingest"
)

// Role is a portal user's role.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleCustomer Role = "CUSTOMER"
)

// Status is the approval state of a user account.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// User is a portal account. Secrets never leave the service as JSON.
type User struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	Status         Status     `json:"status"`
	Phone          *string    `json:"phone"`
	Country        *string    `json:"country"`
	Place          *string    `json:"place"`
	CustomerName   *string    `json:"customerName"`
	PasswordHash   *string    `json:"-"`
	ResetToken     *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HasPassword reports whether the user has set a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Session is a login session. Only the hash of the bearer token is stored.
type Session struct {
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID       int64
	Name         string
	Email        string
	Role         Role
	CustomerName string
}

// IsAdmin reports whether the caller may manage users.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsCustomer reports whether the caller is pinned to a single customer.
func (p Principal) IsCustomer() bool { return p.Role == RoleCustomer }

// View is the customer context a request operates in.
type View struct {
	// Customer is the active customer, or "" for all customers.
	Customer string

	// Restricted views belong to CUSTOMER users. They cannot see or write
	// rows of other customers and cannot trigger unscoped replaces.
	Restricted bool
}

// Batch is the set of records replacing one entity's rows.
type Batch struct {
	Entity  *Entity
	Records []Record

	// Unscoped batches always delete every row, whatever the scope.
	Unscoped bool
}

// EntityCount reports what a replace did to one entity.
type EntityCount struct {
	Entity   string `json:"entity"`
	Deleted  int64  `json:"deleted"`
	Inserted int64  `json:"inserted"`
}

// Outcome of an ingestion run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// IngestRun is one recorded replace attempt.
type IngestRun struct {
	ID        uuid.UUID `json:"id"`
	Tracker   string    `json:"tracker"`
	FileName  string    `json:"fileName"`
	Scope     string    `json:"scope"`
	Outcome   Outcome   `json:"outcome"`
	Deleted   int64     `json:"deleted"`
	Inserted  int64     `json:"inserted"`
	Message   string    `json:"message"`
	UserEmail string    `json:"userEmail"`
	Customer  string    `json:"customerName"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
}

// RunFilter selects ingestion runs.
type RunFilter struct {
	Customer string // exact customer, "" for all
	Limit    int
}

// ReplaceRequest is one workbook upload.
type ReplaceRequest struct {
	Tracker  string
	FileName string
	Data     []byte
	View     View
	Actor    string // email of the uploader, "" when anonymous
}

// ReplaceResult summarizes a completed replace.
type ReplaceResult struct {
	Tracker  *Tracker
	Scope    ingest.Scope
	Counts   []EntityCount
	RowsRead int
	Warnings []ingest.Ambiguity
	Missing  map[string][]string
	RunID    uuid.UUID
}

// Deleted returns the total rows deleted across entities.
func (r ReplaceResult) Deleted() int64 {
	var n int64
	for _, c := range r.Counts {
		n += c.Deleted
	}
	return n
}

// Inserted returns the total rows inserted across entities.
func (r ReplaceResult) Inserted() int64 {
	var n int64
	for _, c := range r.Counts {
		n += c.Inserted
	}
	return n
}

// CountFor returns the counts for one entity key.
func (r ReplaceResult) CountFor(entity string) EntityCount {
	for _, c := range r.Counts {
		if c.Entity == entity {
			return c
		}
	}
	return EntityCount{Entity: entity}
}
