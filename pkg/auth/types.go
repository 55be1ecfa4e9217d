package auth

import (
	"context"
	"time"
)

// Role is the closed role vocabulary. There is no hierarchy between roles;
// authorization checks compare against an explicit allow-list.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleCustomer Role = "customer"
)

// ValidRole reports whether r is part of the role vocabulary
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return true
	}
	return false
}

// Status is an account lifecycle state. Only active accounts authenticate.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ValidStatus reports whether s is a known account status
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// User is the account row shape owned by the external user store. The
// password hash is the only persisted form of a password.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Status       Status
	Role         Role
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Principal is the resolved identity attached to an authenticated request.
// It is never persisted and never cached between requests: it is re-resolved
// from the user store on every authenticated request so status changes take
// effect immediately.
type Principal struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	Status    Status `json:"status"`
}

// Principal converts a user row into a request principal
func (u *User) Principal() *Principal {
	return &Principal{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Status:    u.Status,
	}
}

// NewUser carries the fields needed to create an account
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
}

// UserStore is the narrow repository contract this core depends on. A nil
// user with a nil error means "no such user". Implementations must honor
// context cancellation so a timed-out lookup fails closed.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user NewUser) (*User, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
