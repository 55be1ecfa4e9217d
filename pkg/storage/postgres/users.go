package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/velora/storefront/pkg/auth"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches
const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, first_name, last_name, status, role, created_at, last_login_at`

// UserStore implements auth.UserStore on PostgreSQL
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a PostgreSQL-backed user store
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail returns the user with the given email, or nil when absent
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

// FindByID returns the user with the given id, or nil when absent
func (s *UserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// Create inserts a new active user. A unique-constraint violation on the
// email column maps to auth.ErrDuplicateEmail.
func (s *UserStore) Create(ctx context.Context, in auth.NewUser) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, status, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING `+userColumns+`
	`, uuid.NewString(), in.Email, in.PasswordHash, in.FirstName, in.LastName, auth.StatusActive, in.Role)

	user, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, auth.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// UpdateStatus sets the account status, returning nil when the id is unknown
func (s *UserStore) UpdateStatus(ctx context.Context, id string, status auth.Status) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, status)
	return scanUser(row)
}

// UpdateLastLogin records a successful login timestamp
func (s *UserStore) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*auth.User, error) {
	user := &auth.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Status,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
