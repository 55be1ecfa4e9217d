package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/velora/storefront/pkg/observability"
)

// TokenPair is a freshly issued access/refresh token couple
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of a successful register or login
type Session struct {
	User *Principal
	TokenPair
}

// RegisterInput carries the fields accepted at registration. The plaintext
// password lives only for the duration of the call and is never logged.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service orchestrates the account flows against the user store. It holds no
// per-request state; all methods are safe for concurrent use.
type Service struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenService
	log    *observability.Logger
}

// NewService creates the auth service
func NewService(users UserStore, hasher *PasswordHasher, tokens *TokenService, log *observability.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

// Register creates an account and issues an initial token pair. New accounts
// default to the customer role and active status.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, upstream("find user by email", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         RoleCustomer,
	})
	if err != nil {
		// The store may race us to the unique constraint; surface that as a
		// duplicate, not an upstream failure.
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, upstream("create user", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return &Session{User: user.Principal(), TokenPair: pair}, nil
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password fail identically so responses cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, upstream("find user by email", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != StatusActive {
		return nil, ErrInactiveAccount
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, upstream("update last login", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user logged in")
	return &Session{User: user.Principal(), TokenPair: pair}, nil
}

// Profile resolves the current account by id
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, upstream("find user by id", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Refresh exchanges a valid refresh token for a new access/refresh pair. The
// user must still exist; a token for a deleted account is invalid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, upstream("find user by id", err)
	}
	if user == nil {
		return nil, ErrTokenInvalid
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// UpdateStatus changes an account's lifecycle status. The change takes
// effect on the target's very next request because authentication re-resolves
// the user each time.
func (s *Service) UpdateStatus(ctx context.Context, userID string, status Status) (*User, error) {
	user, err := s.users.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, upstream("update user status", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	s.log.WithField("user_id", userID).WithField("status", string(status)).Info("user status updated")
	return user, nil
}

func (s *Service) issuePair(user *User) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
