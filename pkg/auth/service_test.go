package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/velora/storefront/pkg/observability"
)

// fakeUserStore is a map-backed UserStore with per-operation error injection
type fakeUserStore struct {
	users   map[string]*User
	byEmail map[string]string
	nextID  int

	findErr   error
	createErr error
	loginErr  error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	id, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	return s.users[id], nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (*User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (s *fakeUserStore) Create(_ context.Context, in NewUser) (*User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, exists := s.byEmail[in.Email]; exists {
		return nil, ErrDuplicateEmail
	}
	s.nextID++
	user := &User{
		ID:           fmt.Sprintf("user-%d", s.nextID),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Status:       StatusActive,
		Role:         in.Role,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *fakeUserStore) UpdateStatus(_ context.Context, id string, status Status) (*User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	user.Status = status
	return user, nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id string) error {
	if s.loginErr != nil {
		return s.loginErr
	}
	if user, ok := s.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func newTestService(t *testing.T, store UserStore) *Service {
	t.Helper()
	tokens := newTestTokenService(t)
	hasher := NewPasswordHasher(bcrypt.MinCost)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewService(store, hasher, tokens, logger)
}

func TestService_Register(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email:     "New.User@Example.COM",
		Password:  "longenoughpassword",
		FirstName: "New",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if session.User.Email != "new.user@example.com" {
		t.Errorf("email = %q, want normalized lowercase", session.User.Email)
	}
	if session.User.Role != RoleCustomer {
		t.Errorf("role = %q, new accounts must default to customer", session.User.Role)
	}
	if session.User.Status != StatusActive {
		t.Errorf("status = %q, want active", session.User.Status)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Error("Register() must issue both tokens")
	}

	stored := store.users[session.User.ID]
	if stored.PasswordHash == "longenoughpassword" {
		t.Error("password stored in plaintext")
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	in := RegisterInput{Email: "dup@example.com", Password: "password123", FirstName: "A", LastName: "B"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("second Register() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestService_Login(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", FirstName: "A", LastName: "B",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	session, err := svc.Login(context.Background(), "USER@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Error("Login() must issue both tokens")
	}

	stored := store.users[session.User.ID]
	if stored.LastLoginAt == nil {
		t.Error("Login() must record the login timestamp")
	}
}

// Unknown email and wrong password must be indistinguishable to the caller
func TestService_Login_InvalidCredentials(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", FirstName: "A", LastName: "B",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, wrongErr := svc.Login(context.Background(), "user@example.com", "not the password")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Error("unknown email and wrong password must fail identically")
	}
}

func TestService_Login_InactiveAccount(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := store.UpdateStatus(context.Background(), session.User.ID, StatusSuspended); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	_, err = svc.Login(context.Background(), "user@example.com", "password123")
	if !errors.Is(err, ErrInactiveAccount) {
		t.Errorf("Login() error = %v, want ErrInactiveAccount", err)
	}
}

func TestService_Login_StoreFailure(t *testing.T) {
	store := newFakeUserStore()
	store.findErr = errors.New("connection refused")
	svc := newTestService(t, store)

	_, err := svc.Login(context.Background(), "user@example.com", "password123")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Login() error = %v, want ErrUpstream", err)
	}
}

func TestService_Refresh(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	pair, err := svc.Refresh(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	claims, err := svc.tokens.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() on refreshed token error = %v", err)
	}
	if claims.UserID != session.User.ID {
		t.Errorf("refreshed token UserID = %q, want %q", claims.UserID, session.User.ID)
	}
}

func TestService_Refresh_Rejections(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("access token is not a refresh token", func(t *testing.T) {
		if _, err := svc.Refresh(context.Background(), session.AccessToken); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Refresh(access token) error = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		delete(store.users, session.User.ID)
		if _, err := svc.Refresh(context.Background(), session.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Refresh() for deleted user error = %v, want ErrTokenInvalid", err)
		}
	})
}

func TestService_UpdateStatus_UnknownUser(t *testing.T) {
	svc := newTestService(t, newFakeUserStore())

	_, err := svc.UpdateStatus(context.Background(), "missing", StatusInactive)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrUserNotFound", err)
	}
}

func TestService_Profile(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email: "user@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.Profile(context.Background(), session.User.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if user.Email != "user@example.com" {
		t.Errorf("Profile() email = %q", user.Email)
	}

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Profile() for unknown id error = %v, want ErrUserNotFound", err)
	}
}
