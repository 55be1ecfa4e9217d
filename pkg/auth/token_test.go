package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

func TestNewTokenService_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  TokenConfig
	}{
		{
			name: "empty access secret",
			cfg:  TokenConfig{AccessSecret: "", AccessTTL: time.Hour, RefreshSecret: "r", RefreshTTL: time.Hour},
		},
		{
			name: "empty refresh secret",
			cfg:  TokenConfig{AccessSecret: "a", AccessTTL: time.Hour, RefreshSecret: "", RefreshTTL: time.Hour},
		},
		{
			name: "zero access TTL",
			cfg:  TokenConfig{AccessSecret: "a", AccessTTL: 0, RefreshSecret: "r", RefreshTTL: time.Hour},
		},
		{
			name: "negative refresh TTL",
			cfg:  TokenConfig{AccessSecret: "a", AccessTTL: time.Hour, RefreshSecret: "r", RefreshTTL: -time.Hour},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenService(tt.cfg); err == nil {
				t.Error("NewTokenService() should reject the config")
			}
		})
	}
}

func TestTokenService_AccessRoundtrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.IssueAccess("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	claims, err := svc.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "user@example.com")
	}
}

func TestTokenService_RefreshRoundtrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	claims, err := svc.VerifyRefresh(token)
	if err != nil {
		t.Fatalf("VerifyRefresh() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "" {
		t.Errorf("refresh token carries email %q, want empty", claims.Email)
	}
}

func TestTokenService_TypeConfusion(t *testing.T) {
	svc := newTestTokenService(t)

	access, err := svc.IssueAccess("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	refresh, err := svc.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	if _, err := svc.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyRefresh(access token) error = %v, want ErrTokenInvalid", err)
	}
	if _, err := svc.VerifyAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyAccess(refresh token) error = %v, want ErrTokenInvalid", err)
	}
}

// Even with identical secrets the type claim keeps the two verification
// paths apart.
func TestTokenService_TypeConfusion_SharedSecret(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:  "shared-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "shared-secret",
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	access, err := svc.IssueAccess("user-1", "")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	if _, err := svc.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyRefresh(access token) error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Nanosecond,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := svc.IssueAccess("user-1", "")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err = svc.VerifyAccess(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("VerifyAccess() error = %v, want ErrTokenExpired", err)
	}
	if errors.Is(err, ErrTokenInvalid) {
		t.Error("expired token must be distinguishable from an invalid one")
	}
}

func TestTokenService_Invalid(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := NewTokenService(TokenConfig{
		AccessSecret:  "a different secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "another different secret",
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	foreign, err := other.IssueAccess("user-1", "")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty string", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "wrong signing key", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.VerifyAccess(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("VerifyAccess() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
