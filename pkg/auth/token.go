package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenConfig holds the two independent signing secrets and TTLs. Access and
// refresh tokens never share a verification path even if a deployment
// configures identical secrets: the type claim is checked on both paths.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// Claims is the signed claim set carried by both token kinds. Refresh tokens
// omit the email to minimize replay value if one leaks.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
}

// TokenService issues and verifies HMAC-signed, time-limited access and
// refresh tokens. It performs no I/O and keeps no state.
type TokenService struct {
	cfg TokenConfig
}

// NewTokenService validates the config and returns a token service
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &TokenService{cfg: cfg}, nil
}

// IssueAccess signs a short-lived access token for userID. The email claim
// is included for caller convenience.
func (s *TokenService) IssueAccess(userID, email string) (string, error) {
	return s.issue(tokenTypeAccess, s.cfg.AccessSecret, s.cfg.AccessTTL, userID, email)
}

// IssueRefresh signs a long-lived refresh token carrying only the user id
func (s *TokenService) IssueRefresh(userID string) (string, error) {
	return s.issue(tokenTypeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL, userID, "")
}

// VerifyAccess validates an access token and returns its claims. It fails
// with ErrTokenExpired for a structurally valid but stale token and
// ErrTokenInvalid for everything else.
func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, tokenTypeAccess, s.cfg.AccessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return s.verify(token, tokenTypeRefresh, s.cfg.RefreshSecret)
}

func (s *TokenService) issue(tokenType, secret string, ttl time.Duration, userID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *TokenService) verify(tokenString, tokenType, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.TokenType != tokenType || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
