package auth

import "errors"

var (
	// ErrDuplicateEmail indicates registration with an already-registered email
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveAccount indicates a credential match against a non-active account
	ErrInactiveAccount = errors.New("account is not active")

	// ErrTokenInvalid indicates a token that fails signature, structure, or
	// type checks
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired indicates a structurally valid token past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrUserNotFound indicates a lookup for an id with no matching account
	ErrUserNotFound = errors.New("user not found")

	// ErrUpstream indicates a user store failure (timeout, connection loss).
	// Authentication treats it like a missing user (fail closed) but it is
	// logged distinctly for operability.
	ErrUpstream = errors.New("user store unavailable")
)
