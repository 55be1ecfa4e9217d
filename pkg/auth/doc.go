// Package auth implements the authentication core: password hashing and
// verification, signed access/refresh token issuance and verification, and
// the account flows (register, login, profile, refresh) behind the HTTP
// handlers.
//
// The package performs no I/O of its own except through the UserStore
// interface; token and password operations are pure and CPU-bound.
package auth
