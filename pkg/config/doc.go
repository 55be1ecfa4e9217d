// Package config loads service configuration from STOREFRONT_* environment
// variables into an explicit struct that main constructs once and injects
// into components; nothing reads ambient environment state after startup.
//
// Development fallbacks exist for every value, including the token secrets.
// Validate refuses to start a production deployment that has not overridden
// the secret fallbacks.
package config
