// Package observability provides structured logging, Prometheus metrics,
// and graceful shutdown coordination for the storefront service.
//
// Handlers and middleware log through Logger so that internal error detail
// stays in the server logs and never leaks into HTTP response bodies.
package observability
