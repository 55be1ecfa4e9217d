// Package middleware implements the request pipeline: rate limiting (fixed
// window, in-process or Redis-backed), bearer-token authentication with
// strict and optional modes, role-based authorization, and request
// instrumentation.
//
// Stages compose with Chain into an explicit ordered pipeline; each stage
// either continues with an enriched request context or short-circuits with a
// response. The canonical order is rate limiter, authenticator, authorizer,
// handler.
package middleware
