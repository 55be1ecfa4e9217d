// Package api wires the HTTP surface: route registration, per-route-class
// middleware pipelines, and the handlers for the auth and product endpoints.
package api
