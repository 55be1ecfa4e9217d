// Package httputil provides HTTP handler utilities for the uniform response
// envelope, JSON decoding, and request parsing.
//
// Every response body, success or failure, uses the same envelope:
//
//	{"success": bool, "message": "...", "data": {...}}
//
// Internal error detail never enters the envelope; callers log it and send a
// stable message instead.
package httputil
