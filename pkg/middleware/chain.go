package middleware

import "net/http"

// Middleware is a request-transforming pipeline stage
type Middleware func(http.Handler) http.Handler

// Chain composes stages into one middleware. The first argument runs
// outermost, so Chain(a, b, c) handles a request as a → b → c → handler.
func Chain(stages ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(stages) - 1; i >= 0; i-- {
			next = stages[i](next)
		}
		return next
	}
}
