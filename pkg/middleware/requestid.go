package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/velora/storefront/pkg/contextkeys"
	"github.com/velora/storefront/pkg/httputil"
	"github.com/velora/storefront/pkg/observability"
)

// RequestID assigns each request a UUID, attaches it and a request-scoped
// logger to the context, and echoes it in the X-Request-ID header.
func RequestID(log *observability.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			ctx := contextkeys.WithRequestID(r.Context(), requestID)
			ctx = observability.WithLogger(ctx, log)

			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the status code written by downstream handlers
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each completed request, records HTTP metrics, and converts
// handler panics into a 500 envelope so no request kills the process.
func Logging(log *observability.Logger, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if p := recover(); p != nil {
					log.WithField("panic", p).
						WithField("stack", string(debug.Stack())).
						WithField("path", r.URL.Path).
						Error("panic recovered in handler")
					httputil.WriteInternalError(rec, "Internal server error")
				}

				path := routePath(r)
				duration := time.Since(start)
				if metrics != nil {
					metrics.ObserveHTTPRequest(r.Method, path, rec.status, duration)
				}
				observability.FromContext(r.Context()).WithFields(map[string]interface{}{
					"method":      r.Method,
					"path":        path,
					"status":      rec.status,
					"duration_ms": duration.Milliseconds(),
				}).Info("request completed")
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// routePath prefers the route template over the raw URL so metrics stay
// low-cardinality
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}
