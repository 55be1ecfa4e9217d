package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/velora/storefront/pkg/httputil"
	"github.com/velora/storefront/pkg/observability"
)

// RouteClass partitions routes into independent rate budgets
type RouteClass string

const (
	ClassGeneral RouteClass = "general"
	ClassAuth    RouteClass = "auth"
	ClassAPI     RouteClass = "api"
)

// ClassLimit is the budget for one route class
type ClassLimit struct {
	MaxRequests int
	Window      time.Duration
}

// Limits holds the per-class budgets
type Limits struct {
	General ClassLimit
	Auth    ClassLimit
	API     ClassLimit
}

// DefaultLimits returns the default budgets. The auth class is deliberately
// strict to blunt credential stuffing.
func DefaultLimits() Limits {
	return Limits{
		General: ClassLimit{MaxRequests: 100, Window: 15 * time.Minute},
		Auth:    ClassLimit{MaxRequests: 5, Window: 15 * time.Minute},
		API:     ClassLimit{MaxRequests: 1000, Window: 15 * time.Minute},
	}
}

// For returns the budget for a route class
func (l Limits) For(class RouteClass) ClassLimit {
	switch class {
	case ClassAuth:
		return l.Auth
	case ClassAPI:
		return l.API
	default:
		return l.General
	}
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter bounds request rate per (client identity, route class) key
type Limiter interface {
	Allow(ctx context.Context, identity string, class RouteClass) (Decision, error)
}

type windowBucket struct {
	start time.Time
	count int
}

// FixedWindowLimiter counts requests in discrete, non-overlapping windows
// per (identity, class) key. Counters live in process memory; in a
// multi-instance deployment the effective limit becomes max × instances, so
// clustered deployments should use RedisLimiter instead.
type FixedWindowLimiter struct {
	limits  Limits
	mu      sync.Mutex
	buckets map[string]*windowBucket
	now     func() time.Time
}

// NewFixedWindowLimiter creates an in-process fixed-window limiter
func NewFixedWindowLimiter(limits Limits) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limits:  limits,
		buckets: make(map[string]*windowBucket),
		now:     time.Now,
	}
}

// Allow checks and counts one request. The whole read-modify-write runs
// under the limiter mutex so two concurrent requests cannot both slip past
// the limit.
func (l *FixedWindowLimiter) Allow(_ context.Context, identity string, class RouteClass) (Decision, error) {
	limit := l.limits.For(class)
	key := string(class) + ":" + identity

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= limit.Window {
		l.buckets[key] = &windowBucket{start: now, count: 1}
		return Decision{Allowed: true, Limit: limit.MaxRequests, Remaining: limit.MaxRequests - 1}, nil
	}

	b.count++
	remaining := limit.MaxRequests - b.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:    b.count <= limit.MaxRequests,
		Limit:      limit.MaxRequests,
		Remaining:  remaining,
		RetryAfter: limit.Window - now.Sub(b.start),
	}, nil
}

// Cleanup removes buckets whose window ended more than one full window ago
func (l *FixedWindowLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		class, _, _ := strings.Cut(key, ":")
		window := l.limits.For(RouteClass(class)).Window
		if now.Sub(b.start) >= 2*window {
			delete(l.buckets, key)
		}
	}
}

// StartCleanup starts a background goroutine that evicts stale buckets
func (l *FixedWindowLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// RateLimitMiddleware enforces per-class rate limits on HTTP routes
type RateLimitMiddleware struct {
	limiter  Limiter
	log      *observability.Logger
	metrics  *observability.Metrics
	failOpen bool
}

// NewRateLimitMiddleware creates the rate limit middleware. When failOpen is
// true, limiter backend errors (e.g. Redis outage) admit the request instead
// of returning 503.
func NewRateLimitMiddleware(limiter Limiter, log *observability.Logger, metrics *observability.Metrics, failOpen bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:  limiter,
		log:      log,
		metrics:  metrics,
		failOpen: failOpen,
	}
}

// Class returns the pipeline stage enforcing the budget of one route class
func (m *RateLimitMiddleware) Class(class RouteClass) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := ClientIP(r)

			decision, err := m.limiter.Allow(r.Context(), identity, class)
			if err != nil {
				m.log.WithError(err).Warn("rate limiter backend error")
				if m.failOpen {
					next.ServeHTTP(w, r)
					return
				}
				httputil.WriteServiceUnavailable(w, "Service temporarily unavailable")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				if m.metrics != nil {
					m.metrics.RateLimitRejectionsTotal.WithLabelValues(string(class)).Inc()
				}
				retryAfter := int(decision.RetryAfter.Seconds() + 0.5)
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteTooManyRequests(w, limitMessage(class))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func limitMessage(class RouteClass) string {
	switch class {
	case ClassAuth:
		return "Too many authentication attempts, please try again later"
	case ClassAPI:
		return "API rate limit exceeded"
	default:
		return "Too many requests from this IP, please try again later"
	}
}

// ClientIP determines the client identity for rate limiting: the first
// X-Forwarded-For hop, then X-Real-IP, then the connection's remote host.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
