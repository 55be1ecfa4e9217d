package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/velora/storefront/pkg/auth"
	"github.com/velora/storefront/pkg/contextkeys"
	"github.com/velora/storefront/pkg/httputil"
	"github.com/velora/storefront/pkg/observability"
)

// errNoBearerToken marks an absent Authorization header or a non-bearer
// scheme; strict mode answers it with the missing-token message.
var errNoBearerToken = errors.New("no bearer token")

// DefaultLookupTimeout bounds the user store lookup per request
const DefaultLookupTimeout = 5 * time.Second

// Authenticator turns a bearer token into an authenticated principal. The
// strict (Required) and optional (Optional) modes share the same resolution
// path and differ only in what happens on failure, so the security checks
// cannot drift apart.
//
// The user is re-resolved from the store on every request, deliberately: a
// deactivated account loses access on its next request even while its token
// is still unexpired.
type Authenticator struct {
	tokens        *auth.TokenService
	users         auth.UserStore
	lookupTimeout time.Duration
	log           *observability.Logger
	metrics       *observability.Metrics
}

// NewAuthenticator creates an authenticator. A zero lookupTimeout falls back
// to DefaultLookupTimeout.
func NewAuthenticator(tokens *auth.TokenService, users auth.UserStore, lookupTimeout time.Duration, log *observability.Logger, metrics *observability.Metrics) *Authenticator {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Authenticator{
		tokens:        tokens,
		users:         users,
		lookupTimeout: lookupTimeout,
		log:           log,
		metrics:       metrics,
	}
}

// Resolve runs the shared authentication path: extract the bearer token,
// verify it, and re-resolve the live user. Only an active account yields a
// principal; store failures and timeouts fail closed.
func (a *Authenticator) Resolve(r *http.Request) (*auth.Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errNoBearerToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return nil, errNoBearerToken
	}

	claims, err := a.tokens.VerifyAccess(token)
	if err != nil {
		if a.metrics != nil {
			kind := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				kind = "expired"
			}
			a.metrics.TokenFailuresTotal.WithLabelValues(kind).Inc()
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.lookupTimeout)
	defer cancel()

	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		// Upstream failure is treated like a missing user for auth purposes,
		// but logged distinctly for operability.
		a.log.WithError(err).WithField("user_id", claims.UserID).Warn("user lookup failed during authentication")
		if a.metrics != nil {
			a.metrics.StoreErrorsTotal.WithLabelValues("find_by_id").Inc()
		}
		return nil, auth.ErrUpstream
	}
	if user == nil {
		return nil, auth.ErrUserNotFound
	}
	if user.Status != auth.StatusActive {
		return nil, auth.ErrInactiveAccount
	}

	return user.Principal(), nil
}

// Required returns the strict-mode stage: requests without a valid token for
// an active account are rejected with 401.
func (a *Authenticator) Required() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := a.Resolve(r)
			if err != nil {
				if errors.Is(err, errNoBearerToken) {
					httputil.WriteUnauthorized(w, "Access token required")
					return
				}
				httputil.WriteUnauthorized(w, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// Optional returns the optional-mode stage: on any failure the request
// continues anonymously, with no principal in the context.
func (a *Authenticator) Optional() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := a.Resolve(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// WithPrincipal attaches an authenticated principal to the context
func WithPrincipal(ctx context.Context, principal *auth.Principal) context.Context {
	return contextkeys.WithPrincipal(ctx, principal)
}

// PrincipalFromContext returns the authenticated principal, or ok=false for
// an anonymous request. Callers must handle both outcomes.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	principal, ok := ctx.Value(contextkeys.PrincipalKey).(*auth.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}
