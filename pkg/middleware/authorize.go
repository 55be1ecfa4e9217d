package middleware

import (
	"net/http"

	"github.com/velora/storefront/pkg/auth"
	"github.com/velora/storefront/pkg/httputil"
)

// RequireRole returns the authorization stage for a role allow-list. Without
// a principal the request fails 401; with a principal whose role is not in
// the allow-list it fails 403. Comparison is exact match against the closed
// role vocabulary; there is no hierarchy, so callers pass the full list.
func RequireRole(allowed ...auth.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httputil.WriteUnauthorized(w, "Authentication required")
				return
			}

			for _, role := range allowed {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			httputil.WriteForbidden(w, "Insufficient permissions")
		})
	}
}
