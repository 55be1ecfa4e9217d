package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/velora/storefront/pkg/auth"
	"github.com/velora/storefront/pkg/httputil"
	"github.com/velora/storefront/pkg/middleware"
	"github.com/velora/storefront/pkg/observability"
	"github.com/velora/storefront/pkg/storage"
)

// Options carries the collaborators the server wires together
type Options struct {
	AuthService   *auth.Service
	Authenticator *middleware.Authenticator
	RateLimit     *middleware.RateLimitMiddleware
	Products      storage.ProductStore
	Logger        *observability.Logger
	Metrics       *observability.Metrics
}

// Server is the HTTP surface of the storefront service
type Server struct {
	router *mux.Router
}

// NewServer builds the router with per-route-class middleware pipelines.
// Every request passes rate limiting before authentication, and
// authentication before authorization.
func NewServer(opts Options) *Server {
	s := &Server{router: mux.NewRouter()}

	authHandlers := NewAuthHandlers(opts.AuthService, opts.Metrics)
	productHandlers := NewProductHandlers(opts.Products)

	base := middleware.Chain(
		middleware.RequestID(opts.Logger),
		middleware.Logging(opts.Logger, opts.Metrics),
	)

	generalClass := opts.RateLimit.Class(middleware.ClassGeneral)
	authClass := opts.RateLimit.Class(middleware.ClassAuth)
	apiClass := opts.RateLimit.Class(middleware.ClassAPI)

	authn := opts.Authenticator

	route := func(path string, stages middleware.Middleware, handler http.HandlerFunc, methods ...string) {
		s.router.Handle(path, middleware.Chain(base, stages)(handler)).Methods(methods...)
	}

	// Health and metrics
	s.router.Handle("/health", base(http.HandlerFunc(s.health))).Methods(http.MethodGet)
	if opts.Metrics != nil {
		s.router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Auth endpoints. Credential-accepting routes carry the strict auth
	// budget; token-bearing session routes use the general budget.
	route("/auth/register", authClass, authHandlers.register, http.MethodPost)
	route("/auth/login", authClass, authHandlers.login, http.MethodPost)
	route("/auth/profile", middleware.Chain(generalClass, authn.Required()), authHandlers.profile, http.MethodGet)
	route("/auth/logout", middleware.Chain(generalClass, authn.Required()), authHandlers.logout, http.MethodPost)
	route("/auth/refresh", generalClass, authHandlers.refresh, http.MethodPost)
	route("/auth/users/{id}/status",
		middleware.Chain(apiClass, authn.Required(), middleware.RequireRole(auth.RoleAdmin)),
		authHandlers.updateUserStatus, http.MethodPatch)

	// Catalog endpoints. Public reads get optional auth for personalization;
	// writes require the admin/seller allow-list.
	route("/products", middleware.Chain(generalClass, authn.Optional()), productHandlers.list(false), http.MethodGet)
	route("/products/featured", middleware.Chain(generalClass, authn.Optional()), productHandlers.list(true), http.MethodGet)
	route("/products/{id}", middleware.Chain(generalClass, authn.Optional()), productHandlers.get, http.MethodGet)
	route("/products",
		middleware.Chain(apiClass, authn.Required(), middleware.RequireRole(auth.RoleAdmin, auth.RoleSeller)),
		productHandlers.create, http.MethodPost)

	s.router.NotFoundHandler = base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "Route not found")
	}))

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, "Server is running", map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
