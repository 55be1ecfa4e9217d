package api

import (
	"errors"
	"net/http"

	"github.com/velora/storefront/pkg/auth"
	"github.com/velora/storefront/pkg/httputil"
	"github.com/velora/storefront/pkg/middleware"
	"github.com/velora/storefront/pkg/observability"
)

// AuthHandlers handles the authentication endpoints
type AuthHandlers struct {
	service *auth.Service
	metrics *observability.Metrics
}

// NewAuthHandlers creates the auth handlers
func NewAuthHandlers(service *auth.Service, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{service: service, metrics: metrics}
}

// register handles POST /auth/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireEmail(w, req.Email) {
		return
	}
	if !httputil.RequireMinLength(w, req.Password, "password", 8) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.FirstName, "firstName") || !httputil.RequireNonEmpty(w, req.LastName, "lastName") {
		return
	}

	session, err := h.service.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.countAttempt("register", "failure")
		if errors.Is(err, auth.ErrDuplicateEmail) {
			httputil.WriteConflict(w, "User with this email already exists")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("registration failed")
		httputil.WriteInternalError(w, "Internal server error during registration")
		return
	}

	h.countAttempt("register", "success")
	httputil.WriteCreated(w, "User registered successfully", sessionView{
		User:         viewOfPrincipal(session.User),
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// login handles POST /auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") || !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countAttempt("login", "failure")
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			httputil.WriteUnauthorized(w, "Invalid email or password")
		case errors.Is(err, auth.ErrInactiveAccount):
			httputil.WriteUnauthorized(w, "Account is not active")
		default:
			observability.FromContext(r.Context()).WithError(err).Error("login failed")
			httputil.WriteInternalError(w, "Internal server error during login")
		}
		return
	}

	h.countAttempt("login", "success")
	httputil.WriteSuccess(w, "Login successful", sessionView{
		User:         viewOfPrincipal(session.User),
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// profile handles GET /auth/profile
func (h *AuthHandlers) profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("profile lookup failed")
		httputil.WriteInternalError(w, "Internal server error")
		return
	}

	httputil.WriteSuccess(w, "", map[string]interface{}{"user": viewOfUser(user)})
}

// logout handles POST /auth/logout. Tokens are stateless, so logout changes
// no server state; clients discard their tokens.
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, "Logged out successfully", nil)
}

// refresh handles POST /auth/refresh
func (h *AuthHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		httputil.WriteBadRequest(w, "Refresh token is required")
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.countAttempt("refresh", "failure")
		if errors.Is(err, auth.ErrUpstream) {
			observability.FromContext(r.Context()).WithError(err).Error("refresh failed")
		}
		httputil.WriteUnauthorized(w, "Invalid refresh token")
		return
	}

	h.countAttempt("refresh", "success")
	httputil.WriteSuccess(w, "", tokenPairView{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// updateUserStatus handles PATCH /auth/users/{id}/status (admin only)
func (h *AuthHandlers) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "User id is required")
		return
	}

	var req statusRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	status := auth.Status(req.Status)
	if !auth.ValidStatus(status) {
		httputil.WriteBadRequest(w, "Invalid status")
		return
	}

	user, err := h.service.UpdateStatus(r.Context(), userID, status)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("status update failed")
		httputil.WriteInternalError(w, "Internal server error")
		return
	}

	httputil.WriteSuccess(w, "User status updated", map[string]interface{}{"user": viewOfUser(user)})
}

func (h *AuthHandlers) countAttempt(operation, outcome string) {
	if h.metrics != nil {
		h.metrics.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
	}
}
