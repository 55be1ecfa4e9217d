package api

import (
	"time"

	"github.com/velora/storefront/pkg/auth"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type createProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Featured    bool    `json:"featured"`
}

// userView is the account shape exposed over HTTP; it never carries the
// password hash
type userView struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      auth.Role   `json:"role,omitempty"`
	Status    auth.Status `json:"status,omitempty"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

// sessionView is the register/login response payload
type sessionView struct {
	User         userView `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
}

// tokenPairView is the refresh response payload
type tokenPairView struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func viewOfPrincipal(p *auth.Principal) userView {
	return userView{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
		Status:    p.Status,
	}
}

func viewOfUser(u *auth.User) userView {
	createdAt := u.CreatedAt
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: &createdAt,
	}
}
