package auth

import (
	"github.com/angelmondragon/storefront-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         *users.UserDTO    `json:"user"`
	Profile      *users.ProfileDTO `json:"profile,omitempty"`
}

// RefreshRequest pairs the bearer access token with the refresh token from
// the body.
type RefreshRequest struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is the result of a session refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
