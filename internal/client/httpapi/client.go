// Package httpapi implements the client of the TeachBridge auth backend:
// typed wrappers over the REST endpoints, mapping of HTTP statuses into the
// auth error taxonomy, and the transport that injects the access token and
// retries once after a refresh on 401.
package httpapi

import (
	"context"
	"time"

	"github.com/teachbridge/authkit/internal/client/models"
)

// Client is the surface of the auth backend consumed by the session layer.
type Client interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Validate(ctx context.Context, token string) (*ValidateResponse, error)
	GoogleLogin(ctx context.Context, idToken, accessToken string) (*AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	School    string `json:"school,omitempty"`
}

// AuthResponse is the success payload of the login/register/google calls.
type AuthResponse struct {
	User                 *models.User `json:"user"`
	AccessToken          string       `json:"accessToken"`
	RefreshToken         string       `json:"refreshToken"`
	RequiresVerification bool         `json:"requiresVerification,omitempty"`
}

// TokenResponse is the success payload of POST /auth/refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ValidateResponse is the payload of POST /auth/validate. ExpiresAt is nil
// when the server does not report an expiry.
type ValidateResponse struct {
	IsValid   bool       `json:"isValid"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
