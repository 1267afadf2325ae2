package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teachbridge/authkit/internal/client/biometric"
	"github.com/teachbridge/authkit/internal/client/httpapi"
	"github.com/teachbridge/authkit/internal/client/models"
	"github.com/teachbridge/authkit/internal/client/oauth"
	"github.com/teachbridge/authkit/internal/client/tokenstore"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) *tokenstore.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE secrets (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return tokenstore.New(db)
}

// fakeAPI implements httpapi.Client for service tests.
type fakeAPI struct {
	LoginRet          *httpapi.AuthResponse
	LoginErr          error
	LoginCalls        int
	LastLoginEmail    string
	LastLoginPassword string

	RegisterRet *httpapi.AuthResponse
	RegisterErr error

	LogoutErr   error
	LogoutCalls int

	RefreshRet       *httpapi.TokenResponse
	RefreshErr       error
	RefreshCalls     int
	LastRefreshToken string

	ValidateRet *httpapi.ValidateResponse
	ValidateErr error

	GoogleLoginRet  *httpapi.AuthResponse
	GoogleLoginErr  error
	LastGoogleToken string

	MeRet   *models.User
	MeErr   error
	MeCalls int

	ForgotErr error
	ResetErr  error
	ChangeErr error

	LastForgotEmail     string
	LastResetToken      string
	LastChangedPassword string
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*httpapi.AuthResponse, error) {
	f.LoginCalls++
	f.LastLoginEmail = email
	f.LastLoginPassword = password
	return f.LoginRet, f.LoginErr
}

func (f *fakeAPI) Register(ctx context.Context, req httpapi.RegisterRequest) (*httpapi.AuthResponse, error) {
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (*httpapi.TokenResponse, error) {
	f.RefreshCalls++
	f.LastRefreshToken = refreshToken
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeAPI) Validate(ctx context.Context, token string) (*httpapi.ValidateResponse, error) {
	return f.ValidateRet, f.ValidateErr
}

func (f *fakeAPI) GoogleLogin(ctx context.Context, idToken, accessToken string) (*httpapi.AuthResponse, error) {
	f.LastGoogleToken = idToken
	return f.GoogleLoginRet, f.GoogleLoginErr
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	f.MeCalls++
	return f.MeRet, f.MeErr
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error {
	f.LastForgotEmail = email
	return f.ForgotErr
}

func (f *fakeAPI) ResetPassword(ctx context.Context, token, password string) error {
	f.LastResetToken = token
	return f.ResetErr
}

func (f *fakeAPI) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	f.LastChangedPassword = newPassword
	return f.ChangeErr
}

// fakePlatform implements biometric.Platform.
type fakePlatform struct {
	Available bool
	PromptRet biometric.PromptResult
}

func (f *fakePlatform) HasHardware(ctx context.Context) (bool, error) { return f.Available, nil }

func (f *fakePlatform) HasEnrolled(ctx context.Context) (bool, error) { return f.Available, nil }

func (f *fakePlatform) Prompt(ctx context.Context, cfg biometric.PromptConfig) (biometric.PromptResult, error) {
	return f.PromptRet, nil
}

// fakeGoogle implements GoogleAuthenticator.
type fakeGoogle struct {
	AuthRet *oauth.Result
	AuthErr error
}

func (f *fakeGoogle) Initialize(ctx context.Context) {}

func (f *fakeGoogle) Authenticate(ctx context.Context) (*oauth.Result, error) {
	return f.AuthRet, f.AuthErr
}

func (f *fakeGoogle) Cleanup(ctx context.Context) {}
