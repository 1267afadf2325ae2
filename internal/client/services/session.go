package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/teachbridge/authkit/internal/client/biometric"
	"github.com/teachbridge/authkit/internal/client/config"
	"github.com/teachbridge/authkit/internal/client/httpapi"
	"github.com/teachbridge/authkit/internal/client/models"
	"github.com/teachbridge/authkit/internal/client/oauth"
	"github.com/teachbridge/authkit/internal/client/tokenstore"
	"github.com/teachbridge/authkit/internal/common"
	"github.com/teachbridge/authkit/internal/logging"
)

// GoogleAuthenticator is the slice of the OAuth adapter the manager needs.
type GoogleAuthenticator interface {
	Initialize(ctx context.Context)
	Authenticate(ctx context.Context) (*oauth.Result, error)
	Cleanup(ctx context.Context)
}

// Credentials is the input of a password login.
type Credentials struct {
	Email      string
	Password   string
	RememberMe bool
}

// Report lists non-fatal problems encountered by a best-effort operation.
// Initialize and Logout never fail; they report degraded sub-steps here so
// callers can log or surface them without the call itself rejecting.
type Report struct {
	Warnings []string
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// OK reports whether the operation completed without degradation.
func (r Report) OK() bool { return len(r.Warnings) == 0 }

// Manager orchestrates the session lifecycle. It owns the in-memory user
// record; every durable mutation goes through the token store.
//
// State machine: Uninitialized -> Initializing -> {Authenticated,
// Unauthenticated}; Authenticated -> Unauthenticated on logout or
// unrecoverable refresh failure.
type Manager struct {
	cfg       *config.Config
	api       httpapi.Client // token-decorated client
	authAPI   httpapi.Client // bare client for unauthenticated endpoints
	store     *tokenstore.Store
	gate      *biometric.Gate
	google    GoogleAuthenticator
	validator *TokenValidator
	log       logging.Logger
	now       func() time.Time

	mu             sync.Mutex
	user           *models.User
	failedAttempts int
	lockedUntil    time.Time
}

// ManagerParams carries the manager's collaborators. Tests substitute fakes
// for any of them.
type ManagerParams struct {
	Config    *config.Config
	API       httpapi.Client
	AuthAPI   httpapi.Client
	Store     *tokenstore.Store
	Gate      *biometric.Gate
	Google    GoogleAuthenticator
	Validator *TokenValidator
	Logger    logging.Logger
}

func NewManager(p ManagerParams) *Manager {
	return &Manager{
		cfg:       p.Config,
		api:       p.API,
		authAPI:   p.AuthAPI,
		store:     p.Store,
		gate:      p.Gate,
		google:    p.Google,
		validator: p.Validator,
		log:       p.Logger,
		now:       time.Now,
	}
}

// New wires a complete session manager around the vault database and the
// injected platform adapters. This is the composition root for production
// use; tests construct managers via NewManager with fakes.
func New(cfg *config.Config, db *sql.DB, platform biometric.Platform, browser oauth.Browser, log logging.Logger) *Manager {
	store := tokenstore.New(db)
	bare := httpapi.NewHTTPClient(cfg.APIBaseURL, nil, log)
	validator := NewTokenValidator(bare, store, cfg.TokenRefreshThreshold, log)
	gate := biometric.NewGate(platform, store, biometric.PromptConfig{
		Title:    cfg.BiometricPromptTitle,
		Subtitle: cfg.BiometricPromptSubtitle,
	}, log)
	google := oauth.NewGoogleAdapter(cfg.GoogleClientID, browser, log)

	m := NewManager(ManagerParams{
		Config:    cfg,
		AuthAPI:   bare,
		Store:     store,
		Gate:      gate,
		Google:    google,
		Validator: validator,
		Logger:    log,
	})

	transport := httpapi.NewAuthTransport(nil,
		func(ctx context.Context) (string, error) {
			pair, err := store.GetTokens(ctx)
			return pair.AccessToken, err
		},
		m.RefreshToken,
		log,
	)
	m.api = httpapi.NewHTTPClient(cfg.APIBaseURL, transport, log)

	return m
}

// Initialize restores a session from stored tokens, best-effort. Every
// sub-step failure is caught, logged, and reported as a warning; the call
// itself never fails so app startup can proceed offline with cached state.
func (m *Manager) Initialize(ctx context.Context) Report {
	var rep Report

	pair, err := m.store.GetTokens(ctx)
	if err != nil {
		m.log.Warn(ctx, "stored token read failed", "error", err)
		rep.warnf("stored token read failed: %v", err)
		return rep
	}
	if pair.AccessToken == "" {
		// Nothing stored; starting unauthenticated is the normal cold path.
		return rep
	}

	res := m.validator.ValidateToken(ctx, pair.AccessToken)
	if !res.IsValid || res.NeedsRefresh {
		if pair.RefreshToken == "" {
			rep.warnf("stored access token unusable and no refresh token present")
			return rep
		}
		if _, err := m.validator.RefreshToken(ctx); err != nil {
			m.log.Warn(ctx, "session restore refresh failed", "error", err)
			rep.warnf("token refresh failed: %v", err)
			return rep
		}
	}

	if u, err := m.api.Me(ctx); err == nil {
		m.setUser(u)
		if err := m.store.SaveUser(ctx, u); err != nil {
			m.log.Warn(ctx, "user session cache write failed", "error", err)
		}
		return rep
	} else {
		m.log.Warn(ctx, "user fetch during initialize failed", "error", err)
		rep.warnf("user fetch failed: %v", err)
	}

	// Fetch failed; fall back to the mirrored record so cached UI state
	// still has an owner.
	if u, err := m.store.GetUser(ctx); err == nil && u != nil {
		m.setUser(u)
	}
	return rep
}

// Login authenticates with email and password. It never returns an error;
// the result object carries a display message on failure. Storage failures
// on the success path are tolerated: the user is authenticated even if the
// tokens could not be durably cached.
func (m *Manager) Login(ctx context.Context, creds Credentials) models.AuthResult {
	if until, locked := m.locked(); locked {
		m.log.Warn(ctx, "login rejected by lockout", "until", until)
		return models.AuthResult{Error: "Too many failed login attempts. Try again later"}
	}

	resp, err := m.authAPI.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		m.recordFailure(err)
		return models.AuthResult{Error: common.UserMessage(err)}
	}
	m.resetFailures()

	if err := m.store.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		m.log.Warn(ctx, "token persistence after login failed", "error", err)
	}
	if creds.RememberMe {
		if err := m.store.SetRememberMe(ctx, creds.Email, creds.Password); err != nil {
			m.log.Warn(ctx, "remember-me persistence failed", "error", err)
		}
	}

	m.completeSignIn(ctx, resp)
	return successResult(resp)
}

// Register creates an account. Same contract as Login; the result may carry
// RequiresVerification when the account needs a separate verification step.
func (m *Manager) Register(ctx context.Context, req httpapi.RegisterRequest) models.AuthResult {
	resp, err := m.authAPI.Register(ctx, req)
	if err != nil {
		return models.AuthResult{Error: common.UserMessage(err)}
	}

	if err := m.store.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		m.log.Warn(ctx, "token persistence after registration failed", "error", err)
	}

	m.completeSignIn(ctx, resp)
	return successResult(resp)
}

// Logout tells the backend best-effort, then unconditionally clears all
// local auth state: tokens, biometric key, remember-me credentials, and the
// in-memory user. Clearing happens even when the network call fails.
func (m *Manager) Logout(ctx context.Context) Report {
	var rep Report

	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn(ctx, "remote logout failed", "error", err)
		rep.warnf("remote logout failed: %v", err)
	}

	if err := m.store.ClearAll(ctx); err != nil {
		m.log.Error(ctx, "local auth state clear failed", "error", err)
		rep.warnf("local auth state clear failed: %v", err)
	}

	m.mu.Lock()
	m.user = nil
	m.failedAttempts = 0
	m.lockedUntil = time.Time{}
	m.mu.Unlock()

	return rep
}

// RefreshToken delegates to the validator and drops the in-memory user when
// the refresh fails, keeping memory consistent with the cleared store.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	token, err := m.validator.RefreshToken(ctx)
	if err != nil {
		m.setUser(nil)
		return "", err
	}
	return token, nil
}

// LoginWithGoogle acquires a Google identity token through the OAuth
// adapter and exchanges it with the backend, following the Login contract.
func (m *Manager) LoginWithGoogle(ctx context.Context) models.AuthResult {
	res, err := m.google.Authenticate(ctx)
	if err != nil {
		m.log.Warn(ctx, "google authentication failed", "error", err)
		return models.AuthResult{Error: common.UserMessage(err)}
	}
	if !res.Success {
		return models.AuthResult{Error: res.Error}
	}

	resp, err := m.authAPI.GoogleLogin(ctx, res.IDToken, res.AccessToken)
	if err != nil {
		return models.AuthResult{Error: common.UserMessage(err)}
	}

	if err := m.store.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		m.log.Warn(ctx, "token persistence after google login failed", "error", err)
	}

	m.completeSignIn(ctx, resp)
	return successResult(resp)
}

// EnableBiometrics turns on biometric login for the current user.
func (m *Manager) EnableBiometrics(ctx context.Context) error {
	u := m.currentUser()
	if u == nil {
		return common.ErrUnauthorized
	}

	ok, err := m.gate.Enable(ctx, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewAuthError(common.KindBiometricNotAvailable,
			"Biometric enrollment was not completed")
	}
	return nil
}

// DisableBiometrics turns off biometric login. Safe to call repeatedly.
func (m *Manager) DisableBiometrics(ctx context.Context) error {
	return m.gate.Disable(ctx)
}

// AuthenticateWithBiometrics runs the biometric login path: challenge via
// the gate, then either a full re-login with the remembered credentials or,
// when none are stored, a confirmation of the already-authenticated user.
func (m *Manager) AuthenticateWithBiometrics(ctx context.Context) models.AuthResult {
	res := m.gate.AuthenticateForLogin(ctx)
	if !res.Success {
		return models.AuthResult{Error: res.Error}
	}

	email, password, err := m.store.GetRememberMe(ctx)
	if err != nil {
		m.log.Warn(ctx, "remember-me read failed", "error", err)
	}
	if email == "" {
		if u := m.currentUser(); u != nil {
			return models.AuthResult{Success: true, User: u}
		}
		return models.AuthResult{Error: "No saved credentials. Sign in with your password"}
	}

	return m.Login(ctx, Credentials{Email: email, Password: password, RememberMe: true})
}

// GetCurrentUser returns the in-memory user if present; otherwise, when
// tokens exist, it fetches and caches the user. Absence is a valid state,
// not an error — the method never fails.
func (m *Manager) GetCurrentUser(ctx context.Context) *models.User {
	if u := m.currentUser(); u != nil {
		return u
	}

	pair, err := m.store.GetTokens(ctx)
	if err != nil || pair.AccessToken == "" {
		return nil
	}

	u, err := m.api.Me(ctx)
	if err != nil {
		m.log.Warn(ctx, "user fetch failed", "error", err)
		if cached, cerr := m.store.GetUser(ctx); cerr == nil && cached != nil {
			m.setUser(cached)
			return cached
		}
		return nil
	}

	m.setUser(u)
	if err := m.store.SaveUser(ctx, u); err != nil {
		m.log.Warn(ctx, "user session cache write failed", "error", err)
	}
	return u
}

// IsAuthenticated reports whether a token exists AND currently validates.
// It deliberately re-validates on every call instead of trusting a cached
// boolean.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	pair, err := m.store.GetTokens(ctx)
	if err != nil || pair.AccessToken == "" {
		return false
	}
	return m.validator.ValidateToken(ctx, pair.AccessToken).IsValid
}

// ForgotPassword asks the backend to start a password reset.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	return m.authAPI.ForgotPassword(ctx, email)
}

// ResetPassword completes a password reset with the emailed token.
func (m *Manager) ResetPassword(ctx context.Context, token, password string) error {
	return m.authAPI.ResetPassword(ctx, token, password)
}

// ChangePassword changes the authenticated user's password.
func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return m.api.ChangePassword(ctx, currentPassword, newPassword)
}

func (m *Manager) completeSignIn(ctx context.Context, resp *httpapi.AuthResponse) {
	m.setUser(resp.User)
	if resp.User != nil {
		if err := m.store.SaveUser(ctx, resp.User); err != nil {
			m.log.Warn(ctx, "user session cache write failed", "error", err)
		}
	}
}

func successResult(resp *httpapi.AuthResponse) models.AuthResult {
	return models.AuthResult{
		Success:              true,
		User:                 resp.User,
		AccessToken:          resp.AccessToken,
		RefreshToken:         resp.RefreshToken,
		RequiresVerification: resp.RequiresVerification,
	}
}

func (m *Manager) currentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *Manager) setUser(u *models.User) {
	m.mu.Lock()
	m.user = u
	m.mu.Unlock()
}

// recordFailure counts invalid-credential failures toward the client-side
// lockout. Other failure kinds (network, server) do not count.
func (m *Manager) recordFailure(err error) {
	if !common.IsKind(err, common.KindInvalidCredentials) {
		return
	}
	if m.cfg.MaxLoginAttempts <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedAttempts++
	if m.failedAttempts >= m.cfg.MaxLoginAttempts {
		m.lockedUntil = m.now().Add(m.cfg.LockoutDuration)
		m.failedAttempts = 0
	}
}

func (m *Manager) resetFailures() {
	m.mu.Lock()
	m.failedAttempts = 0
	m.lockedUntil = time.Time{}
	m.mu.Unlock()
}

func (m *Manager) locked() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockedUntil.IsZero() || m.now().After(m.lockedUntil) {
		return time.Time{}, false
	}
	return m.lockedUntil, true
}
