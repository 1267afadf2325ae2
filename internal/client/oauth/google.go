package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/teachbridge/authkit/internal/client/models"
	"github.com/teachbridge/authkit/internal/common"
	"github.com/teachbridge/authkit/internal/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Result is the discriminated outcome of a Google sign-in attempt.
// Cancelled distinguishes user dismissal from a provider error; hard
// failures (malformed provider responses, exchange errors) are returned as
// Go errors instead.
type Result struct {
	Success     bool
	Cancelled   bool
	IDToken     string
	AccessToken string
	User        *models.GoogleUserInfo
	Error       string
}

// GoogleAdapter runs the authorization-code + PKCE flow against Google,
// listening on a loopback port for the redirect.
type GoogleAdapter struct {
	cfg     *oauth2.Config
	browser Browser
	log     logging.Logger

	// exchange is a seam over (*oauth2.Config).Exchange so tests can avoid
	// the network.
	exchange func(ctx context.Context, cfg *oauth2.Config, code, verifier string) (*oauth2.Token, error)
}

func NewGoogleAdapter(clientID string, browser Browser, log logging.Logger) *GoogleAdapter {
	return &GoogleAdapter{
		cfg: &oauth2.Config{
			ClientID: clientID,
			Endpoint: google.Endpoint,
			Scopes:   []string{"openid", "email", "profile"},
		},
		browser: browser,
		log:     log,
		exchange: func(ctx context.Context, cfg *oauth2.Config, code, verifier string) (*oauth2.Token, error) {
			return cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		},
	}
}

// Initialize warms up the browser component. Best-effort: failures are
// logged, never returned.
func (a *GoogleAdapter) Initialize(ctx context.Context) {
	if err := a.browser.Warm(ctx); err != nil {
		a.log.Warn(ctx, "browser warm-up failed", "error", err)
	}
}

// Cleanup releases the browser component. Best-effort, like Initialize.
func (a *GoogleAdapter) Cleanup(ctx context.Context) {
	if err := a.browser.Close(ctx); err != nil {
		a.log.Warn(ctx, "browser cleanup failed", "error", err)
	}
}

type callbackParams struct {
	code    string
	errCode string
	errDesc string
}

// Authenticate prompts the user via the browser and interprets the
// redirect. A nominal success that lacks an ID token is a hard error: it
// indicates a malformed provider response, not a normal negative outcome.
func (a *GoogleAdapter) Authenticate(ctx context.Context) (*Result, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start redirect listener: %w", err)
	}
	defer ln.Close()

	cfg := *a.cfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())

	state, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackParams, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this window.")
		select {
		case results <- callbackParams{
			code:    q.Get("code"),
			errCode: q.Get("error"),
			errDesc: q.Get("error_description"),
		}:
		default:
		}
	})
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	if err := a.browser.Open(ctx, authURL); err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}

	var cb callbackParams
	select {
	case cb = <-results:
	case <-ctx.Done():
		return &Result{Cancelled: true, Error: "User cancelled Google sign-in"}, nil
	}

	switch cb.errCode {
	case "":
	case "access_denied":
		return &Result{Cancelled: true, Error: "User cancelled Google sign-in"}, nil
	default:
		msg := cb.errDesc
		if msg == "" {
			msg = cb.errCode
		}
		return &Result{Error: msg}, nil
	}

	tok, err := a.exchange(ctx, &cfg, cb.code, verifier)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, errors.New("google response missing identity token")
	}

	user, err := DecodeIDToken(idToken)
	if err != nil {
		return nil, err
	}

	return &Result{
		Success:     true,
		IDToken:     idToken,
		AccessToken: tok.AccessToken,
		User:        user,
	}, nil
}

// idTokenClaims is the subset of Google ID token claims the client maps.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// DecodeIDToken reads the claims out of a Google ID token without verifying
// the signature — the token is handed to the backend, which verifies it;
// the client only needs the profile fields for display. Any parse failure
// is wrapped into a single descriptive error.
func DecodeIDToken(raw string) (*models.GoogleUserInfo, error) {
	claims := &idTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("decode google identity token: %w", err)
	}

	return &models.GoogleUserInfo{
		ID:         claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Photo:      claims.Picture,
	}, nil
}
