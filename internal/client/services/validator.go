// Package services contains the application services of the auth core: the
// token validator/refresher and the session manager that orchestrates
// login, registration, logout, biometric login, and Google sign-in.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/teachbridge/authkit/internal/client/httpapi"
	"github.com/teachbridge/authkit/internal/client/models"
	"github.com/teachbridge/authkit/internal/client/tokenstore"
	"github.com/teachbridge/authkit/internal/common"
	"github.com/teachbridge/authkit/internal/logging"
)

// DefaultRefreshThreshold is how close to expiry a token is considered
// "needs refresh" when the config does not say otherwise.
const DefaultRefreshThreshold = 5 * time.Minute

// TokenValidator checks token validity against the backend and exchanges
// the stored refresh token for a new pair when needed.
type TokenValidator struct {
	api       httpapi.Client
	store     *tokenstore.Store
	threshold time.Duration
	log       logging.Logger
	now       func() time.Time
}

// NewTokenValidator constructs a validator. api must be a bare client (no
// auth transport): validation and refresh are themselves unauthenticated
// calls and must never recurse into the 401 interceptor.
func NewTokenValidator(api httpapi.Client, store *tokenstore.Store, threshold time.Duration, log logging.Logger) *TokenValidator {
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	return &TokenValidator{api: api, store: store, threshold: threshold, log: log, now: time.Now}
}

// ValidateToken asks the backend whether token is valid. NeedsRefresh is
// true when the expiry is within the configured threshold of now,
// independent of IsValid. Any network or server error yields the
// conservative result {IsValid: false, NeedsRefresh: true}: a refresh
// attempt is cheaper than trusting a token we could not check.
func (v *TokenValidator) ValidateToken(ctx context.Context, token string) models.ValidationResult {
	resp, err := v.api.Validate(ctx, token)
	if err != nil {
		v.log.Warn(ctx, "token validation failed, forcing refresh", "error", err)
		return models.ValidationResult{IsValid: false, NeedsRefresh: true}
	}

	res := models.ValidationResult{IsValid: resp.IsValid}

	expiresAt, ok := time.Time{}, false
	if resp.ExpiresAt != nil {
		expiresAt, ok = *resp.ExpiresAt, true
	} else {
		// Fall back to the token's own exp claim when the server omits it.
		expiresAt, ok = tokenExpiry(token)
	}
	if ok {
		res.ExpiresAt = expiresAt
		res.NeedsRefresh = expiresAt.Sub(v.now()) <= v.threshold
	}
	return res
}

// RefreshToken exchanges the stored refresh token for a new pair and
// returns the new access token. With no stored refresh token it fails
// immediately without touching the network. Any failure clears all local
// auth state: a failed refresh always downgrades to "logged out", never to
// a half-refreshed session.
func (v *TokenValidator) RefreshToken(ctx context.Context) (string, error) {
	pair, err := v.store.GetTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("read stored tokens: %w", err)
	}
	if pair.RefreshToken == "" {
		return "", common.NewAuthError(common.KindTokenExpired, "No refresh token available")
	}

	resp, err := v.api.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		if clearErr := v.store.ClearAll(ctx); clearErr != nil {
			v.log.Error(ctx, "auth state clear after failed refresh failed", "error", clearErr)
		}
		return "", fmt.Errorf("refresh token: %w", err)
	}

	if err := v.store.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}
	return resp.AccessToken, nil
}

// tokenExpiry reads the exp claim out of a JWT without verifying it. The
// client never trusts the claim for authorization, only for scheduling the
// refresh.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
