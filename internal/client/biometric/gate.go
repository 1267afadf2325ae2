package biometric

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teachbridge/authkit/internal/client/tokenstore"
	"github.com/teachbridge/authkit/internal/common"
	"github.com/teachbridge/authkit/internal/logging"
)

// AuthResult is the gate's outcome shape. On failure Error carries a message
// suitable for direct display; Cancelled distinguishes user dismissal from a
// genuine authentication failure.
type AuthResult struct {
	Success   bool
	Cancelled bool
	Error     string
}

// Gate orchestrates biometric login around an injected Platform and the
// secure token store.
//
// Invariant: the biometric key is never persisted without a preceding
// successful challenge, and its absence (or the disabled flag) makes
// biometric login fail closed.
type Gate struct {
	platform Platform
	store    *tokenstore.Store
	prompt   PromptConfig
	log      logging.Logger
	now      func() time.Time
}

func NewGate(platform Platform, store *tokenstore.Store, prompt PromptConfig, log logging.Logger) *Gate {
	if prompt.Cancel == "" {
		prompt.Cancel = "Cancel"
	}
	return &Gate{platform: platform, store: store, prompt: prompt, log: log, now: time.Now}
}

// IsAvailable reports whether biometric login can be offered: hardware
// present AND at least one biometric enrolled. Any error during the check
// is treated as "not available" — the gate fails closed, never open.
func (g *Gate) IsAvailable(ctx context.Context) bool {
	hw, err := g.platform.HasHardware(ctx)
	if err != nil {
		g.log.Warn(ctx, "biometric hardware check failed", "error", err)
		return false
	}
	if !hw {
		return false
	}

	enrolled, err := g.platform.HasEnrolled(ctx)
	if err != nil {
		g.log.Warn(ctx, "biometric enrollment check failed", "error", err)
		return false
	}
	return enrolled
}

// Authenticate presents the native challenge and translates its outcome.
func (g *Gate) Authenticate(ctx context.Context) AuthResult {
	res, err := g.platform.Prompt(ctx, g.prompt)
	if err != nil {
		g.log.Warn(ctx, "biometric prompt failed", "error", err)
		return AuthResult{Error: "Biometric authentication is unavailable right now"}
	}
	if res.OK {
		return AuthResult{Success: true}
	}
	if res.Cancelled {
		return AuthResult{Cancelled: true, Error: "Biometric authentication was cancelled"}
	}
	reason := res.Reason
	if reason == "" {
		reason = "Biometric authentication failed"
	}
	return AuthResult{Error: reason}
}

// Enable turns biometric login on for the given user. It requires
// availability and one successful challenge before anything is persisted;
// if the challenge fails, no partial state is left behind.
func (g *Gate) Enable(ctx context.Context, userID string) (bool, error) {
	if !g.IsAvailable(ctx) {
		return false, common.NewAuthError(common.KindBiometricNotAvailable,
			"Biometric authentication is not available on this device")
	}

	if res := g.Authenticate(ctx); !res.Success {
		return false, nil
	}

	key := deriveBiometricKey(userID, g.now())
	if err := g.store.SetBiometricKey(ctx, key); err != nil {
		return false, fmt.Errorf("store biometric key: %w", err)
	}
	if err := g.store.SetBiometricEnabled(ctx, userID, g.now()); err != nil {
		// Roll the key back so a half-enabled state cannot exist.
		if delErr := g.store.DeleteBiometricKey(ctx); delErr != nil {
			g.log.Error(ctx, "biometric key rollback failed", "error", delErr)
		}
		return false, fmt.Errorf("store biometric flag: %w", err)
	}

	g.log.Info(ctx, "biometric login enabled", "user_id", userID)
	return true, nil
}

// Disable removes the key and clears the flag regardless of prior state.
// Calling it twice in a row produces no error.
func (g *Gate) Disable(ctx context.Context) error {
	if err := g.store.DeleteBiometricKey(ctx); err != nil {
		return fmt.Errorf("disable biometric login: %w", err)
	}
	g.log.Info(ctx, "biometric login disabled")
	return nil
}

// AuthenticateForLogin runs the challenge used to unlock a stored session.
// It short-circuits when biometric login is not enabled, and reports a
// distinct error when the flag is set but the key is missing — that state
// indicates tampering or corruption and must not silently proceed.
func (g *Gate) AuthenticateForLogin(ctx context.Context) AuthResult {
	enabled, _, err := g.store.GetBiometricEnabled(ctx)
	if err != nil {
		g.log.Warn(ctx, "biometric flag read failed", "error", err)
		return AuthResult{Error: "Biometric authentication is not enabled"}
	}
	if !enabled {
		return AuthResult{Error: "Biometric authentication is not enabled"}
	}

	key, err := g.store.GetBiometricKey(ctx)
	if err != nil || key == "" {
		if err != nil {
			g.log.Warn(ctx, "biometric key read failed", "error", err)
		}
		return AuthResult{Error: "Biometric data is corrupted. Please re-enable biometric login"}
	}

	return g.Authenticate(ctx)
}

// deriveBiometricKey produces an opaque secret bound to the user id and the
// moment biometrics were enabled.
func deriveBiometricKey(userID string, at time.Time) string {
	return fmt.Sprintf("%s.%s.%d", uuid.NewString(), userID, at.Unix())
}
