// Package biometric implements the biometric gate: capability checks, the
// native challenge, and release of the locally stored biometric key. The
// native SDK itself is an injected Platform; this package owns the policy
// around it.
package biometric

import "context"

// PromptConfig configures the native biometric dialog.
type PromptConfig struct {
	Title    string
	Subtitle string
	Cancel   string
}

// PromptResult is the raw outcome of a native biometric challenge.
// Cancelled is true when the user dismissed the dialog or chose the
// fallback; Reason describes a genuine authentication failure (no match,
// lockout) when OK and Cancelled are both false.
type PromptResult struct {
	OK        bool
	Cancelled bool
	Reason    string
}

// Platform is the native biometric capability consumed by the gate.
// Implementations wrap the platform SDK; tests substitute a fake.
type Platform interface {
	// HasHardware reports whether the device has biometric hardware.
	HasHardware(ctx context.Context) (bool, error)

	// HasEnrolled reports whether at least one biometric is enrolled.
	HasEnrolled(ctx context.Context) (bool, error)

	// Prompt presents the native challenge and reports its outcome.
	// The error return is reserved for SDK-level faults.
	Prompt(ctx context.Context, cfg PromptConfig) (PromptResult, error)
}

// UnsupportedPlatform is the Platform for environments without a biometric
// SDK (e.g. the reference CLI on a desktop). Every capability check reports
// false, which keeps the gate fail-closed.
type UnsupportedPlatform struct{}

func (UnsupportedPlatform) HasHardware(ctx context.Context) (bool, error) { return false, nil }

func (UnsupportedPlatform) HasEnrolled(ctx context.Context) (bool, error) { return false, nil }

func (UnsupportedPlatform) Prompt(ctx context.Context, cfg PromptConfig) (PromptResult, error) {
	return PromptResult{Reason: "biometric hardware not present"}, nil
}
