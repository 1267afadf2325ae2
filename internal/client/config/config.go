// Package config loads runtime settings for the TeachBridge auth client.
// Sources are applied in order: defaults, JSON file, environment variables,
// command-line flags. Later sources take precedence over earlier ones.
package config

import "time"

// Config holds the recognized options of the auth core.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - GoogleClientID: OAuth client id for Google sign-in.
//   - TokenRefreshThreshold: how close to expiry a token is considered
//     "needs refresh".
//   - BiometricPromptTitle/Subtitle: text shown by the native challenge.
//   - MaxLoginAttempts: failed password attempts before a client-side
//     lockout; 0 disables the lockout.
//   - LockoutDuration: how long a lockout lasts.
//   - VaultPath: sqlite DSN of the local secure vault.
//   - LogLevel: slog level name (debug, info, warn, error).
type Config struct {
	APIBaseURL              string
	GoogleClientID          string
	TokenRefreshThreshold   time.Duration
	BiometricPromptTitle    string
	BiometricPromptSubtitle string
	MaxLoginAttempts        int
	LockoutDuration         time.Duration
	VaultPath               string
	LogLevel                string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.TokenRefreshThreshold = 5 * time.Minute
	c.BiometricPromptTitle = "Sign in to TeachBridge"
	c.BiometricPromptSubtitle = "Confirm your identity to continue"
	c.MaxLoginAttempts = 5
	c.LockoutDuration = 15 * time.Minute
	c.VaultPath = "teachbridge.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
