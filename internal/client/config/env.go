package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is a DTO for the environment layer. All variables carry the
// TEACHBRIDGE_ prefix; unset variables leave the current Config value
// untouched.
type envConfig struct {
	APIBaseURL              string        `env:"API_BASE_URL"`
	GoogleClientID          string        `env:"GOOGLE_CLIENT_ID"`
	TokenRefreshThreshold   time.Duration `env:"TOKEN_REFRESH_THRESHOLD"`
	BiometricPromptTitle    string        `env:"BIOMETRIC_PROMPT_TITLE"`
	BiometricPromptSubtitle string        `env:"BIOMETRIC_PROMPT_SUBTITLE"`
	MaxLoginAttempts        int           `env:"MAX_LOGIN_ATTEMPTS"`
	LockoutDuration         time.Duration `env:"LOCKOUT_DURATION"`
	VaultPath               string        `env:"VAULT_PATH"`
	LogLevel                string        `env:"LOG_LEVEL"`
}

func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: "TEACHBRIDGE_"}); err != nil {
		panic(err)
	}

	if ec.APIBaseURL != "" {
		cfg.APIBaseURL = ec.APIBaseURL
	}
	if ec.GoogleClientID != "" {
		cfg.GoogleClientID = ec.GoogleClientID
	}
	if ec.TokenRefreshThreshold != 0 {
		cfg.TokenRefreshThreshold = ec.TokenRefreshThreshold
	}
	if ec.BiometricPromptTitle != "" {
		cfg.BiometricPromptTitle = ec.BiometricPromptTitle
	}
	if ec.BiometricPromptSubtitle != "" {
		cfg.BiometricPromptSubtitle = ec.BiometricPromptSubtitle
	}
	if ec.MaxLoginAttempts != 0 {
		cfg.MaxLoginAttempts = ec.MaxLoginAttempts
	}
	if ec.LockoutDuration != 0 {
		cfg.LockoutDuration = ec.LockoutDuration
	}
	if ec.VaultPath != "" {
		cfg.VaultPath = ec.VaultPath
	}
	if ec.LogLevel != "" {
		cfg.LogLevel = ec.LogLevel
	}
}
