package config

import (
	"encoding/json"
	"os"

	"github.com/teachbridge/authkit/internal/flagx"
	"github.com/teachbridge/authkit/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5m"
// or as integer nanoseconds. Absent fields leave the current Config value
// untouched.
type JsonConfig struct {
	APIBaseURL              string         `json:"api_base_url"`
	GoogleClientID          string         `json:"google_client_id"`
	TokenRefreshThreshold   timex.Duration `json:"token_refresh_threshold"`
	BiometricPromptTitle    string         `json:"biometric_prompt_title"`
	BiometricPromptSubtitle string         `json:"biometric_prompt_subtitle"`
	MaxLoginAttempts        int            `json:"max_login_attempts"`
	LockoutDuration         timex.Duration `json:"lockout_duration"`
	VaultPath               string         `json:"vault_path"`
	LogLevel                string         `json:"log_level"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. When no file is given the function is a no-op. Read or
// unmarshal errors panic; config problems should stop startup immediately.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.GoogleClientID != "" {
		cfg.GoogleClientID = jc.GoogleClientID
	}
	if jc.TokenRefreshThreshold.Duration != 0 {
		cfg.TokenRefreshThreshold = jc.TokenRefreshThreshold.Duration
	}
	if jc.BiometricPromptTitle != "" {
		cfg.BiometricPromptTitle = jc.BiometricPromptTitle
	}
	if jc.BiometricPromptSubtitle != "" {
		cfg.BiometricPromptSubtitle = jc.BiometricPromptSubtitle
	}
	if jc.MaxLoginAttempts != 0 {
		cfg.MaxLoginAttempts = jc.MaxLoginAttempts
	}
	if jc.LockoutDuration.Duration != 0 {
		cfg.LockoutDuration = jc.LockoutDuration.Duration
	}
	if jc.VaultPath != "" {
		cfg.VaultPath = jc.VaultPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
