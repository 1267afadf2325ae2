package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.TokenRefreshThreshold)
	assert.Equal(t, 5, cfg.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration)
	assert.Equal(t, "teachbridge.db", cfg.VaultPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.BiometricPromptTitle)
}

func TestParseEnv_OverridesSetVariables(t *testing.T) {
	t.Setenv("TEACHBRIDGE_API_BASE_URL", "https://api.example.com")
	t.Setenv("TEACHBRIDGE_TOKEN_REFRESH_THRESHOLD", "10m")
	t.Setenv("TEACHBRIDGE_MAX_LOGIN_ATTEMPTS", "3")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Minute, cfg.TokenRefreshThreshold)
	assert.Equal(t, 3, cfg.MaxLoginAttempts)

	// untouched variables keep their defaults
	assert.Equal(t, "teachbridge.db", cfg.VaultPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseFlags_Overrides(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = []string{"cmd", "-a", "https://flagged.example.com", "-t", "7", "-l", "debug"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "https://flagged.example.com", cfg.APIBaseURL)
	assert.Equal(t, 7*time.Minute, cfg.TokenRefreshThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "teachbridge.db", cfg.VaultPath)
}
