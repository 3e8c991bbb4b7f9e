package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8765", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Remote config
	assert.Equal(t, "http://localhost:8000", cfg.Remote.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "/check_blocked", cfg.Remote.CheckPath)
	assert.Equal(t, "/api/evaluate", cfg.Remote.AnalyzePath)

	// Guard config
	assert.Equal(t, DangerActionRedirect, cfg.Guard.DangerAction)
	assert.Equal(t, 100*time.Millisecond, cfg.Guard.OverlayDelay)
	assert.Equal(t, 80.0, cfg.Guard.SystemScoreThreshold)
	assert.True(t, cfg.Guard.Enrich)

	// Store config
	assert.Equal(t, BackendFile, cfg.Store.Backend)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	require.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "0.0.0.0",
		"REMOTE_BASE_URL":     "https://guard.example",
		"REMOTE_TIMEOUT":      "2s",
		"REMOTE_CHECK_PATH":   "/api/check",
		"GUARD_DANGER_ACTION": "close",
		"GUARD_OVERLAY_DELAY": "250ms",
		"EXTENSION_ORIGIN":    "chrome-extension://abcdef",
		"KV_BACKEND":          "redis",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_ENABLED":  "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "https://guard.example", cfg.Remote.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "/api/check", cfg.Remote.CheckPath)
	assert.Equal(t, DangerActionClose, cfg.Guard.DangerAction)
	assert.Equal(t, 250*time.Millisecond, cfg.Guard.OverlayDelay)
	assert.Equal(t, "chrome-extension://abcdef", cfg.Guard.ExtensionOrigin)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "danger action", key: "GUARD_DANGER_ACTION", val: "explode"},
		{name: "backend", key: "KV_BACKEND", val: "sqlite"},
		{name: "base url scheme", key: "REMOTE_BASE_URL", val: "ftp://guard.example"},
		{name: "base url relative", key: "REMOTE_BASE_URL", val: "/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			// LoadOrDefault falls back instead of failing
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestBlockPage(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8765/blocked", cfg.BlockPage())

	cfg.Guard.BlockPageURL = "chrome-extension://abc/blocked.html"
	assert.Equal(t, "chrome-extension://abc/blocked.html", cfg.BlockPage())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PHISHGUARD_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PHISHGUARD_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("PHISHGUARD_TEST_DOTENV"))

	// Missing files are not an error
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
