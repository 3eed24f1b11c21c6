package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests use t.Setenv and cannot run in parallel.

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SHOBDO_API_URL", "SHOBDO_CONFIG_DIR", "SHOBDO_TIMEOUT", "SHOBDO_LOG_LEVEL",
		"SHOBDO_LOG_FORMAT", "SHOBDO_LOG_FILE", "SHOBDO_FORMAT", "SHOBDO_SCHEDULE", "SHOBDO_PASSWORD",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "0 9 * * *", cfg.Schedule)
	assert.Empty(t, cfg.ConfigDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOBDO_API_URL", "https://api.example.com")
	t.Setenv("SHOBDO_TIMEOUT", "5s")
	t.Setenv("SHOBDO_FORMAT", "table")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "table", cfg.Format)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHOBDO_API_URL=http://10.0.0.5:8000\nSHOBDO_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("SHOBDO_LOG_LEVEL", "warn")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.APIURL)
	// Real environment beats .env.
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOBDO_API_URL", "ftp://nope")
	t.Setenv("SHOBDO_FORMAT", "edn")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API URL")
	assert.Contains(t, err.Error(), "SHOBDO_FORMAT")
}

func TestLoad_BadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOBDO_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidateAPIURL(t *testing.T) {
	assert.NoError(t, ValidateAPIURL("http://localhost:8000"))
	assert.NoError(t, ValidateAPIURL("https://api.shobdo.example/"))
	assert.Error(t, ValidateAPIURL("localhost:8000"))
	assert.Error(t, ValidateAPIURL(""))
}
