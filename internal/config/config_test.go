package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte("mode: debug\nport: 9090\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("ARENA_BOT_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.BotDelay)
	assert.Equal(t, time.Hour, cfg.FinishedRetention)
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "user", cfg.CredentialCookie)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
}

func TestLoad_ReleaseNeedsSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	_, err := Load()
	assert.ErrorContains(t, err, "secret is required")
}
