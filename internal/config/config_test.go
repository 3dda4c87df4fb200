package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Zero(t, cfg.API.RateLimitRPS)
	require.Equal(t, 1, cfg.API.RateLimitBurst)
	require.Equal(t, "warn", cfg.Logger.Level)
	require.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "notepad", "token.json"), cfg.Storage.TokenFile)
}

func TestLoad_FileAndExpansion(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NOTES_HOST", "notes.example.com")
	p := writeFile(t, "client.yaml", `
api:
  base_url: https://${NOTES_HOST}/
  timeout: 3s
  rate_limit_rps: 2.5
  rate_limit_burst: 4
storage:
  passphrase: ${NOTEPAD_TEST_UNSET:-fallback}
logger:
  level: debug
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "https://notes.example.com/", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.InDelta(t, 2.5, cfg.API.RateLimitRPS, 1e-9)
	require.Equal(t, 4, cfg.API.RateLimitBurst)
	require.Equal(t, "fallback", cfg.Storage.Passphrase)
	require.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NOTEPAD_API_BASE_URL", "http://10.0.0.1:5000")
	t.Setenv("NOTEPAD_LOGGER_LEVEL", "error")
	p := writeFile(t, "client.yaml", "api:\n  base_url: http://ignored\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.1:5000", cfg.API.BaseURL)
	require.Equal(t, "error", cfg.Logger.Level)
}

func TestLoad_DefaultFileIsPickedUp(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notepad"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notepad", "config.yaml"), []byte("logger:\n  level: info\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestExpandEnvWithDefaults(t *testing.T) {
	t.Setenv("NOTEPAD_X", "x")
	require.Equal(t, "a-x-b", expandEnvWithDefaults("a-${NOTEPAD_X}-b"))
	require.Equal(t, "d", expandEnvWithDefaults("${NOTEPAD_UNSET_VAR:-d}"))
	require.Equal(t, "", expandEnvWithDefaults("${NOTEPAD_UNSET_VAR}"))
	require.Equal(t, "plain", expandEnvWithDefaults("plain"))
}
