package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SPRINTDECK_CONFIG", filepath.Join(dir, "missing.yaml"))
	for _, k := range []string{
		"SPRINTDECK_LOG_LEVEL", "SPRINTDECK_LOG_PRETTY", "SPRINTDECK_ENCRYPTION_KEY",
		"SPRINTDECK_SESSION_TIMEOUT", "SPRINTDECK_SWEEP_INTERVAL", "SPRINTDECK_STORE",
		"SPRINTDECK_SESSION", "SPRINTDECK_DOMAIN", "SPRINTDECK_API_MODE", "SPRINTDECK_PROXY_URL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, c.Vault.SessionTimeoutMinutes)
	assert.Equal(t, time.Hour, c.SessionTimeout())
	assert.Equal(t, 5*time.Minute, c.Vault.SweepInterval)
	assert.Equal(t, ModeDirect, c.Tracker.Mode)
	assert.Equal(t, ".sprintdeck", c.Store.Path)
	assert.Empty(t, c.Vault.Passphrase)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
vault:
  session_timeout_minutes: 15
  sweep_interval: 30s
tracker:
  domain: https://x.atlassian.net
  mode: proxy
  proxy_url: https://deck.example.com
`), 0600))
	t.Setenv("SPRINTDECK_CONFIG", path)
	t.Setenv("SPRINTDECK_SESSION_TIMEOUT", "20")
	t.Setenv("SPRINTDECK_ENCRYPTION_KEY", "from-env")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, 20, c.Vault.SessionTimeoutMinutes)
	assert.Equal(t, 30*time.Second, c.Vault.SweepInterval)
	assert.Equal(t, "from-env", c.Vault.Passphrase)
	assert.Equal(t, ModeProxy, c.Tracker.Mode)
	assert.Equal(t, "https://deck.example.com", c.Tracker.ProxyURL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"timeout not a number": {"SPRINTDECK_SESSION_TIMEOUT", "soon"},
		"zero timeout":         {"SPRINTDECK_SESSION_TIMEOUT", "0"},
		"bad interval":         {"SPRINTDECK_SWEEP_INTERVAL", "often"},
		"unknown mode":         {"SPRINTDECK_API_MODE", "carrier-pigeon"},
		"proxy without url":    {"SPRINTDECK_API_MODE", "proxy"},
		"relative domain":      {"SPRINTDECK_DOMAIN", "x.atlassian.net"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vault: [unclosed"), 0600))
	t.Setenv("SPRINTDECK_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateDomain(t *testing.T) {
	assert.NoError(t, ValidateDomain("https://x.atlassian.net"))
	assert.NoError(t, ValidateDomain("http://localhost:8080"))
	assert.Error(t, ValidateDomain("ftp://x"))
	assert.Error(t, ValidateDomain("not a url"))
	assert.Error(t, ValidateDomain(""))
}
