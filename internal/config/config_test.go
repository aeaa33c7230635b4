package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIRAGE_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, filepath.Join(dir, "logs.db"), cfg.DatabasePath)
	assert.Equal(t, filepath.Join(dir, "if_model.json"), cfg.Detection.ModelPath)
	assert.Equal(t, 60*time.Second, cfg.Detection.RateWindow)
	assert.Equal(t, 2*time.Second, cfg.Detection.EvalTimeout)
	assert.Empty(t, cfg.Alerts.URLs)
	assert.DirExists(t, filepath.Join(dir, "decoys"))
	assert.DirExists(t, filepath.Join(dir, "exports"))
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIRAGE_DATA_DIR", dir)
	t.Setenv("MIRAGE_ENV", "production")
	t.Setenv("MIRAGE_EVAL_TIMEOUT", "750ms")
	t.Setenv("MIRAGE_NOTIFY_URLS", "generic://example.com/hook, ,logger://")
	t.Setenv("MIRAGE_TRUSTED_PROXIES", "10.0.0.1")
	t.Setenv("MIRAGE_DECOY_SEED", "42")
	t.Setenv("MIRAGE_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Debug)
	assert.Equal(t, 750*time.Millisecond, cfg.Detection.EvalTimeout)
	assert.Equal(t, []string{"generic://example.com/hook", "logger://"}, cfg.Alerts.URLs)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.TrustedProxies)
	assert.Equal(t, uint64(42), cfg.Decoy.Seed)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("MIRAGE_DATA_DIR", t.TempDir())
	t.Setenv("MIRAGE_EVAL_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`http_port: "8080"
trusted_proxies: [10.1.1.1, 10.1.1.2]
notify_urls: ["logger://"]
decoy_refresh: ""
admin_username: ops
banner:
  server: Apache/2.4.41 (Ubuntu)
`), 0o600))
	t.Setenv("MIRAGE_DATA_DIR", dir)
	t.Setenv("MIRAGE_CONFIG_FILE", path)
	t.Setenv("MIRAGE_HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort, "env beats file")
	assert.Equal(t, []string{"10.1.1.1", "10.1.1.2"}, cfg.TrustedProxies)
	assert.Equal(t, []string{"logger://"}, cfg.Alerts.URLs)
	assert.Empty(t, cfg.Decoy.RefreshSchedule)
	assert.Equal(t, "ops", cfg.Admin.Username)
	assert.Equal(t, "Apache/2.4.41 (Ubuntu)", cfg.Banner.Server)
	assert.Empty(t, cfg.Banner.PoweredBy)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIRAGE_DATA_DIR", dir)

	t.Setenv("MIRAGE_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("trusted_proxies: {nope"), 0o600))
	t.Setenv("MIRAGE_CONFIG_FILE", bad)
	_, err = Load()
	assert.Error(t, err)
}
