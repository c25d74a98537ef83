package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30, cfg.Station.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_Defaults(t *testing.T) {
	tmp := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", tmp)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Station.URL)
	assert.Equal(t, 30, cfg.Station.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_File(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	content := `
station:
  url: http://nas:5000
  username: admin
  password: secret
  timeout: 10
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://nas:5000", cfg.Station.URL)
	assert.Equal(t, "admin", cfg.Station.Username)
	assert.Equal(t, "secret", cfg.Station.Password)
	assert.Equal(t, 10, cfg.Station.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	content := `
station:
  url: http://nas:5000
  username: admin
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("STATIONCTL_STATION_URL", "http://other:5001")
	t.Setenv("STATIONCTL_STATION_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://other:5001", cfg.Station.URL)
	assert.Equal(t, "admin", cfg.Station.Username)
	assert.Equal(t, "from-env", cfg.Station.Password)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("station: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
