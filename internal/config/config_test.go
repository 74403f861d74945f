package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RETAILPULSE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data/superstore.csv", cfg.Ingest.DatasetPath)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.False(t, cfg.Upload.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RETAILPULSE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("RETAILPULSE_SERVER_PORT", "9090")
	t.Setenv("RETAILPULSE_INGEST_DATASET_PATH", "/srv/sales.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/sales.csv", cfg.Ingest.DatasetPath)
}

func TestLoad_FileConfigMergedUnderEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
server:
  port: 3000
ingest:
  dataset_path: data/file.csv
  renames:
    umsatz: sales
  date_formats:
    - "2006-01-02"
`), 0644))

	t.Setenv("RETAILPULSE_CONFIG", configPath)
	t.Setenv("RETAILPULSE_SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "data/file.csv", cfg.Ingest.DatasetPath)
	assert.Equal(t, "sales", cfg.Ingest.Renames["umsatz"])
	assert.Equal(t, []string{"2006-01-02"}, cfg.Ingest.DateFormats)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("RETAILPULSE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("RETAILPULSE_SERVER_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestResolvePaths(t *testing.T) {
	cfg := &Config{}
	cfg.Paths.DataDir = "data"
	cfg.Paths.ChartsDir = "/var/charts"

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.DataDir))
	assert.Equal(t, "/var/charts", paths.ChartsDir)
	assert.Equal(t, filepath.Join(paths.DataDir, "x.csv"), paths.GetDataPath("x.csv"))
}

func TestDatasetPath(t *testing.T) {
	cfg := &Config{}
	cfg.Ingest.DatasetPath = "data/superstore.csv"

	paths := &Paths{BaseDir: "/srv/app"}
	assert.Equal(t, "/srv/app/data/superstore.csv", cfg.DatasetPath(paths))

	cfg.Ingest.DatasetPath = "/abs/sales.csv"
	assert.Equal(t, "/abs/sales.csv", cfg.DatasetPath(paths))
}
