package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "geoattend.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)

	require.Equal(t, Duration(10*time.Second), cfg.Tracking.DebounceWindow)
	require.Equal(t, 50.0, cfg.Tracking.ImmediateThresholdM)
	require.Equal(t, 100.0, cfg.Tracking.PoorThresholdM)
	require.Equal(t, 3.0, cfg.Tracking.DegradationFactor)
	require.Equal(t, Duration(5*time.Minute), cfg.Tracking.HysteresisWindow)
	require.Equal(t, Duration(10*time.Minute), cfg.Tracking.StaleThreshold)
	require.Equal(t, Duration(2*time.Second), cfg.Tracking.PositionFetchTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEOATTEND_SERVER_PORT", "9090")
	t.Setenv("GEOATTEND_DB_PATH", "/var/lib/geoattend/data.db")
	t.Setenv("GEOATTEND_LOG_LEVEL", "debug")
	t.Setenv("GEOATTEND_DEBOUNCE_WINDOW", "30s")
	t.Setenv("GEOATTEND_HYSTERESIS_WINDOW", "8m")
	t.Setenv("GEOATTEND_STALE_THRESHOLD", "20m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/var/lib/geoattend/data.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, Duration(30*time.Second), cfg.Tracking.DebounceWindow)
	require.Equal(t, Duration(8*time.Minute), cfg.Tracking.HysteresisWindow)
	require.Equal(t, Duration(20*time.Minute), cfg.Tracking.StaleThreshold)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("GEOATTEND_DEBOUNCE_WINDOW", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7070
tracking:
  debounce_window: 15s
  immediate_threshold_m: 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("GEOATTEND_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, Duration(15*time.Second), cfg.Tracking.DebounceWindow)
	require.Equal(t, 40.0, cfg.Tracking.ImmediateThresholdM)
	// untouched keys keep their defaults
	require.Equal(t, 100.0, cfg.Tracking.PoorThresholdM)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644))
	t.Setenv("GEOATTEND_CONFIG_PATH", path)
	t.Setenv("GEOATTEND_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("GEOATTEND_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
}
