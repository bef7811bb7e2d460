package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Notify.PollIntervalSec)
	assert.Equal(t, 10, cfg.Notify.PollLimit)
	assert.Equal(t, 100, cfg.Notify.CenterLimit)
	assert.Equal(t, 99, cfg.Notify.BadgeCap)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, cfg.Server.BaseURL, cfg.Server.WebURL)
}

func TestLoadConfigFileAndNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: https://tracker.example.com/
notify:
  poll_interval_sec: 0
  stagger_ms: -5
  poll_limit: 25
audio:
  enabled: false
  volume: 3
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tracker.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "https://tracker.example.com", cfg.Server.WebURL)
	assert.Equal(t, 10, cfg.Notify.PollIntervalSec)
	assert.Equal(t, 0, cfg.Notify.StaggerMs)
	assert.Equal(t, 25, cfg.Notify.PollLimit)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 0.25, cfg.Audio.Volume)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("TASKNOTIFY_NOTIFY_POLL_INTERVAL_SEC", "30")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Notify.PollIntervalSec)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Notify.PollLimit = 40
	cfg.Audio.Enabled = false

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.Notify.PollLimit)
	assert.False(t, loaded.Audio.Enabled)
}
