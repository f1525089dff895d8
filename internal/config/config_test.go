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

	require.NotNil(t, cfg)
	assert.Equal(t, "auto", cfg.Format)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.EqualValues(t, 30720, cfg.Defaults.LoadBytes)
	assert.EqualValues(t, 1000, cfg.Defaults.PollIntervalMs)
	assert.False(t, cfg.Defaults.Paused)
	assert.False(t, cfg.Defaults.Debug)
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)
		t.Setenv("HOME", tmpDir)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "auto", cfg.Format)
		assert.EqualValues(t, 30720, cfg.Defaults.LoadBytes)
	})

	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()

		configContent := `
format: ndjson
quiet: true
defaults:
  url: "http://example.com/app.log"
  load_bytes: 4096
  poll_interval_ms: 250
  heartbeat: "30s"
`
		configPath := filepath.Join(tmpDir, "rtw.yaml")
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Quiet)
		assert.Equal(t, "http://example.com/app.log", cfg.Defaults.URL)
		assert.EqualValues(t, 4096, cfg.Defaults.LoadBytes)
		assert.EqualValues(t, 250, cfg.Defaults.PollIntervalMs)
		assert.Equal(t, "30s", cfg.Defaults.Heartbeat)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects non-positive load_bytes", func(t *testing.T) {
		cfg := Default()
		cfg.Defaults.LoadBytes = 0
		require.ErrorContains(t, cfg.Validate(), "load_bytes must be a positive integer")
	})

	t.Run("rejects non-positive poll_interval_ms", func(t *testing.T) {
		cfg := Default()
		cfg.Defaults.PollIntervalMs = -5
		require.ErrorContains(t, cfg.Validate(), "poll_interval_ms must be a positive integer")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		cfg := Default()
		cfg.Format = "xml"
		require.ErrorContains(t, cfg.Validate(), "format must be")
	})
}
