package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1920, cfg.Preprocess.TargetWidth)
	assert.Equal(t, 1080, cfg.Preprocess.TargetHeight)
	assert.True(t, cfg.Preprocess.EnhanceContrast)
	assert.Equal(t, 3.0, cfg.Preprocess.ClipLimit)
	assert.Equal(t, 8, cfg.Preprocess.TileGrid)
	assert.Equal(t, 11, cfg.Preprocess.BinarizeWindow)
	assert.Equal(t, 2, cfg.Preprocess.BinarizeOffset)

	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, 6, cfg.OCR.PageSegMode)

	assert.Equal(t, 0.85, cfg.Pipeline.ReviewThreshold)
	assert.Equal(t, 1, cfg.Pipeline.MaxRetries)

	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
preprocess:
  target_width: 2560
  binarize_window: 15
pipeline:
  review_threshold: 0.7
  max_retries: 3
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2560, cfg.Preprocess.TargetWidth)
	assert.Equal(t, 15, cfg.Preprocess.BinarizeWindow)
	assert.Equal(t, 0.7, cfg.Pipeline.ReviewThreshold)
	assert.Equal(t, 3, cfg.Pipeline.MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Unset keys still come from defaults.
	assert.Equal(t, 1080, cfg.Preprocess.TargetHeight)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LEDGEROCR_LOGGING_LEVEL", "warn")
	t.Setenv("LEDGEROCR_DATABASE_DSN", "postgres://ledger@localhost/ledgerocr")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "postgres://ledger@localhost/ledgerocr", cfg.Database.DSN)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero target width", func(c *Config) { c.Preprocess.TargetWidth = 0 }},
		{"negative target height", func(c *Config) { c.Preprocess.TargetHeight = -1 }},
		{"binarize window too small", func(c *Config) { c.Preprocess.BinarizeWindow = 2 }},
		{"review threshold above one", func(c *Config) { c.Pipeline.ReviewThreshold = 1.1 }},
		{"negative retries", func(c *Config) { c.Pipeline.MaxRetries = -1 }},
		{"negative workers", func(c *Config) { c.Pipeline.Workers = -2 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "logfmt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, valid.Validate())
}

func TestNewLogger(t *testing.T) {
	for _, lc := range []LoggingConfig{
		{Level: "debug", Format: "text"},
		{Level: "error", Format: "json"},
	} {
		logger := NewLogger(lc)
		require.NotNil(t, logger)
	}
}
