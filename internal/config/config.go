// Package config loads the application configuration from file, environment
// and defaults via viper. Environment variables use the LEDGEROCR_ prefix
// with underscores for nesting, e.g. LEDGEROCR_OCR_LANGUAGES.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Preprocess PreprocessConfig `mapstructure:"preprocess"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PreprocessConfig controls image preparation.
type PreprocessConfig struct {
	TargetWidth     int     `mapstructure:"target_width"`
	TargetHeight    int     `mapstructure:"target_height"`
	EnhanceContrast bool    `mapstructure:"enhance_contrast"`
	RemoveNoise     bool    `mapstructure:"remove_noise"`
	Sharpen         bool    `mapstructure:"sharpen"`
	ClipLimit       float64 `mapstructure:"clip_limit"`
	TileGrid        int     `mapstructure:"tile_grid"`
	BinarizeWindow  int     `mapstructure:"binarize_window"`
	BinarizeOffset  int     `mapstructure:"binarize_offset"`
}

// OCRConfig controls the recognition engine.
type OCRConfig struct {
	Languages   []string `mapstructure:"languages"`
	Whitelist   string   `mapstructure:"whitelist"`
	PageSegMode int      `mapstructure:"page_seg_mode"`
}

// PipelineConfig controls orchestration behavior.
type PipelineConfig struct {
	ReviewThreshold float64 `mapstructure:"review_threshold"`
	MaxRetries      int     `mapstructure:"max_retries"`
	Workers         int     `mapstructure:"workers"`
	OutputDir       string  `mapstructure:"output_dir"`
}

// DatabaseConfig selects and configures persistence. An empty DSN selects
// the in-memory store.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (optional), the environment
// and defaults, in descending precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEDGEROCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("preprocess.target_width", 1920)
	v.SetDefault("preprocess.target_height", 1080)
	v.SetDefault("preprocess.enhance_contrast", true)
	v.SetDefault("preprocess.remove_noise", true)
	v.SetDefault("preprocess.sharpen", true)
	v.SetDefault("preprocess.clip_limit", 3.0)
	v.SetDefault("preprocess.tile_grid", 8)
	v.SetDefault("preprocess.binarize_window", 11)
	v.SetDefault("preprocess.binarize_offset", 2)

	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("ocr.page_seg_mode", 6)

	v.SetDefault("pipeline.review_threshold", 0.85)
	v.SetDefault("pipeline.max_retries", 1)
	v.SetDefault("pipeline.workers", 0)
	v.SetDefault("pipeline.output_dir", "")

	// Keys need a default for AutomaticEnv to surface them in Unmarshal.
	v.SetDefault("database.dsn", "")
	v.SetDefault("ocr.whitelist", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Preprocess.TargetWidth <= 0 || c.Preprocess.TargetHeight <= 0 {
		return fmt.Errorf("preprocess target size must be positive, got %dx%d",
			c.Preprocess.TargetWidth, c.Preprocess.TargetHeight)
	}
	if c.Preprocess.BinarizeWindow < 3 {
		return fmt.Errorf("binarize window must be at least 3, got %d", c.Preprocess.BinarizeWindow)
	}
	if c.Pipeline.ReviewThreshold < 0 || c.Pipeline.ReviewThreshold > 1 {
		return fmt.Errorf("review threshold must be in [0,1], got %g", c.Pipeline.ReviewThreshold)
	}
	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.Pipeline.MaxRetries)
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Pipeline.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}
