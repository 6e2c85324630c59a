// Package config provides configuration management for the portfolio analyzer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"portfolio-sentinel/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Polygon  PolygonConfig  `mapstructure:"polygon"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Ranker   RankerConfig   `mapstructure:"ranker"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PolygonConfig holds market data gateway credentials and endpoints.
type PolygonConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AnalysisConfig holds portfolio analyzer thresholds.
type AnalysisConfig struct {
	HighDeltaThreshold   float64 `mapstructure:"high_delta_threshold"`
	ExpiryWindowDays     int     `mapstructure:"expiry_window_days"`
	LossThresholdPercent float64 `mapstructure:"loss_threshold_percent"`
}

// RankerConfig holds default screening parameters, applied when a tool
// call or CLI flag leaves them unset. The result cap is fixed at ten and
// not configurable.
type RankerConfig struct {
	TargetDelta float64 `mapstructure:"target_delta"`
	DTEMin      int     `mapstructure:"dte_min"`
	DTEMax      int     `mapstructure:"dte_max"`
	MinPremium  float64 `mapstructure:"min_premium"`
}

// StoreConfig holds context store configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/portfolio-sentinel"
	}
	return filepath.Join(home, ".config", "portfolio-sentinel")
}

// Default returns the default configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".config", "portfolio-sentinel")
	return &Config{
		Polygon: PolygonConfig{
			BaseURL:        "https://api.polygon.io",
			TimeoutSeconds: 15,
		},
		Analysis: AnalysisConfig{
			HighDeltaThreshold:   0.5,
			ExpiryWindowDays:     7,
			LossThresholdPercent: -10.0,
		},
		Ranker: RankerConfig{
			TargetDelta: 0.20,
			DTEMin:      20,
			DTEMax:      45,
			MinPremium:  0,
		},
		Store: StoreConfig{
			Path: filepath.Join(base, "sentinel.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       true,
			FilePath:   filepath.Join(base, "logs", "sentinel.log"),
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// A .env next to the config or in the working directory may carry the
	// Polygon API key; existing environment variables win.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults + env apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("POLYGON_API_KEY"); key != "" {
		cfg.Polygon.APIKey = key
	}
	if url := os.Getenv("POLYGON_BASE_URL"); url != "" {
		cfg.Polygon.BaseURL = url
	}
	if level := os.Getenv("SENTINEL_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("SENTINEL_DB_PATH"); path != "" {
		cfg.Store.Path = path
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Analysis.HighDeltaThreshold < 0 || c.Analysis.HighDeltaThreshold > 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "analysis.high_delta_threshold %.2f not in [0,1]", c.Analysis.HighDeltaThreshold)
	}
	if c.Analysis.ExpiryWindowDays < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "analysis.expiry_window_days %d negative", c.Analysis.ExpiryWindowDays)
	}
	if c.Ranker.TargetDelta < 0 || c.Ranker.TargetDelta > 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "ranker.target_delta %.2f not in [0,1]", c.Ranker.TargetDelta)
	}
	if c.Ranker.DTEMin > c.Ranker.DTEMax {
		return errors.Wrapf(errors.ErrConfigInvalid, "ranker.dte_min %d greater than dte_max %d", c.Ranker.DTEMin, c.Ranker.DTEMax)
	}
	if c.Polygon.TimeoutSeconds <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "polygon.timeout_seconds %d must be positive", c.Polygon.TimeoutSeconds)
	}
	return nil
}
