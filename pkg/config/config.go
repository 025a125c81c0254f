package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for canopy-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5001"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Artifacts consumed at startup
	Artifacts ArtifactConfig `yaml:"artifacts"`

	// Forecasting runtime settings
	Forecast ForecastRuntimeConfig `yaml:"forecast"`

	// Upload limits for the file endpoints
	Upload UploadConfig `yaml:"upload"`
}

// ArtifactConfig locates the persisted model bundle and forecast
// configuration. Both are optional at startup: a missing bundle degrades
// classification, a missing forecast config falls back to defaults.
type ArtifactConfig struct {
	ModelBundlePath    string `yaml:"model_bundle_path" env:"MODEL_BUNDLE_PATH" env-default:"artifacts/forest_model.gob"`
	ForecastConfigPath string `yaml:"forecast_config_path" env:"FORECAST_CONFIG_PATH" env-default:"artifacts/forecast_config.yaml"`
}

// ForecastRuntimeConfig bounds batch forecasting concurrency.
type ForecastRuntimeConfig struct {
	// Workers caps the parallel per-record fits in a batch; 0 means one
	// worker per CPU.
	Workers int `yaml:"workers" env:"FORECAST_WORKERS" env-default:"0"`
}

// UploadConfig bounds the file prediction endpoints.
type UploadConfig struct {
	// MaxBytes is the largest accepted upload.
	MaxBytes int64 `yaml:"max_bytes" env:"UPLOAD_MAX_BYTES" env-default:"52428800"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on
// the returned Config. A missing config.yaml is fine; environment
// variables and defaults then apply alone.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Forecast.Workers < 0 {
		return nil, fmt.Errorf("forecast workers must be non-negative, got %d", cfg.Forecast.Workers)
	}
	if cfg.Upload.MaxBytes <= 0 {
		return nil, fmt.Errorf("upload max bytes must be positive, got %d", cfg.Upload.MaxBytes)
	}
	return cfg, nil
}
