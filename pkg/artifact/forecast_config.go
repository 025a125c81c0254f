package artifact

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/canopywatch/canopy-engine/pkg/forecast"
)

// LoadForecastConfig reads the persisted ARIMA order and accuracy metrics.
// An absent or unreadable artifact is a deliberate degraded mode, not a
// fatal error: the fixed default order (1,1,1) and default metrics are
// returned with a warning.
func LoadForecastConfig(path string, logger *zap.Logger) forecast.Config {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("forecast config not found, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return forecast.DefaultConfig()
	}

	var cfg forecast.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Warn("forecast config unreadable, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return forecast.DefaultConfig()
	}
	if err := validateForecastConfig(cfg); err != nil {
		logger.Warn("forecast config invalid, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return forecast.DefaultConfig()
	}

	logger.Info("forecast config loaded",
		zap.Int("p", cfg.Order.P),
		zap.Int("d", cfg.Order.D),
		zap.Int("q", cfg.Order.Q),
		zap.Float64("rmse", cfg.RMSE),
		zap.Float64("mae", cfg.MAE),
	)
	return cfg
}

func validateForecastConfig(cfg forecast.Config) error {
	if cfg.Order.P < 0 || cfg.Order.D < 0 || cfg.Order.Q < 0 {
		return fmt.Errorf("order terms must be non-negative, got (%d,%d,%d)", cfg.Order.P, cfg.Order.D, cfg.Order.Q)
	}
	if cfg.RMSE < 0 || cfg.MAE < 0 {
		return fmt.Errorf("accuracy metrics must be non-negative")
	}
	return nil
}
