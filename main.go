package main

import (
	"log"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/artifact"
	"github.com/canopywatch/canopy-engine/pkg/config"
	"github.com/canopywatch/canopy-engine/pkg/forecast"
	"github.com/canopywatch/canopy-engine/pkg/handlers"
	"github.com/canopywatch/canopy-engine/pkg/logging"
	"github.com/canopywatch/canopy-engine/pkg/middleware"
	"github.com/canopywatch/canopy-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// A missing or unreadable bundle is not fatal: the service starts in
	// degraded mode and the classification endpoints report it.
	bundle, err := artifact.LoadModelBundle(cfg.Artifacts.ModelBundlePath, logger)
	if err != nil {
		logger.Warn("model bundle unavailable, classification degraded",
			zap.String("path", cfg.Artifacts.ModelBundlePath),
			zap.Error(err),
		)
		bundle = nil
	}
	forecastCfg := artifact.LoadForecastConfig(cfg.Artifacts.ForecastConfigPath, logger)

	prediction, err := services.NewPredictionService(bundle, logger)
	if err != nil {
		logger.Fatal("Failed to construct prediction service", zap.Error(err))
	}
	forecasting := services.NewForecastService(forecast.New(forecastCfg), cfg.Forecast.Workers, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, prediction, logger).RegisterRoutes(mux)
	handlers.NewClassificationHandler(prediction, cfg.Upload.MaxBytes, logger).RegisterRoutes(mux)
	handlers.NewTimeseriesHandler(forecasting, logger).RegisterRoutes(mux)
	handlers.NewModelHandler(prediction, forecasting, logger).RegisterRoutes(mux)
	handlers.NewDataHandler(prediction, cfg.Upload.MaxBytes, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("starting canopy-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.Bool("model_loaded", bundle != nil),
	)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
