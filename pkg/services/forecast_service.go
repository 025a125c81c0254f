package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/forecast"
	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/recommend"
	"github.com/canopywatch/canopy-engine/pkg/stats"
)

// ForecastBatch is the time-series batch result: per-record forecasts
// (with per-record failures captured in place), their aggregates, and the
// derived recommendations.
type ForecastBatch struct {
	Results         []models.RecordForecast   `json:"results"`
	Statistics      models.ForecastStatistics `json:"statistics"`
	Recommendations []string                  `json:"recommendations"`
}

// ForecastService runs the time-series path. Records in a batch are
// fitted independently and in parallel, bounded by the configured worker
// count.
type ForecastService struct {
	forecaster *forecast.Forecaster
	workers    int
	logger     *zap.Logger
}

// NewForecastService wires the service. workers <= 0 defers to the CPU
// count.
func NewForecastService(forecaster *forecast.Forecaster, workers int, logger *zap.Logger) *ForecastService {
	return &ForecastService{forecaster: forecaster, workers: workers, logger: logger}
}

// Config returns the active forecast configuration for informational
// endpoints.
func (s *ForecastService) Config() forecast.Config { return s.forecaster.Config() }

// ForecastRecords forecasts every record yearsAhead years out. An invalid
// horizon rejects the whole batch before any record is touched; per-record
// validation or fit failures land in that record's result slot only.
func (s *ForecastService) ForecastRecords(ctx context.Context, records []models.Record, yearsAhead int) (*ForecastBatch, error) {
	results, err := s.forecaster.ForecastBatch(ctx, records, yearsAhead, s.workers)
	if err != nil {
		return nil, err
	}

	statistics := stats.Forecast(results)
	s.logger.Debug("forecast batch complete",
		zap.Int("records", statistics.TotalRecords),
		zap.Int("failed", statistics.Failed),
		zap.Int("years_ahead", yearsAhead),
	)
	return &ForecastBatch{
		Results:         results,
		Statistics:      statistics,
		Recommendations: recommend.FromForecast(statistics),
	}, nil
}
