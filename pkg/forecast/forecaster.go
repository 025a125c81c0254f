// Package forecast fits an autoregressive integrated moving-average model
// to each record's five-year NDVI history and projects one to four future
// years with clamped confidence intervals, health statuses, and a
// qualitative trend. Every record gets an independently fitted model; the
// only shared state is the immutable hyperparameter configuration.
package forecast

import (
	"math"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/models"
)

// trendDelta is the dead band around zero inside which a series counts as
// stable, for both the historical and the predicted trend rule.
const trendDelta = 0.05

// z95 is the two-sided 95% normal quantile used for interval bounds.
const z95 = 1.959964

// Config carries the offline-fitted ARIMA order and its accuracy metrics.
type Config struct {
	Order Order   `yaml:"order" json:"order"`
	RMSE  float64 `yaml:"rmse" json:"rmse"`
	MAE   float64 `yaml:"mae" json:"mae"`
}

// DefaultConfig is the deliberate degraded mode used when no persisted
// forecast configuration exists.
func DefaultConfig() Config {
	return Config{
		Order: Order{P: 1, D: 1, Q: 1},
		RMSE:  0.05,
		MAE:   0.04,
	}
}

// Forecaster produces per-record forecasts. It is immutable after
// construction and safe for concurrent use.
type Forecaster struct {
	cfg Config
}

// New builds a Forecaster around an offline-fitted configuration.
func New(cfg Config) *Forecaster {
	return &Forecaster{cfg: cfg}
}

// Config returns the active forecast configuration.
func (f *Forecaster) Config() Config { return f.cfg }

// ValidateYearsAhead rejects horizons outside [1,4]. Every call path
// (single, batch, file) reports the same error.
func ValidateYearsAhead(yearsAhead int) error {
	if yearsAhead < 1 || yearsAhead > MaxYearsAhead {
		return apperrors.ErrInvalidYearsAhead
	}
	return nil
}

// Forecast fits the configured order to one validated series and projects
// yearsAhead future years in a single pass so the intervals stay
// internally consistent. Point forecasts and both interval bounds are
// clamped independently into [0,1]; degenerate raw intervals are
// surfaced as-is, never reordered.
func (f *Forecaster) Forecast(series Series, yearsAhead int) (models.RecordForecast, error) {
	if err := ValidateYearsAhead(yearsAhead); err != nil {
		return models.RecordForecast{}, err
	}

	fitted, err := fitARIMA(series.Values, f.cfg.Order)
	if err != nil {
		return models.RecordForecast{}, err
	}

	points := fitted.forecastSteps(yearsAhead)
	forecasts := make([]models.YearForecast, yearsAhead)
	for t, raw := range points {
		se := fitted.stepStdErr(t, f.cfg.RMSE)
		lower := clamp01(raw - z95*se)
		upper := clamp01(raw + z95*se)
		point := clamp01(raw)
		forecasts[t] = models.YearForecast{
			Year:               ForecastStartYear + t,
			Prediction:         point,
			ConfidenceInterval: models.ConfidenceInterval{Lower: lower, Upper: upper},
			HealthStatus:       models.HealthStatusFor(point),
		}
	}

	result := models.RecordForecast{
		Success:   true,
		Forecasts: forecasts,
		Trend:     trendFor(series, forecasts),
	}
	if yearsAhead > 1 {
		var sum float64
		for _, yf := range forecasts {
			sum += yf.Prediction
		}
		avg := sum / float64(len(forecasts))
		result.AveragePrediction = &avg
		result.OverallHealthStatus = models.HealthStatusFor(avg)
	}
	return result, nil
}

// trendFor applies the two deliberately different trend rules: a
// single-year request compares the two most recent historical points, a
// multi-year request compares the first and last predicted years.
func trendFor(series Series, forecasts []models.YearForecast) string {
	if len(forecasts) == 1 {
		n := len(series.Values)
		delta := series.Values[n-1] - series.Values[n-2]
		switch {
		case delta > trendDelta:
			return "improving"
		case delta < -trendDelta:
			return "declining"
		default:
			return "stable"
		}
	}

	delta := forecasts[len(forecasts)-1].Prediction - forecasts[0].Prediction
	switch {
	case delta > trendDelta:
		return "progressive improvement"
	case delta < -trendDelta:
		return "progressive decline"
	default:
		return "stable"
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
