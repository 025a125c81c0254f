package forecast

import (
	"errors"
	"reflect"
	"testing"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
)

func testSeries() Series {
	return Series{
		Years:  []int{2020, 2021, 2022, 2023, 2024},
		Values: []float64{0.30, 0.32, 0.31, 0.33, 0.34},
	}
}

func TestForecast_SingleYear(t *testing.T) {
	f := New(DefaultConfig())

	result, err := f.Forecast(testSeries(), 1)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if !result.Success {
		t.Fatal("expected success")
	}
	if len(result.Forecasts) != 1 {
		t.Fatalf("expected 1 forecast, got %d", len(result.Forecasts))
	}

	yf := result.Forecasts[0]
	if yf.Year != 2025 {
		t.Errorf("expected year 2025, got %d", yf.Year)
	}
	if yf.Prediction < 0 || yf.Prediction > 1 {
		t.Errorf("prediction %f outside [0,1]", yf.Prediction)
	}
	if yf.ConfidenceInterval.Lower > yf.ConfidenceInterval.Upper {
		t.Errorf("interval inverted: [%f, %f]", yf.ConfidenceInterval.Lower, yf.ConfidenceInterval.Upper)
	}
	if yf.HealthStatus == "" {
		t.Error("expected a health status")
	}

	// Single-year trend compares the two most recent observations:
	// 0.34 - 0.33 is inside the dead band.
	if result.Trend != "stable" {
		t.Errorf("expected stable trend, got %q", result.Trend)
	}
	if result.AveragePrediction != nil {
		t.Error("single-year forecast must not carry an average")
	}
}

func TestForecast_MultiYear(t *testing.T) {
	f := New(DefaultConfig())

	result, err := f.Forecast(testSeries(), 4)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if len(result.Forecasts) != 4 {
		t.Fatalf("expected 4 forecasts, got %d", len(result.Forecasts))
	}
	for i, yf := range result.Forecasts {
		if yf.Year != 2025+i {
			t.Errorf("forecast %d: expected year %d, got %d", i, 2025+i, yf.Year)
		}
		if yf.Prediction < 0 || yf.Prediction > 1 {
			t.Errorf("year %d prediction %f outside [0,1]", yf.Year, yf.Prediction)
		}
		if yf.ConfidenceInterval.Lower < 0 || yf.ConfidenceInterval.Upper > 1 {
			t.Errorf("year %d interval [%f, %f] outside [0,1]", yf.Year, yf.ConfidenceInterval.Lower, yf.ConfidenceInterval.Upper)
		}
	}

	if result.AveragePrediction == nil {
		t.Fatal("multi-year forecast must carry an average")
	}
	if result.OverallHealthStatus == "" {
		t.Error("multi-year forecast must carry an overall status")
	}
	switch result.Trend {
	case "progressive improvement", "progressive decline", "stable":
	default:
		t.Errorf("unexpected multi-year trend %q", result.Trend)
	}
}

func TestForecast_Deterministic(t *testing.T) {
	f := New(DefaultConfig())

	first, err := f.Forecast(testSeries(), 3)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	second, err := f.Forecast(testSeries(), 3)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same series and horizon must forecast identically")
	}
}

func TestForecast_IntervalsWidenWithHorizon(t *testing.T) {
	f := New(DefaultConfig())

	result, err := f.Forecast(testSeries(), 4)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	// Raw interval width grows with sqrt(horizon); clamping can only
	// narrow it, so compare the first two unclamped-in-practice years.
	w0 := result.Forecasts[0].ConfidenceInterval.Upper - result.Forecasts[0].ConfidenceInterval.Lower
	w1 := result.Forecasts[1].ConfidenceInterval.Upper - result.Forecasts[1].ConfidenceInterval.Lower
	if w0 <= 0 {
		t.Fatalf("expected a non-degenerate first interval, width %f", w0)
	}
	if w1 < w0 {
		t.Errorf("expected widening intervals, got %f then %f", w0, w1)
	}
}

func TestForecast_InvalidYearsAhead(t *testing.T) {
	f := New(DefaultConfig())

	for _, horizon := range []int{0, -1, 5} {
		if _, err := f.Forecast(testSeries(), horizon); !errors.Is(err, apperrors.ErrInvalidYearsAhead) {
			t.Errorf("horizon %d: expected ErrInvalidYearsAhead, got %v", horizon, err)
		}
	}
}

func TestForecast_ConstantSeriesFitsFlat(t *testing.T) {
	f := New(DefaultConfig())
	flat := Series{
		Years:  []int{2020, 2021, 2022, 2023, 2024},
		Values: []float64{0.25, 0.25, 0.25, 0.25, 0.25},
	}

	result, err := f.Forecast(flat, 2)
	if err != nil {
		t.Fatalf("constant series must fit flat, got %v", err)
	}
	for _, yf := range result.Forecasts {
		if yf.Prediction != 0.25 {
			t.Errorf("expected flat continuation at 0.25, got %f", yf.Prediction)
		}
		// Residual spread is zero, so the offline RMSE keeps intervals open.
		if yf.ConfidenceInterval.Upper == yf.ConfidenceInterval.Lower {
			t.Error("interval collapsed to a point")
		}
	}
}

func TestValidateYearsAhead(t *testing.T) {
	for horizon := 1; horizon <= MaxYearsAhead; horizon++ {
		if err := ValidateYearsAhead(horizon); err != nil {
			t.Errorf("horizon %d should be valid: %v", horizon, err)
		}
	}
	if err := ValidateYearsAhead(MaxYearsAhead + 1); err == nil {
		t.Error("expected rejection above the max horizon")
	}
}
