package forecast

import (
	"fmt"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/contract"
	"github.com/canopywatch/canopy-engine/pkg/jsonutil"
	"github.com/canopywatch/canopy-engine/pkg/models"
)

const (
	// HistoryStartYear..HistoryEndYear are the five observed NDVI years
	// every record must carry columns for.
	HistoryStartYear = 2020
	HistoryEndYear   = 2024
	// ForecastStartYear is the first predictable year.
	ForecastStartYear = 2025
	// MaxYearsAhead bounds the forecast horizon.
	MaxYearsAhead = 4
	// minUsablePoints is the smallest history an ARIMA fit is attempted on.
	minUsablePoints = 3
)

// HistoryColumns returns the canonical historical column names,
// NDVI_2020 through NDVI_2024.
func HistoryColumns() []string {
	cols := make([]string, 0, HistoryEndYear-HistoryStartYear+1)
	for year := HistoryStartYear; year <= HistoryEndYear; year++ {
		cols = append(cols, fmt.Sprintf("NDVI_%d", year))
	}
	return cols
}

// Series is one record's usable historical observations in chronological
// order. Null values have been dropped; every value is in [0,1].
type Series struct {
	Years  []int
	Values []float64
}

// Last returns the most recent usable observation.
func (s Series) Last() float64 { return s.Values[len(s.Values)-1] }

// SeriesFromRecord extracts and validates the NDVI history from a raw
// record. Column matching is case-insensitive and whitespace-trimmed. An
// absent column is MissingYear; a non-numeric value is InvalidDataType; a
// value outside [0,1] is OutOfRangeValue; a null value is skipped, and
// fewer than three usable points is InsufficientHistory. Nothing is ever
// substituted silently.
func SeriesFromRecord(rec models.Record) (Series, error) {
	byNormalized := make(map[string]any, len(rec))
	for k, v := range rec {
		key := contract.Normalize(k)
		if _, ok := byNormalized[key]; !ok {
			byNormalized[key] = v
		}
	}

	var s Series
	for year := HistoryStartYear; year <= HistoryEndYear; year++ {
		column := fmt.Sprintf("NDVI_%d", year)
		raw, ok := byNormalized[contract.Normalize(column)]
		if !ok {
			return Series{}, &apperrors.MissingYearError{Column: column}
		}
		if jsonutil.IsNull(raw) {
			continue
		}
		v, numeric := jsonutil.CoerceFloat(raw)
		if !numeric {
			return Series{}, &apperrors.InvalidDataTypeError{Columns: []string{column}}
		}
		if v < 0 || v > 1 {
			return Series{}, &apperrors.OutOfRangeValueError{Year: year, Value: v}
		}
		s.Years = append(s.Years, year)
		s.Values = append(s.Values, v)
	}

	if len(s.Values) < minUsablePoints {
		return Series{}, &apperrors.InsufficientHistoryError{Points: len(s.Values), Required: minUsablePoints}
	}
	return s, nil
}
