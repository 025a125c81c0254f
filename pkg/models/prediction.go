package models

// Record is one raw input row: feature name to raw value as decoded from
// JSON or a parsed file. Values may be strings, numbers, booleans, or nil;
// numeric coercion happens in the preparation pipeline, not here.
type Record = map[string]any

// Table is a column-oriented view over a list of records. Columns is the
// union of keys across all rows in first-seen order, so contract
// validation sees every supplied column even when rows are ragged.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable builds a Table from records, collecting the column union in
// insertion order.
func NewTable(rows []Record) Table {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, row := range rows {
		for col := range row {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			columns = append(columns, col)
		}
	}
	return Table{Columns: columns, Rows: rows}
}

// HealthStatus is the qualitative label derived from a bounded index
// value via fixed thresholds.
type HealthStatus string

const (
	StatusCritical  HealthStatus = "Critical"
	StatusPoor      HealthStatus = "Poor"
	StatusFair      HealthStatus = "Fair"
	StatusGood      HealthStatus = "Good"
	StatusExcellent HealthStatus = "Excellent"
)

// HealthStatusFor classifies a bounded index value. Bounds are strict
// upper bounds: 0.3 classifies as Good, 0.4 as Excellent.
func HealthStatusFor(v float64) HealthStatus {
	switch {
	case v < 0.1:
		return StatusCritical
	case v < 0.2:
		return StatusPoor
	case v < 0.3:
		return StatusFair
	case v < 0.4:
		return StatusGood
	default:
		return StatusExcellent
	}
}

// ClassificationPrediction is one labeled prediction with its full
// per-class probability surface. Confidence is the max probability.
type ClassificationPrediction struct {
	RowID          int                `json:"row_id"`
	PredictedClass string             `json:"predicted_class"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

// ConfidenceInterval bounds a point forecast. Both bounds are clamped
// into [0,1]; a degenerate raw interval may surface with Lower above the
// point prediction and is deliberately not reordered.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// YearForecast is the forecast for one future year.
type YearForecast struct {
	Year               int                `json:"year"`
	Prediction         float64            `json:"prediction"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	HealthStatus       HealthStatus       `json:"health_status"`
}

// RecordForecast is the per-record outcome in a forecast batch. A failed
// record carries Success=false and the error text; siblings are
// unaffected.
type RecordForecast struct {
	RowID               int            `json:"row_id"`
	Success             bool           `json:"success"`
	Error               string         `json:"error,omitempty"`
	Forecasts           []YearForecast `json:"forecasts,omitempty"`
	Trend               string         `json:"trend,omitempty"`
	AveragePrediction   *float64       `json:"average_prediction,omitempty"`
	OverallHealthStatus HealthStatus   `json:"overall_health_status,omitempty"`
}

// ClassificationStatistics aggregates a classification batch. Std is the
// population standard deviation.
type ClassificationStatistics struct {
	TotalRows         int            `json:"total_rows"`
	ClassDistribution map[string]int `json:"class_distribution"`
	AverageConfidence float64        `json:"average_confidence"`
	MinConfidence     float64        `json:"min_confidence"`
	MaxConfidence     float64        `json:"max_confidence"`
	StdConfidence     float64        `json:"std_confidence"`
}

// Aggregate holds mean/min/max/std over a set of point predictions.
type Aggregate struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Std  float64 `json:"std"`
}

// YearAggregate summarizes one forecast year across a batch: point
// prediction aggregates plus that year's health status counts.
type YearAggregate struct {
	Year int `json:"year"`
	Aggregate
	StatusDistribution map[string]int `json:"status_distribution"`
}

// ForecastStatistics aggregates a forecast batch: success/failure counts,
// the health status distribution over every (record, year) forecast,
// per-year aggregates in year order, and one overall aggregate across the
// whole horizon.
type ForecastStatistics struct {
	TotalRecords       int             `json:"total_records"`
	Successful         int             `json:"successful"`
	Failed             int             `json:"failed"`
	StatusDistribution map[string]int  `json:"status_distribution"`
	PerYear            []YearAggregate `json:"per_year"`
	Overall            Aggregate       `json:"overall"`
	Years              []int           `json:"years"`
}
