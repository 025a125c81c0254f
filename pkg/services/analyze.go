package services

import (
	"math"

	"github.com/canopywatch/canopy-engine/pkg/jsonutil"
	"github.com/canopywatch/canopy-engine/pkg/models"
)

// NumericSummary describes one column's numeric values.
type NumericSummary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ContractValidation reports how a table lines up against the model's
// feature contract without running a prediction.
type ContractValidation struct {
	FeaturesValid      bool     `json:"features_valid"`
	TypesValid         bool     `json:"types_valid"`
	MissingFeatures    []string `json:"missing_features"`
	ExtraFeatures      []string `json:"extra_features"`
	InvalidColumns     []string `json:"invalid_columns"`
	ReadyForPrediction bool     `json:"ready_for_prediction"`
}

// DataAnalysis is the exploratory summary of an arbitrary table.
type DataAnalysis struct {
	Rows           int                       `json:"rows"`
	Columns        int                       `json:"columns"`
	ColumnNames    []string                  `json:"column_names"`
	MissingValues  map[string]int            `json:"missing_values"`
	NumericSummary map[string]NumericSummary `json:"numeric_summary"`
	Validation     *ContractValidation       `json:"validation,omitempty"`
}

// AnalyzeTable summarizes a table column by column: null counts and, for
// columns whose present values are all numeric, mean/std/min/max. When a
// model bundle is loaded the table is additionally validated against its
// contract.
func (s *PredictionService) AnalyzeTable(table models.Table) DataAnalysis {
	analysis := DataAnalysis{
		Rows:           len(table.Rows),
		Columns:        len(table.Columns),
		ColumnNames:    table.Columns,
		MissingValues:  make(map[string]int, len(table.Columns)),
		NumericSummary: make(map[string]NumericSummary, len(table.Columns)),
	}

	for _, col := range table.Columns {
		var values []float64
		missing := 0
		numeric := true
		for _, row := range table.Rows {
			raw, present := row[col]
			if !present || jsonutil.IsNull(raw) {
				missing++
				continue
			}
			v, ok := jsonutil.CoerceFloat(raw)
			if !ok {
				numeric = false
				continue
			}
			values = append(values, v)
		}
		analysis.MissingValues[col] = missing
		if numeric && len(values) > 0 {
			analysis.NumericSummary[col] = summarize(values)
		}
	}

	if s.Ready() {
		validation := s.ValidateTable(table)
		analysis.Validation = &validation
	}
	return analysis
}

// ValidateTable checks a table against the loaded contract: feature
// coverage and numeric coercibility, mirroring the preparation pipeline's
// first two gates without building a matrix. Callers must check Ready()
// first.
func (s *PredictionService) ValidateTable(table models.Table) ContractValidation {
	res := s.bundle.Contract().Resolve(table.Columns)
	validation := ContractValidation{
		FeaturesValid:   res.OK(),
		MissingFeatures: res.Missing,
		ExtraFeatures:   res.Extra,
		TypesValid:      true,
	}

	for _, supplied := range res.ByFeature {
		for _, row := range table.Rows {
			raw, present := row[supplied]
			if !present || jsonutil.IsNull(raw) {
				continue
			}
			if _, ok := jsonutil.CoerceFloat(raw); !ok {
				validation.InvalidColumns = append(validation.InvalidColumns, supplied)
				validation.TypesValid = false
				break
			}
		}
	}

	validation.ReadyForPrediction = validation.FeaturesValid && validation.TypesValid
	return validation
}

func summarize(values []float64) NumericSummary {
	sum := 0.0
	min, max := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(values))
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return NumericSummary{
		Mean: mean,
		Std:  math.Sqrt(sumSq / float64(len(values))),
		Min:  min,
		Max:  max,
	}
}
