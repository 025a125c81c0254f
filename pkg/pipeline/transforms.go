package pipeline

import (
	"fmt"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
)

// FeatureSelector reduces a matrix in contract order down to the columns
// the classifier was actually fitted on. Indices are positions in the
// contract's canonical order.
type FeatureSelector struct {
	Indices []int
}

// Apply selects the configured columns from every row.
func (s *FeatureSelector) Apply(matrix [][]float64) ([][]float64, error) {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		selected := make([]float64, len(s.Indices))
		for j, idx := range s.Indices {
			if idx < 0 || idx >= len(row) {
				return nil, fmt.Errorf("%w: selector index %d out of range for %d columns", apperrors.ErrInternal, idx, len(row))
			}
			selected[j] = row[idx]
		}
		out[i] = selected
	}
	return out, nil
}

// StandardScaler applies the offline-fitted standardization
// (x - mean) / scale per column. Scale entries of zero are treated as 1
// the way scikit-learn persists constant columns.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Apply standardizes every row in place-order, returning a new matrix.
func (s *StandardScaler) Apply(matrix [][]float64) ([][]float64, error) {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		if len(row) != len(s.Mean) || len(row) != len(s.Scale) {
			return nil, fmt.Errorf("%w: scaler fitted on %d columns, got %d", apperrors.ErrInternal, len(s.Mean), len(row))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scale := s.Scale[j]
			if scale == 0 {
				scale = 1
			}
			scaled[j] = (v - s.Mean[j]) / scale
		}
		out[i] = scaled
	}
	return out, nil
}
