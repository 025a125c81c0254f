// Package pipeline turns a raw table into the model-ready numeric matrix
// a fitted classifier expects: contract resolution, numeric coercion,
// null rejection, canonical column ordering, then the optional feature
// selection and scaling transforms from the model bundle. Each step is a
// hard gate; the same path serves single-record, batch, and file inputs.
package pipeline

import (
	"math"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/contract"
	"github.com/canopywatch/canopy-engine/pkg/jsonutil"
	"github.com/canopywatch/canopy-engine/pkg/models"
)

// Prepare validates and transforms the table into a matrix whose column
// order and scale match what the classifier was fitted on. selector and
// scaler may be nil, in which case the matrix passes through unchanged.
func Prepare(table models.Table, c *contract.FeatureContract, selector *FeatureSelector, scaler *StandardScaler) ([][]float64, error) {
	res := c.Resolve(table.Columns)
	if !res.OK() {
		return nil, &apperrors.ContractMismatchError{
			MissingFeatures: res.Missing,
			ExtraFeatures:   res.Extra,
		}
	}

	features := c.Names()
	matrix := make([][]float64, len(table.Rows))
	for i := range matrix {
		matrix[i] = make([]float64, len(features))
	}

	// Coerce every resolved column first. Unparseable values and nulls
	// are distinct failures and the type check must win, so nulls are
	// carried as NaN through this pass and rejected in the next.
	var invalidCols, nullCols []string
	for j, feature := range features {
		supplied := res.ByFeature[feature]
		invalid, hasNull := false, false
		for i, row := range table.Rows {
			raw, ok := lookupColumn(row, supplied)
			if !ok || jsonutil.IsNull(raw) {
				hasNull = true
				matrix[i][j] = math.NaN()
				continue
			}
			v, numeric := jsonutil.CoerceFloat(raw)
			if !numeric {
				invalid = true
				continue
			}
			matrix[i][j] = v
		}
		if invalid {
			invalidCols = append(invalidCols, supplied)
		} else if hasNull {
			nullCols = append(nullCols, feature)
		}
	}
	if len(invalidCols) > 0 {
		return nil, &apperrors.InvalidDataTypeError{Columns: invalidCols}
	}
	if len(nullCols) > 0 {
		return nil, &apperrors.MissingValuesError{Columns: nullCols}
	}

	out := matrix
	if selector != nil {
		selected, err := selector.Apply(out)
		if err != nil {
			return nil, err
		}
		out = selected
	}
	if scaler != nil {
		scaled, err := scaler.Apply(out)
		if err != nil {
			return nil, err
		}
		out = scaled
	}
	return out, nil
}

// lookupColumn finds the row value for the supplied column name,
// tolerating per-row casing drift against the resolved column.
func lookupColumn(row models.Record, column string) (any, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	want := contract.Normalize(column)
	for k, v := range row {
		if contract.Normalize(k) == want {
			return v, true
		}
	}
	return nil, false
}
