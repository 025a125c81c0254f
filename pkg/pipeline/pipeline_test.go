package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/contract"
	"github.com/canopywatch/canopy-engine/pkg/models"
)

func mustContract(t *testing.T, names ...string) *contract.FeatureContract {
	t.Helper()
	c, err := contract.New(names)
	require.NoError(t, err)
	return c
}

func TestPrepare_CanonicalColumnOrder(t *testing.T) {
	c := mustContract(t, "a", "b", "c")
	table := models.NewTable([]models.Record{
		{"c": 3.0, "a": 1.0, "b": 2.0},
	})

	matrix, err := Prepare(table, c, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}}, matrix)
}

func TestPrepare_CoercesStringsAndCasing(t *testing.T) {
	c := mustContract(t, "NDVI", "EVI")
	table := models.NewTable([]models.Record{
		{"ndvi": "0.5", "Evi": 0.25},
	})

	matrix, err := Prepare(table, c, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 0.25}}, matrix)
}

func TestPrepare_ContractMismatch(t *testing.T) {
	c := mustContract(t, "NDVI", "EVI")
	table := models.NewTable([]models.Record{
		{"NDVI": 0.5, "extra": 1.0},
	})

	_, err := Prepare(table, c, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrContractMismatch))

	var cm *apperrors.ContractMismatchError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, []string{"EVI"}, cm.MissingFeatures)
	assert.Equal(t, []string{"extra"}, cm.ExtraFeatures)
}

func TestPrepare_TypeErrorWinsOverNull(t *testing.T) {
	// One column holds both a null and a non-numeric value; the type
	// failure must be reported, not the null.
	c := mustContract(t, "NDVI")
	table := models.NewTable([]models.Record{
		{"NDVI": nil},
		{"NDVI": "woodland"},
	})

	_, err := Prepare(table, c, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDataType))

	var idt *apperrors.InvalidDataTypeError
	require.True(t, errors.As(err, &idt))
	assert.Equal(t, []string{"NDVI"}, idt.Columns)
}

func TestPrepare_MissingValues(t *testing.T) {
	c := mustContract(t, "NDVI", "EVI")
	table := models.NewTable([]models.Record{
		{"NDVI": 0.4, "EVI": nil},
		{"NDVI": 0.5, "EVI": 0.2},
	})

	_, err := Prepare(table, c, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingValues))

	var mv *apperrors.MissingValuesError
	require.True(t, errors.As(err, &mv))
	assert.Equal(t, []string{"EVI"}, mv.Columns)
}

func TestPrepare_SelectorAndScaler(t *testing.T) {
	c := mustContract(t, "a", "b", "c")
	table := models.NewTable([]models.Record{
		{"a": 1.0, "b": 2.0, "c": 3.0},
	})
	selector := &FeatureSelector{Indices: []int{0, 2}}
	scaler := &StandardScaler{Mean: []float64{1, 1}, Scale: []float64{1, 2}}

	matrix, err := Prepare(table, c, selector, scaler)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}}, matrix)
}

func TestFeatureSelector_OutOfRange(t *testing.T) {
	selector := &FeatureSelector{Indices: []int{5}}
	_, err := selector.Apply([][]float64{{1, 2}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInternal))
}

func TestStandardScaler_ZeroScalePassesThrough(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{2}, Scale: []float64{0}}
	out, err := scaler.Apply([][]float64{{5}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3}}, out)
}

func TestStandardScaler_DimensionMismatch(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}
	_, err := scaler.Apply([][]float64{{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInternal))
}
