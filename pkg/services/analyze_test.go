package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/testhelpers"
)

func TestAnalyzeTable_ColumnSummaries(t *testing.T) {
	svc, err := NewPredictionService(nil, zap.NewNop())
	require.NoError(t, err)

	table := models.NewTable([]models.Record{
		{"NDVI": 0.2, "site": "north", "EVI": nil},
		{"NDVI": 0.4, "site": "south", "EVI": 0.3},
	})

	analysis := svc.AnalyzeTable(table)
	assert.Equal(t, 2, analysis.Rows)
	assert.Equal(t, 3, analysis.Columns)
	assert.Equal(t, 1, analysis.MissingValues["EVI"])
	assert.Equal(t, 0, analysis.MissingValues["NDVI"])

	ndvi, ok := analysis.NumericSummary["NDVI"]
	require.True(t, ok)
	assert.InDelta(t, 0.3, ndvi.Mean, 1e-9)
	assert.Equal(t, 0.2, ndvi.Min)
	assert.Equal(t, 0.4, ndvi.Max)

	_, ok = analysis.NumericSummary["site"]
	assert.False(t, ok, "text column must not get a numeric summary")

	assert.Nil(t, analysis.Validation, "no validation without a loaded model")
}

func TestAnalyzeTable_ValidationWhenReady(t *testing.T) {
	svc := newTestPredictionService(t)

	table := models.NewTable([]models.Record{
		{"NDVI": 0.5, "EVI": 0.2, "extra": "x"},
	})

	analysis := svc.AnalyzeTable(table)
	require.NotNil(t, analysis.Validation)
	assert.False(t, analysis.Validation.FeaturesValid)
	assert.Equal(t, []string{"Canopy_Cover"}, analysis.Validation.MissingFeatures)
	assert.Equal(t, []string{"extra"}, analysis.Validation.ExtraFeatures)
	assert.False(t, analysis.Validation.ReadyForPrediction)
}

func TestValidateTable_TypesAndReadiness(t *testing.T) {
	svc := newTestPredictionService(t)

	t.Run("clean table is ready", func(t *testing.T) {
		validation := svc.ValidateTable(models.NewTable([]models.Record{
			testhelpers.FeatureRecord(0.5, 0.2, 0.7),
		}))
		assert.True(t, validation.FeaturesValid)
		assert.True(t, validation.TypesValid)
		assert.True(t, validation.ReadyForPrediction)
	})

	t.Run("non-numeric column flagged", func(t *testing.T) {
		validation := svc.ValidateTable(models.NewTable([]models.Record{
			testhelpers.FeatureRecord("forest", 0.2, 0.7),
		}))
		assert.True(t, validation.FeaturesValid)
		assert.False(t, validation.TypesValid)
		assert.Equal(t, []string{"NDVI"}, validation.InvalidColumns)
		assert.False(t, validation.ReadyForPrediction)
	})
}
