package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/testhelpers"
)

func newTestPredictionService(t *testing.T) *PredictionService {
	t.Helper()
	svc, err := NewPredictionService(testhelpers.Bundle(), zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestPredictionService_Degraded(t *testing.T) {
	svc, err := NewPredictionService(nil, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, svc.Ready())

	_, err = svc.PredictRecord(testhelpers.FeatureRecord(0.9, 0.1, 0.1))
	assert.True(t, errors.Is(err, apperrors.ErrModelNotLoaded))

	_, err = svc.Template()
	assert.True(t, errors.Is(err, apperrors.ErrModelNotLoaded))
}

func TestPredictionService_PredictRecord(t *testing.T) {
	svc := newTestPredictionService(t)

	pred, err := svc.PredictRecord(testhelpers.FeatureRecord(2.0, 0.1, 0.1))
	require.NoError(t, err)

	assert.Equal(t, "Excellent", pred.PredictedClass)
	assert.Greater(t, pred.Confidence, 0.5)
	assert.Len(t, pred.Probabilities, 3)
}

func TestPredictionService_PredictRecord_CaseInsensitiveColumns(t *testing.T) {
	svc := newTestPredictionService(t)

	pred, err := svc.PredictRecord(models.Record{
		"ndvi": "0.1", "evi": 2.0, "canopy_cover": 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fair", pred.PredictedClass)
}

func TestPredictionService_PredictTable(t *testing.T) {
	svc := newTestPredictionService(t)

	table := models.NewTable([]models.Record{
		testhelpers.FeatureRecord(2.0, 0.1, 0.1),
		testhelpers.FeatureRecord(0.1, 0.1, 2.0),
	})
	batch, err := svc.PredictTable(table)
	require.NoError(t, err)

	require.Len(t, batch.Predictions, 2)
	assert.Equal(t, "Excellent", batch.Predictions[0].PredictedClass)
	assert.Equal(t, "Critical", batch.Predictions[1].PredictedClass)
	assert.Equal(t, 0, batch.Predictions[0].RowID)
	assert.Equal(t, 1, batch.Predictions[1].RowID)

	assert.Equal(t, 2, batch.Statistics.TotalRows)
	assert.Equal(t, 1, batch.Statistics.ClassDistribution["Excellent"])
	assert.NotEmpty(t, batch.Recommendations)
}

func TestPredictionService_ContractMismatchAbortsBatch(t *testing.T) {
	svc := newTestPredictionService(t)

	table := models.NewTable([]models.Record{
		{"NDVI": 0.5, "EVI": 0.2}, // Canopy_Cover missing
	})
	_, err := svc.PredictTable(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrContractMismatch))
}

func TestPredictionService_Template(t *testing.T) {
	svc := newTestPredictionService(t)

	template, err := svc.Template()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"NDVI": 0, "EVI": 0, "Canopy_Cover": 0,
	}, template)
}
