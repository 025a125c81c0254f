// Package testhelpers builds the fixtures shared across package tests: a
// small fitted model bundle and NDVI history records.
package testhelpers

import (
	"fmt"

	"github.com/canopywatch/canopy-engine/pkg/artifact"
	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/pipeline"
	"github.com/canopywatch/canopy-engine/pkg/predictor"
)

// Bundle returns a fitted three-class logistic bundle over three
// features. Weights are hand-picked so the row's dominant feature decides
// the class: high NDVI lands Excellent, high EVI lands Fair, high
// Canopy_Cover lands Critical.
func Bundle() *artifact.ModelBundle {
	b := &artifact.ModelBundle{
		ModelName:        "forest_health_lr",
		RequiredFeatures: []string{"NDVI", "EVI", "Canopy_Cover"},
		SelectedFeatures: []string{"NDVI", "EVI", "Canopy_Cover"},
		Selector:         &pipeline.FeatureSelector{Indices: []int{0, 1, 2}},
		Scaler: &pipeline.StandardScaler{
			Mean:  []float64{0, 0, 0},
			Scale: []float64{1, 1, 1},
		},
		Classifier: &predictor.LogisticRegression{
			Weights: [][]float64{
				{5, 0, 0},
				{0, 5, 0},
				{0, 0, 5},
			},
			Intercepts: []float64{0, 0, 0},
		},
		Codec: predictor.LabelCodec{Classes: []string{"Excellent", "Fair", "Critical"}},
	}
	if err := b.Validate(); err != nil {
		panic(fmt.Sprintf("fixture bundle invalid: %v", err))
	}
	return b
}

// HistoryRecord builds a record with NDVI_2020 onward set to the given
// values, one column per value.
func HistoryRecord(values ...any) models.Record {
	rec := make(models.Record, len(values))
	for i, v := range values {
		rec[fmt.Sprintf("NDVI_%d", 2020+i)] = v
	}
	return rec
}

// FeatureRecord builds a record over the fixture bundle's three features.
func FeatureRecord(ndvi, evi, canopy any) models.Record {
	return models.Record{"NDVI": ndvi, "EVI": evi, "Canopy_Cover": canopy}
}
