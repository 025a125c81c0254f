package artifact

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/pipeline"
	"github.com/canopywatch/canopy-engine/pkg/predictor"
)

func testBundle() *ModelBundle {
	return &ModelBundle{
		ModelName:        "forest_health_lr",
		RequiredFeatures: []string{"NDVI", "EVI", "Canopy_Cover"},
		SelectedFeatures: []string{"NDVI", "EVI"},
		Selector:         &pipeline.FeatureSelector{Indices: []int{0, 1}},
		Scaler: &pipeline.StandardScaler{
			Mean:  []float64{0.3, 0.2},
			Scale: []float64{0.1, 0.1},
		},
		Classifier: &predictor.LogisticRegression{
			Weights:    [][]float64{{1, 0}, {0, 1}},
			Intercepts: []float64{0, 0},
		},
		Codec: predictor.LabelCodec{Classes: []string{"Good", "Poor"}},
	}
}

func TestModelBundle_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.gob")
	require.NoError(t, testBundle().Save(path))

	loaded, err := LoadModelBundle(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "forest_health_lr", loaded.ModelName)
	assert.Equal(t, []string{"NDVI", "EVI", "Canopy_Cover"}, loaded.RequiredFeatures)
	assert.Equal(t, []string{"Good", "Poor"}, loaded.Codec.Classes)
	require.NotNil(t, loaded.Contract())
	assert.Equal(t, 3, loaded.Contract().Len())

	lr, ok := loaded.Classifier.(*predictor.LogisticRegression)
	require.True(t, ok, "classifier concrete type must survive gob")
	assert.Equal(t, 2, lr.NumClasses())
}

func TestLoadModelBundle_MissingFile(t *testing.T) {
	_, err := LoadModelBundle(filepath.Join(t.TempDir(), "absent.gob"), zap.NewNop())
	require.Error(t, err)
}

func TestModelBundle_Validate(t *testing.T) {
	t.Run("selected outside required", func(t *testing.T) {
		b := testBundle()
		b.SelectedFeatures = []string{"NDVI", "slope"}
		assert.Error(t, b.Validate())
	})

	t.Run("class count mismatch", func(t *testing.T) {
		b := testBundle()
		b.Codec.Classes = []string{"Good", "Poor", "Fair"}
		assert.Error(t, b.Validate())
	})

	t.Run("selector index count mismatch", func(t *testing.T) {
		b := testBundle()
		b.Selector.Indices = []int{0}
		assert.Error(t, b.Validate())
	})

	t.Run("no classifier", func(t *testing.T) {
		b := testBundle()
		b.Classifier = nil
		assert.Error(t, b.Validate())
	})

	t.Run("selected matching is case insensitive", func(t *testing.T) {
		b := testBundle()
		b.SelectedFeatures = []string{"ndvi", "EVI "}
		assert.NoError(t, b.Validate())
	})
}
