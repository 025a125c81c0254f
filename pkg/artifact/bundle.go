// Package artifact loads the persisted model bundle and forecast
// configuration the serving process consumes. Both are read once at
// startup and treated as immutable for the process lifetime; reload means
// restart. A missing forecast configuration degrades to fixed defaults; a
// missing model bundle leaves classification unavailable without taking
// the process down.
package artifact

import (
	"encoding/gob"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/contract"
	"github.com/canopywatch/canopy-engine/pkg/pipeline"
	"github.com/canopywatch/canopy-engine/pkg/predictor"
)

func init() {
	gob.Register(&predictor.LogisticRegression{})
	gob.Register(&predictor.NearestCentroid{})
}

// ModelBundle is the fitted classification artifact: the feature
// contract, the optional selection and scaling transforms, the classifier
// itself, and the label codec. Owned exclusively by the serving process
// and never mutated after load.
type ModelBundle struct {
	ModelName        string
	RequiredFeatures []string
	SelectedFeatures []string
	Selector         *pipeline.FeatureSelector
	Scaler           *pipeline.StandardScaler
	Classifier       predictor.Classifier
	Codec            predictor.LabelCodec

	featureContract *contract.FeatureContract
}

// Contract returns the bundle's feature contract, built at load time.
func (b *ModelBundle) Contract() *contract.FeatureContract { return b.featureContract }

// Validate enforces the bundle invariants: a well-formed contract,
// selected features a subset of required features, a usable codec, and a
// classifier whose class count matches the codec.
func (b *ModelBundle) Validate() error {
	c, err := contract.New(b.RequiredFeatures)
	if err != nil {
		return fmt.Errorf("model bundle contract: %w", err)
	}
	b.featureContract = c

	required := make(map[string]struct{}, len(b.RequiredFeatures))
	for _, name := range b.RequiredFeatures {
		required[contract.Normalize(name)] = struct{}{}
	}
	for _, name := range b.SelectedFeatures {
		if _, ok := required[contract.Normalize(name)]; !ok {
			return fmt.Errorf("selected feature %q is not a required feature", name)
		}
	}

	if err := b.Codec.Validate(); err != nil {
		return fmt.Errorf("model bundle codec: %w", err)
	}
	if b.Classifier == nil {
		return fmt.Errorf("model bundle has no classifier")
	}
	if n := b.Classifier.NumClasses(); n != len(b.Codec.Classes) {
		return fmt.Errorf("classifier has %d classes, codec has %d", n, len(b.Codec.Classes))
	}
	if b.Selector != nil && len(b.Selector.Indices) != len(b.SelectedFeatures) {
		return fmt.Errorf("selector has %d indices for %d selected features", len(b.Selector.Indices), len(b.SelectedFeatures))
	}
	return nil
}

// Save persists the bundle with gob. Used by offline training tooling and
// test fixtures; the serving process only reads.
func (b *ModelBundle) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model bundle: %w", err)
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(b); err != nil {
		return fmt.Errorf("encode model bundle: %w", err)
	}
	return nil
}

// LoadModelBundle reads and validates the persisted bundle.
func LoadModelBundle(path string, logger *zap.Logger) (*ModelBundle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model bundle: %w", err)
	}
	defer file.Close()

	var bundle ModelBundle
	if err := gob.NewDecoder(file).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decode model bundle: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	logger.Info("model bundle loaded",
		zap.String("model", bundle.ModelName),
		zap.Int("required_features", len(bundle.RequiredFeatures)),
		zap.Int("selected_features", len(bundle.SelectedFeatures)),
		zap.String("classes", strings.Join(bundle.Codec.Classes, ",")),
	)
	return &bundle, nil
}
