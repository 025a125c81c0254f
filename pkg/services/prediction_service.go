// Package services orchestrates the prediction engine: preparation,
// inference, aggregation, and recommendation, behind transport-agnostic
// result objects. Single-record, batch, and file uploads all flow through
// the same code paths so behavior is identical regardless of entry point.
package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/artifact"
	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/pipeline"
	"github.com/canopywatch/canopy-engine/pkg/predictor"
	"github.com/canopywatch/canopy-engine/pkg/recommend"
	"github.com/canopywatch/canopy-engine/pkg/stats"
)

// ClassificationBatch is the batch prediction result: per-row labeled
// predictions, their aggregate statistics, and the derived
// recommendations.
type ClassificationBatch struct {
	Predictions     []models.ClassificationPrediction `json:"predictions"`
	Statistics      models.ClassificationStatistics   `json:"statistics"`
	Recommendations []string                          `json:"recommendations"`
}

// PredictionService runs the classification path over the immutable model
// bundle. A nil bundle (artifact absent at startup) leaves the service in
// a degraded mode where every call reports ErrModelNotLoaded.
type PredictionService struct {
	bundle *artifact.ModelBundle
	pred   *predictor.Predictor
	logger *zap.Logger
}

// NewPredictionService wires the service; bundle may be nil.
func NewPredictionService(bundle *artifact.ModelBundle, logger *zap.Logger) (*PredictionService, error) {
	s := &PredictionService{bundle: bundle, logger: logger}
	if bundle != nil {
		p, err := predictor.New(bundle.Classifier, bundle.Codec, logger)
		if err != nil {
			return nil, fmt.Errorf("construct predictor: %w", err)
		}
		s.pred = p
	}
	return s, nil
}

// Ready reports whether a model bundle is loaded.
func (s *PredictionService) Ready() bool { return s.bundle != nil }

// Bundle exposes the loaded bundle for informational endpoints; nil when
// the service is degraded.
func (s *PredictionService) Bundle() *artifact.ModelBundle { return s.bundle }

// PredictRecord labels a single record. The record flows through the same
// preparation pipeline as batches.
func (s *PredictionService) PredictRecord(rec models.Record) (*models.ClassificationPrediction, error) {
	batch, err := s.PredictTable(models.NewTable([]models.Record{rec}))
	if err != nil {
		return nil, err
	}
	return &batch.Predictions[0], nil
}

// PredictTable prepares the table against the bundle's contract, runs the
// classifier, and summarizes the batch. A contract-level failure aborts
// the whole batch: the matrix is prepared once for all rows.
func (s *PredictionService) PredictTable(table models.Table) (*ClassificationBatch, error) {
	if !s.Ready() {
		return nil, apperrors.ErrModelNotLoaded
	}

	matrix, err := pipeline.Prepare(table, s.bundle.Contract(), s.bundle.Selector, s.bundle.Scaler)
	if err != nil {
		return nil, err
	}
	predictions, err := s.pred.Predict(matrix)
	if err != nil {
		return nil, err
	}

	statistics := stats.Classification(predictions)
	s.logger.Debug("classification batch complete",
		zap.Int("rows", statistics.TotalRows),
		zap.Float64("avg_confidence", statistics.AverageConfidence),
	)
	return &ClassificationBatch{
		Predictions:     predictions,
		Statistics:      statistics,
		Recommendations: recommend.FromClassification(statistics),
	}, nil
}

// Template returns one zero-valued row covering every required feature,
// the starting point offered to operators for manual entry.
func (s *PredictionService) Template() (map[string]float64, error) {
	if !s.Ready() {
		return nil, apperrors.ErrModelNotLoaded
	}
	template := make(map[string]float64, len(s.bundle.RequiredFeatures))
	for _, feature := range s.bundle.RequiredFeatures {
		template[feature] = 0.0
	}
	return template, nil
}
