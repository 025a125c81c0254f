// Package predictor runs a fitted multi-class model over a prepared
// matrix and recovers class names through the label codec. Models that
// cannot estimate probabilities degrade to a one-hot distribution around
// the predicted class rather than failing.
package predictor

import (
	"fmt"
	"math"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
)

// Classifier is a fitted multi-class model. Predict returns the class
// index for one prepared feature row.
type Classifier interface {
	Predict(row []float64) (int, error)
	NumClasses() int
}

// ProbabilityClassifier is implemented by classifiers that expose a
// per-class probability surface.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(row []float64) ([]float64, error)
}

// LogisticRegression is a multinomial logistic model: one weight vector
// and intercept per class, probabilities via softmax.
type LogisticRegression struct {
	Weights    [][]float64 // classes x features
	Intercepts []float64
}

func (m *LogisticRegression) NumClasses() int { return len(m.Weights) }

func (m *LogisticRegression) Predict(row []float64) (int, error) {
	probs, err := m.PredictProba(row)
	if err != nil {
		return 0, err
	}
	return argmax(probs), nil
}

func (m *LogisticRegression) PredictProba(row []float64) ([]float64, error) {
	if len(m.Weights) == 0 || len(m.Weights) != len(m.Intercepts) {
		return nil, fmt.Errorf("%w: logistic weights and intercepts disagree", apperrors.ErrInternal)
	}
	scores := make([]float64, len(m.Weights))
	for c, w := range m.Weights {
		if len(w) != len(row) {
			return nil, fmt.Errorf("%w: classifier fitted on %d features, got %d", apperrors.ErrInternal, len(w), len(row))
		}
		s := m.Intercepts[c]
		for j, x := range row {
			s += w[j] * x
		}
		scores[c] = s
	}
	return softmax(scores), nil
}

// NearestCentroid assigns the class whose centroid is closest in
// Euclidean distance. It deliberately has no probability surface, which
// exercises the predictor's one-hot fallback.
type NearestCentroid struct {
	Centroids [][]float64 // classes x features
}

func (m *NearestCentroid) NumClasses() int { return len(m.Centroids) }

func (m *NearestCentroid) Predict(row []float64) (int, error) {
	if len(m.Centroids) == 0 {
		return 0, fmt.Errorf("%w: nearest centroid model has no centroids", apperrors.ErrInternal)
	}
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range m.Centroids {
		if len(centroid) != len(row) {
			return 0, fmt.Errorf("%w: classifier fitted on %d features, got %d", apperrors.ErrInternal, len(centroid), len(row))
		}
		var dist float64
		for j, x := range row {
			d := x - centroid[j]
			dist += d * d
		}
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, nil
}

func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
