package predictor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/models"
)

// LabelCodec maps classifier output indices to class names. Classes are
// unique and ordered consistently with the fitted model.
type LabelCodec struct {
	Classes []string
}

// Validate checks that the codec is usable: non-empty and duplicate-free.
func (c LabelCodec) Validate() error {
	if len(c.Classes) == 0 {
		return fmt.Errorf("label codec has no classes")
	}
	seen := make(map[string]struct{}, len(c.Classes))
	for _, class := range c.Classes {
		if _, dup := seen[class]; dup {
			return fmt.Errorf("label codec class %q is duplicated", class)
		}
		seen[class] = struct{}{}
	}
	return nil
}

// Decode returns the class name for a model output index.
func (c LabelCodec) Decode(idx int) (string, error) {
	if idx < 0 || idx >= len(c.Classes) {
		return "", fmt.Errorf("%w: class index %d outside codec with %d classes", apperrors.ErrInternal, idx, len(c.Classes))
	}
	return c.Classes[idx], nil
}

// Predictor labels prepared feature rows. Class names are always
// recovered through the codec; raw indices never reach clients.
type Predictor struct {
	classifier Classifier
	codec      LabelCodec
	logger     *zap.Logger
}

// New wires a fitted classifier and its label codec.
func New(classifier Classifier, codec LabelCodec, logger *zap.Logger) (*Predictor, error) {
	if err := codec.Validate(); err != nil {
		return nil, err
	}
	if n := classifier.NumClasses(); n != len(codec.Classes) {
		return nil, fmt.Errorf("classifier has %d classes, codec has %d", n, len(codec.Classes))
	}
	return &Predictor{classifier: classifier, codec: codec, logger: logger}, nil
}

// Predict labels every row of the prepared matrix. When the classifier
// estimates probabilities they are reported per class; otherwise a
// one-hot distribution is synthesized at the predicted class with
// confidence fixed at 1.0.
func (p *Predictor) Predict(matrix [][]float64) ([]models.ClassificationPrediction, error) {
	proba, hasProba := p.classifier.(ProbabilityClassifier)
	if !hasProba {
		p.logger.Debug("classifier has no probability surface, using one-hot fallback")
	}

	results := make([]models.ClassificationPrediction, 0, len(matrix))
	for i, row := range matrix {
		idx, err := p.classifier.Predict(row)
		if err != nil {
			return nil, err
		}
		class, err := p.codec.Decode(idx)
		if err != nil {
			return nil, err
		}

		var probs []float64
		if hasProba {
			probs, err = proba.PredictProba(row)
			if err != nil {
				return nil, err
			}
			if len(probs) != len(p.codec.Classes) {
				return nil, fmt.Errorf("%w: %d probabilities for %d classes", apperrors.ErrInternal, len(probs), len(p.codec.Classes))
			}
		} else {
			probs = make([]float64, len(p.codec.Classes))
			probs[idx] = 1.0
		}

		byClass := make(map[string]float64, len(probs))
		confidence := 0.0
		for c, prob := range probs {
			byClass[p.codec.Classes[c]] = prob
			if prob > confidence {
				confidence = prob
			}
		}

		results = append(results, models.ClassificationPrediction{
			RowID:          i,
			PredictedClass: class,
			Confidence:     confidence,
			Probabilities:  byClass,
		})
	}
	return results, nil
}
