package classify

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/features/extractors"
	"github.com/RyanBlaney/sonido-kws/logging"
)

// DefaultScoreThreshold is the minimum score for a keyword to be accepted.
const DefaultScoreThreshold float32 = 0.6

// Detector chains feature extraction, classification and label lookup.
type Detector struct {
	extractor  extractors.Extractor
	classifier Classifier
	labels     Labels
	threshold  float32
	logger     logging.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// ScoreThreshold sets the minimum score for Prediction.Accepted.
// Zero accepts every prediction.
func ScoreThreshold(threshold float32) Option {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// WithLogger replaces the detector's logger.
func WithLogger(logger logging.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a detector. Labels must be non-empty.
func NewDetector(extractor extractors.Extractor, classifier Classifier, labels Labels, opts ...Option) (*Detector, error) {
	if extractor == nil || classifier == nil {
		return nil, common.InvalidConfigurationf("detector needs an extractor and a classifier")
	}
	if len(labels) == 0 {
		return nil, common.InvalidConfigurationf("detector needs at least one label")
	}

	d := &Detector{
		extractor:  extractor,
		classifier: classifier,
		labels:     labels,
		threshold:  DefaultScoreThreshold,
		logger: logging.WithFields(logging.Fields{
			"component": "keyword_detector",
			"variant":   extractor.Variant(),
		}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.threshold < 0 || d.threshold > 1 {
		return nil, common.InvalidConfigurationf("score threshold %g outside [0, 1]", d.threshold)
	}

	return d, nil
}

// Labels returns the detector's labels.
func (d *Detector) Labels() Labels {
	return d.labels
}

// Detect extracts features from pcm, classifies them and picks the most
// probable label.
func (d *Detector) Detect(ctx context.Context, pcm []float32) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features := d.extractor.Extract(pcm)

	probs, err := d.classifier.Classify(ctx, features)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if len(probs) != len(d.labels) {
		return nil, common.NewFeatureError(common.ErrCodeShapeMismatch,
			fmt.Sprintf("classifier returned %d scores for %d labels", len(probs), len(d.labels)), nil)
	}

	idx, score := Argmax(probs)
	prediction := &Prediction{
		Index:         idx,
		Label:         d.labels.Lookup(idx),
		Score:         score,
		Accepted:      score >= d.threshold,
		Probabilities: probs,
	}

	d.logger.Debug("Keyword detected", logging.Fields{
		"label":    prediction.Label,
		"score":    prediction.Score,
		"accepted": prediction.Accepted,
	})

	return prediction, nil
}
