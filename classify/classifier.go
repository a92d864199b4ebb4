package classify

import (
	"context"

	"github.com/RyanBlaney/sonido-kws/features/extractors"
)

// Classifier runs keyword inference on one feature tensor and returns one
// probability per label.
type Classifier interface {
	Classify(ctx context.Context, features extractors.Tensor) ([]float32, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, features extractors.Tensor) ([]float32, error)

func (f ClassifierFunc) Classify(ctx context.Context, features extractors.Tensor) ([]float32, error) {
	return f(ctx, features)
}

// Prediction is the outcome of one detection.
type Prediction struct {
	Index         int       `json:"index" yaml:"index"`
	Label         string    `json:"label" yaml:"label"`
	Score         float32   `json:"score" yaml:"score"`
	Accepted      bool      `json:"accepted" yaml:"accepted"`
	Probabilities []float32 `json:"probabilities,omitempty" yaml:"probabilities,omitempty"`
}
