package extractors

import (
	"github.com/RyanBlaney/sonido-kws/features/config"
	"github.com/RyanBlaney/sonido-kws/logging"
)

// Extractor turns one utterance into a fixed-shape feature tensor.
// Implementations are immutable after construction and safe for
// concurrent use.
type Extractor interface {
	// Extract conditions pcm to one second and returns a fresh tensor.
	Extract(pcm []float32) Tensor
	// Shape is the shape of every tensor Extract returns.
	Shape() [4]int
	Variant() config.Variant
}

// ExtractorFactory creates extractors for a variant from a fixed pair of configs.
type ExtractorFactory struct {
	melConfig  *config.LogMelConfig
	stftConfig *config.LogSTFTConfig
	logger     logging.Logger
}

// NewExtractorFactory creates a factory. Nil configs fall back to the defaults.
func NewExtractorFactory(melConfig *config.LogMelConfig, stftConfig *config.LogSTFTConfig) *ExtractorFactory {
	if melConfig == nil {
		melConfig = config.DefaultLogMelConfig()
	}
	if stftConfig == nil {
		stftConfig = config.DefaultLogSTFTConfig()
	}
	return &ExtractorFactory{
		melConfig:  melConfig,
		stftConfig: stftConfig,
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor_factory",
		}),
	}
}

// CreateExtractor builds the extractor for the given variant.
func (f *ExtractorFactory) CreateExtractor(variant config.Variant) (Extractor, error) {
	logger := f.logger.WithFields(logging.Fields{
		"function": "CreateExtractor",
		"variant":  variant,
	})

	parsed, err := config.ParseVariant(string(variant))
	if err != nil {
		logger.Error(err, "Unknown feature variant")
		return nil, err
	}

	switch parsed {
	case config.VariantLogSTFT:
		logger.Debug("Creating log-STFT extractor")
		return NewLogSTFTExtractor(f.stftConfig)

	default:
		logger.Debug("Creating log-mel extractor")
		return NewLogMelExtractor(f.melConfig)
	}
}
