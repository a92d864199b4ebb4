package extractors

import (
	"fmt"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/algorithms/spectral"
	"github.com/RyanBlaney/sonido-kws/algorithms/windowing"
	"github.com/RyanBlaney/sonido-kws/features/config"
	"github.com/RyanBlaney/sonido-kws/logging"
)

// LogSTFTExtractor computes ln(|STFT| + eps) over uncentred frames of
// arbitrary length. There is no normalisation pass and no explicit silence
// value: samples past the waveform are read as zeros.
type LogSTFTExtractor struct {
	config config.LogSTFTConfig
	fft    *spectral.FFT
	framer *spectral.Framer
	logger logging.Logger
}

// NewLogSTFTExtractor validates cfg and prepares the window and FFT.
func NewLogSTFTExtractor(cfg *config.LogSTFTConfig) (*LogSTFTExtractor, error) {
	if cfg == nil {
		cfg = config.DefaultLogSTFTConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("log-stft extractor: %w", err)
	}

	fft, err := spectral.NewFFT(cfg.FrameLength)
	if err != nil {
		return nil, fmt.Errorf("log-stft extractor: %w", err)
	}

	framer, err := spectral.NewFramer(cfg.FrameLength, cfg.FrameStep, windowing.NewPeriodicHann(cfg.FrameLength))
	if err != nil {
		return nil, common.NewFeatureError(common.ErrCodeInvalidConfiguration, "log-stft extractor framer", err)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "log_stft_extractor",
	})
	logger.Debug("Log-STFT extractor ready", logging.Fields{
		"frame_length":    cfg.FrameLength,
		"frame_step":      cfg.FrameStep,
		"num_bins":        cfg.NumBins,
		"num_frames":      cfg.NumFrames,
		"possible_frames": spectral.PossibleFrames(cfg.TargetLength(), cfg.FrameLength, cfg.FrameStep),
	})

	return &LogSTFTExtractor{
		config: *cfg,
		fft:    fft,
		framer: framer,
		logger: logger,
	}, nil
}

// Variant implements Extractor.
func (e *LogSTFTExtractor) Variant() config.Variant {
	return config.VariantLogSTFT
}

// Shape implements Extractor.
func (e *LogSTFTExtractor) Shape() [4]int {
	return [4]int{1, e.config.NumFrames, e.config.NumBins, 1}
}

// Config returns a copy of the extractor configuration.
func (e *LogSTFTExtractor) Config() config.LogSTFTConfig {
	return e.config
}

// Extract implements Extractor.
func (e *LogSTFTExtractor) Extract(pcm []float32) Tensor {
	if len(pcm) != e.config.TargetLength() {
		e.logger.Debug("Conditioning waveform", logging.Fields{
			"input_length":  len(pcm),
			"target_length": e.config.TargetLength(),
		})
	}
	x := common.ConditionWaveform(pcm, e.config.TargetLength())

	frame := make([]float64, e.config.FrameLength)
	magnitude := make([]float64, e.config.NumBins)
	out := NewTensor(e.config.NumFrames, e.config.NumBins)

	for t := range e.config.NumFrames {
		e.framer.Frame(x, t, frame)
		spectrum := e.fft.ComputeInterleaved(frame)
		spectral.MagnitudeFromInterleaved(spectrum, magnitude)

		for k, mag := range magnitude {
			out.Set(t, k, float32(spectral.LogMagnitude(mag, e.config.Epsilon)))
		}
	}

	return out
}
