package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

// Variant selects one of the two feature pipelines.
type Variant string

const (
	VariantLogMel  Variant = "logmel"
	VariantLogSTFT Variant = "logstft"
)

// ParseVariant accepts the variant names used on the command line.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "logmel", "log-mel", "mel":
		return VariantLogMel, nil
	case "logstft", "log-stft", "stft":
		return VariantLogSTFT, nil
	default:
		return "", common.InvalidConfigurationf("unknown feature variant %q", name)
	}
}

// LogMelConfig configures the log-mel spectrogram pipeline.
type LogMelConfig struct {
	SampleRate int     `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	NFFT       int     `json:"n_fft" yaml:"n_fft" mapstructure:"n_fft" validate:"gt=0"`
	HopLength  int     `json:"hop_length" yaml:"hop_length" mapstructure:"hop_length" validate:"gt=0"`
	NMels      int     `json:"n_mels" yaml:"n_mels" mapstructure:"n_mels" validate:"gt=0"`
	NumFrames  int     `json:"num_frames" yaml:"num_frames" mapstructure:"num_frames" validate:"gt=0"`
	FMin       float64 `json:"f_min" yaml:"f_min" mapstructure:"f_min" validate:"gte=0"`
	FMax       float64 `json:"f_max" yaml:"f_max" mapstructure:"f_max" validate:"gte=0"` // 0 means SampleRate/2
	TopDB      float64 `json:"top_db" yaml:"top_db" mapstructure:"top_db" validate:"gt=0"`
}

// LogSTFTConfig configures the raw log-magnitude STFT pipeline.
type LogSTFTConfig struct {
	SampleRate  int     `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	FrameLength int     `json:"frame_length" yaml:"frame_length" mapstructure:"frame_length" validate:"gt=0"`
	FrameStep   int     `json:"frame_step" yaml:"frame_step" mapstructure:"frame_step" validate:"gt=0"`
	NumBins     int     `json:"num_bins" yaml:"num_bins" mapstructure:"num_bins" validate:"gt=0"`
	NumFrames   int     `json:"num_frames" yaml:"num_frames" mapstructure:"num_frames" validate:"gt=0"`
	Epsilon     float64 `json:"epsilon" yaml:"epsilon" mapstructure:"epsilon" validate:"gt=0"`
}

// DefaultLogMelConfig returns the parameters the keyword model was trained with:
// 1 s at 16 kHz, 512-point FFT, hop 128, 129 Slaney mel bands, 124 frames, top_db 80.
func DefaultLogMelConfig() *LogMelConfig {
	return &LogMelConfig{
		SampleRate: 16000,
		NFFT:       512,
		HopLength:  128,
		NMels:      129,
		NumFrames:  124,
		FMin:       0,
		FMax:       8000,
		TopDB:      80,
	}
}

// DefaultLogSTFTConfig returns 255-sample frames at step 128, 124 frames of
// 128 bins, epsilon 1e-6.
func DefaultLogSTFTConfig() *LogSTFTConfig {
	return &LogSTFTConfig{
		SampleRate:  16000,
		FrameLength: 255,
		FrameStep:   128,
		NumBins:     128,
		NumFrames:   124,
		Epsilon:     1e-6,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// TargetLength is the conditioned waveform length (one second).
func (c *LogMelConfig) TargetLength() int {
	return c.SampleRate
}

// EffectiveFMax resolves a zero FMax to the Nyquist frequency.
func (c *LogMelConfig) EffectiveFMax() float64 {
	if c.FMax == 0 {
		return float64(c.SampleRate) / 2
	}
	return c.FMax
}

// NumFreqs is the number of non-negative frequency bins.
func (c *LogMelConfig) NumFreqs() int {
	return c.NFFT/2 + 1
}

// Validate checks field ranges and cross-field constraints.
func (c *LogMelConfig) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if !common.IsPowerOfTwo(c.NFFT) {
		return common.InvalidConfigurationf("n_fft %d must be a power of two", c.NFFT)
	}
	nyquist := float64(c.SampleRate) / 2
	fMax := c.EffectiveFMax()
	if fMax > nyquist {
		return common.InvalidConfigurationf("f_max %g exceeds nyquist %g", fMax, nyquist)
	}
	if c.FMin >= fMax {
		return common.InvalidConfigurationf("f_min %g must be below f_max %g", c.FMin, fMax)
	}
	return nil
}

// TargetLength is the conditioned waveform length (one second).
func (c *LogSTFTConfig) TargetLength() int {
	return c.SampleRate
}

// Validate checks field ranges and cross-field constraints.
func (c *LogSTFTConfig) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if maxBins := c.FrameLength/2 + 1; c.NumBins > maxBins {
		return common.InvalidConfigurationf("num_bins %d exceeds the %d non-negative bins of a %d-sample frame",
			c.NumBins, maxBins, c.FrameLength)
	}
	return nil
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		}
		return common.NewFeatureError(common.ErrCodeInvalidConfiguration, strings.Join(msgs, "; "), err)
	}
	return common.NewFeatureError(common.ErrCodeInvalidConfiguration, "config validation failed", err)
}
