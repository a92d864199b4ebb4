package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/logging"
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bit_depth,omitempty"`
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate" yaml:"target_sample_rate" mapstructure:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration" yaml:"max_duration" mapstructure:"max_duration"`
	// Path to ffmpeg binary
	FFmpegPath string `json:"ffmpeg_path" yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	// Timeout for ffmpeg operations
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Sample rate of headerless .pcm/.raw input
	RawSampleRate int `json:"raw_sample_rate" yaml:"raw_sample_rate" mapstructure:"raw_sample_rate"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 16000,
		MaxDuration:      0, // No limit
		FFmpegPath:       "ffmpeg",
		Timeout:          30 * time.Second,
		RawSampleRate:    16000,
	}
}

// Decoder handles audio decoding using FFmpeg
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// Config returns the decoder configuration
func (d *Decoder) Config() DecoderConfig {
	return *d.config
}

// DecodeFile decodes any ffmpeg-readable file to mono float samples at the
// target sample rate.
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	args := append([]string{"-i", filename}, d.buildFFmpegArgs()...)
	args = append(args, "pipe:1")

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, common.NewFeatureError(common.ErrCodeDecoding, "ffmpeg decode failed", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, common.NewFeatureError(common.ErrCodeDecoding, "no audio samples decoded", nil)
	}

	duration := time.Duration(len(samples)) * time.Second / time.Duration(d.config.TargetSampleRate)
	logger.Debug("FFmpeg decode completed successfully", logging.Fields{
		"output_samples":     len(samples),
		"output_sample_rate": d.config.TargetSampleRate,
		"output_duration":    duration.Seconds(),
	})

	return &AudioData{
		PCM:        samples,
		SampleRate: d.config.TargetSampleRate,
		Channels:   1,
		BitDepth:   32,
		Duration:   duration,
		Source:     filename,
	}, nil
}

// buildFFmpegArgs builds the output arguments: raw mono float32 at the target rate
func (d *Decoder) buildFFmpegArgs() []string {
	args := []string{
		"-f", "f32le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	// Suppress ffmpeg output
	return append(args, "-v", "error")
}

// bytesToFloat64 converts raw little-endian float32 bytes to []float64
func bytesToFloat64(data []byte) []float64 {
	// Trim to multiple of 4 bytes
	data = data[:len(data)-len(data)%4]
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples
}
