package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/features/config"
	"github.com/RyanBlaney/sonido-kws/transcode"
)

// appConfig is the file/env configuration shared by all subcommands.
type appConfig struct {
	LogMel  config.LogMelConfig     `mapstructure:"log_mel" yaml:"log_mel"`
	LogSTFT config.LogSTFTConfig    `mapstructure:"log_stft" yaml:"log_stft"`
	Decoder transcode.DecoderConfig `mapstructure:"decoder" yaml:"decoder"`
	Workers int                     `mapstructure:"workers" yaml:"workers"`
}

// setDefaults registers every configuration key so that environment
// variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	mel := config.DefaultLogMelConfig()
	v.SetDefault("log_mel.sample_rate", mel.SampleRate)
	v.SetDefault("log_mel.n_fft", mel.NFFT)
	v.SetDefault("log_mel.hop_length", mel.HopLength)
	v.SetDefault("log_mel.n_mels", mel.NMels)
	v.SetDefault("log_mel.num_frames", mel.NumFrames)
	v.SetDefault("log_mel.f_min", mel.FMin)
	v.SetDefault("log_mel.f_max", mel.FMax)
	v.SetDefault("log_mel.top_db", mel.TopDB)

	stft := config.DefaultLogSTFTConfig()
	v.SetDefault("log_stft.sample_rate", stft.SampleRate)
	v.SetDefault("log_stft.frame_length", stft.FrameLength)
	v.SetDefault("log_stft.frame_step", stft.FrameStep)
	v.SetDefault("log_stft.num_bins", stft.NumBins)
	v.SetDefault("log_stft.num_frames", stft.NumFrames)
	v.SetDefault("log_stft.epsilon", stft.Epsilon)

	decoder := transcode.DefaultDecoderConfig()
	v.SetDefault("decoder.target_sample_rate", decoder.TargetSampleRate)
	v.SetDefault("decoder.max_duration", decoder.MaxDuration)
	v.SetDefault("decoder.ffmpeg_path", decoder.FFmpegPath)
	v.SetDefault("decoder.timeout", decoder.Timeout)
	v.SetDefault("decoder.raw_sample_rate", decoder.RawSampleRate)

	v.SetDefault("workers", 0)
}

// loadAppConfig decodes and validates the configuration
func loadAppConfig() (*appConfig, error) {
	cfg := &appConfig{
		LogMel:  *config.DefaultLogMelConfig(),
		LogSTFT: *config.DefaultLogSTFTConfig(),
		Decoder: *transcode.DefaultDecoderConfig(),
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := cfg.LogMel.Validate(); err != nil {
		return nil, fmt.Errorf("log_mel: %w", err)
	}
	if err := cfg.LogSTFT.Validate(); err != nil {
		return nil, fmt.Errorf("log_stft: %w", err)
	}
	if cfg.Decoder.TargetSampleRate <= 0 {
		return nil, common.InvalidConfigurationf("decoder target sample rate must be positive")
	}
	// clips are conditioned as if they were at the extractor rate
	if cfg.Decoder.TargetSampleRate != cfg.LogMel.SampleRate {
		return nil, common.InvalidConfigurationf("decoder target sample rate (%d) doesn't match log_mel sample rate (%d)",
			cfg.Decoder.TargetSampleRate, cfg.LogMel.SampleRate)
	}
	if cfg.Decoder.TargetSampleRate != cfg.LogSTFT.SampleRate {
		return nil, common.InvalidConfigurationf("decoder target sample rate (%d) doesn't match log_stft sample rate (%d)",
			cfg.Decoder.TargetSampleRate, cfg.LogSTFT.SampleRate)
	}
	if cfg.Workers < 0 {
		return nil, common.InvalidConfigurationf("workers cannot be negative")
	}

	return cfg, nil
}
