package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/logging"
)

// LoadClip reads an audio file as mono float32 samples at the decoder's
// target rate. WAV files and headerless 16-bit PCM (.pcm, .raw) are decoded
// in-process; anything else goes through ffmpeg.
func LoadClip(ctx context.Context, path string, config *DecoderConfig) ([]float32, error) {
	if config == nil {
		config = DefaultDecoderConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "clip_loader",
		"path":      path,
	})

	var (
		audio *AudioData
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		audio, err = decodeWAVFile(path)
	case ".pcm", ".raw":
		audio, err = decodePCM16File(path, config.RawSampleRate)
	default:
		audio, err = NewDecoder(config).DecodeFile(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	pcm := audio.PCM
	if audio.SampleRate != config.TargetSampleRate {
		logger.Debug("Resampling clip", logging.Fields{
			"from": audio.SampleRate,
			"to":   config.TargetSampleRate,
		})
		pcm, err = Resample(pcm, audio.SampleRate, config.TargetSampleRate)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if config.MaxDuration > 0 {
		if limit := int(config.MaxDuration.Seconds() * float64(config.TargetSampleRate)); len(pcm) > limit {
			pcm = pcm[:limit]
		}
	}

	return common.Float64ToFloat32(pcm), nil
}

func openAudioFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewFeatureError(common.ErrCodeDecoding, "failed to open audio file", err)
	}
	return f, nil
}

func decodeWAVFile(path string) (*AudioData, error) {
	f, err := openAudioFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	audio, err := DecodeWAV(f)
	if err != nil {
		return nil, err
	}
	audio.Source = path
	return audio, nil
}
