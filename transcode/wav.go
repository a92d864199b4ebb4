package transcode

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

// DecodeWAV reads a PCM WAV stream, down-mixes it to mono and scales the
// integer samples to [-1, 1) by bit depth.
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, common.NewFeatureError(common.ErrCodeDecoding, "not a valid wav file", nil)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, common.NewFeatureError(common.ErrCodeDecoding, "failed to read PCM buffer", err)
	}

	channels := buf.Format.NumChannels
	sampleRate := buf.Format.SampleRate
	if channels <= 0 || sampleRate <= 0 {
		return nil, common.NewFeatureError(common.ErrCodeDecoding,
			fmt.Sprintf("invalid wav format: %d channels at %d Hz", channels, sampleRate), nil)
	}

	bitDepth := buf.SourceBitDepth
	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit PCM is unsigned
		offset = 128
	}

	interleaved := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		interleaved[i] = (float64(s) - offset) / scale
	}

	pcm := common.DownmixInterleaved(interleaved, channels)
	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		BitDepth:   bitDepth,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sampleRate),
	}, nil
}
