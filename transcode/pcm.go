package transcode

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

// DecodePCM16 reads headerless little-endian signed 16-bit mono samples,
// the format microphone capture produces. A trailing odd byte is dropped.
func DecodePCM16(r io.Reader, sampleRate int) (*AudioData, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidConfigurationf("raw pcm sample rate must be positive, got %d", sampleRate)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, common.NewFeatureError(common.ErrCodeDecoding, "failed to read raw pcm", err)
	}
	raw = raw[:len(raw)-len(raw)%2]

	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	pcm32 := common.PCM16ToFloat32(samples)
	pcm := make([]float64, len(pcm32))
	for i, s := range pcm32 {
		pcm[i] = float64(s)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		BitDepth:   16,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sampleRate),
	}, nil
}

func decodePCM16File(path string, sampleRate int) (*AudioData, error) {
	f, err := openAudioFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	audio, err := DecodePCM16(f, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("raw pcm: %w", err)
	}
	audio.Source = path
	return audio, nil
}
