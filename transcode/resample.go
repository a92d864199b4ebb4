package transcode

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

// Resample converts mono pcm from one sample rate to another. Equal rates
// return a copy of the input. The output holds round(len(pcm)*to/from)
// samples, including the filter tail released by Flush.
func Resample(pcm []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, common.InvalidConfigurationf("sample rates must be positive, got %d -> %d", from, to)
	}
	if from == to || len(pcm) == 0 {
		return append([]float64(nil), pcm...), nil
	}

	resampler, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	output, err := resampler.Process(pcm)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}
	tail, err := resampler.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush error: %w", err)
	}
	output = append(output, tail...)

	want := int(math.Round(float64(len(pcm)) * float64(to) / float64(from)))
	if len(output) >= want {
		return output[:want], nil
	}
	return append(output, make([]float64, want-len(output))...), nil
}
