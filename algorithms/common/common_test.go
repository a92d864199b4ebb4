package common

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionWaveform(t *testing.T) {
	t.Run("pads short input", func(t *testing.T) {
		out := ConditionWaveform([]float32{0.5, -0.5}, 5)
		assert.Equal(t, []float32{0.5, -0.5, 0, 0, 0}, out)
	})

	t.Run("truncates long input", func(t *testing.T) {
		out := ConditionWaveform([]float32{1, 2, 3, 4}, 2)
		assert.Equal(t, []float32{1, 2}, out)
	})

	t.Run("nil input", func(t *testing.T) {
		out := ConditionWaveform(nil, 16000)
		require.Len(t, out, 16000)
		for _, v := range out {
			require.Zero(t, v)
		}
	})

	t.Run("does not alias input", func(t *testing.T) {
		in := []float32{1, 2, 3}
		out := ConditionWaveform(in, 3)
		out[0] = 9
		assert.Equal(t, float32(1), in[0])
	})
}

func TestPCM16ToFloat32(t *testing.T) {
	out := PCM16ToFloat32([]int16{0, 16384, -32768, 32767})
	assert.Equal(t, float32(0), out[0])
	assert.Equal(t, float32(0.5), out[1])
	assert.Equal(t, float32(-1), out[2])
	assert.InDelta(t, 1.0, out[3], 1e-4)
}

func TestDownmixInterleaved(t *testing.T) {
	stereo := []float64{1, 0, 0.5, 0.5, -1, 1}
	assert.Equal(t, []float64{0.5, 0.5, 0}, DownmixInterleaved(stereo, 2))
	assert.Equal(t, []float64{1, 2}, DownmixInterleaved([]float64{1, 2}, 1))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{-80, 0, -40})
	assert.Equal(t, -80.0, s.Min)
	assert.Equal(t, 0.0, s.Max)
	assert.InDelta(t, -40.0, s.Mean, 1e-12)
	assert.InDelta(t, 40.0, s.StdDev, 1e-12)
	assert.Equal(t, 3, s.Count)

	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 256, 512, 1024} {
		assert.True(t, IsPowerOfTwo(n), n)
	}
	for _, n := range []int{0, -4, 3, 255, 1000} {
		assert.False(t, IsPowerOfTwo(n), n)
	}
	assert.Equal(t, 9, Log2(512))
	assert.Equal(t, 0, Log2(1))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1e-10))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
}

func TestFeatureError(t *testing.T) {
	cause := errors.New("bad header")
	err := NewFeatureError(ErrCodeDecoding, "wav decode failed", cause)

	assert.Equal(t, "wav decode failed: bad header", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrDecoding)
	assert.NotErrorIs(t, err, ErrInvalidConfiguration)

	wrapped := fmt.Errorf("load clip: %w", InvalidConfigurationf("nFft %d is not a power of two", 500))
	assert.ErrorIs(t, wrapped, ErrInvalidConfiguration)
	assert.Contains(t, wrapped.Error(), "nFft 500")
}
