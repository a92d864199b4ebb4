package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

func defaultMelConfig() MelFilterBankConfig {
	return MelFilterBankConfig{
		SampleRate: 16000,
		NFFT:       512,
		NMels:      129,
		FMin:       0,
		FMax:       8000,
	}
}

func TestSlaneyRoundTrip(t *testing.T) {
	for f := 0.0; f <= 8000; f += 12.5 {
		back := MelToHzSlaney(HzToMelSlaney(f))
		require.InDelta(t, f, back, 1e-9*math.Max(1, f), "f=%g", f)
	}

	// branch boundary
	assert.Equal(t, 15.0, HzToMelSlaney(1000))
	assert.InDelta(t, 1000.0, MelToHzSlaney(15), 1e-12)
	assert.InDelta(t, 999.0, MelToHzSlaney(HzToMelSlaney(999)), 1e-9)
	assert.InDelta(t, 1001.0, MelToHzSlaney(HzToMelSlaney(1001)), 1e-9)
}

func TestSlaneyScaleShape(t *testing.T) {
	// linear region: 200/3 Hz per mel
	assert.InDelta(t, 3.0, HzToMelSlaney(200), 1e-12)
	// log region: 27 mels per factor of 6.4
	assert.InDelta(t, 15.0+27.0, HzToMelSlaney(6400), 1e-9)
	// negative frequencies clamp to 0
	assert.Equal(t, 0.0, HzToMelSlaney(-50))
	// monotonic
	prev := -1.0
	for f := 0.0; f <= 8000; f += 100 {
		m := HzToMelSlaney(f)
		require.Greater(t, m, prev)
		prev = m
	}
}

func TestMelFilterBank_Shape(t *testing.T) {
	fb, err := NewMelFilterBank(defaultMelConfig())
	require.NoError(t, err)

	assert.Equal(t, 129, fb.NumMels())
	assert.Equal(t, 257, fb.NumFreqs())
	assert.Len(t, fb.EdgeFrequencies(), 131)
	assert.Len(t, fb.EdgeBins(), 131)

	edges := fb.EdgeFrequencies()
	assert.InDelta(t, 0.0, edges[0], 1e-9)
	assert.InDelta(t, 8000.0, edges[130], 1e-6)
}

func TestMelFilterBank_NonNegativeAndDegenerateRowsEmpty(t *testing.T) {
	fb, err := NewMelFilterBank(defaultMelConfig())
	require.NoError(t, err)

	degenerate := map[int]bool{}
	for _, m := range fb.DegenerateBands() {
		degenerate[m] = true
	}
	// 129 bands over 257 bins: the narrow low bands must collapse
	require.NotEmpty(t, degenerate)
	require.Less(t, len(degenerate), fb.NumMels())

	for m := range fb.NumMels() {
		row := fb.Row(m)
		sum := 0.0
		for _, w := range row {
			require.GreaterOrEqual(t, w, 0.0, "band %d", m)
			sum += w
		}
		if degenerate[m] {
			assert.Zero(t, sum, "degenerate band %d", m)
		} else {
			assert.Greater(t, sum, 0.0, "band %d", m)
		}
	}
}

func TestMelFilterBank_TriangleAndSlaneyScale(t *testing.T) {
	cfg := defaultMelConfig()
	fb, err := NewMelFilterBank(cfg)
	require.NoError(t, err)

	bins := fb.EdgeBins()
	hz := fb.EdgeFrequencies()

	// take the top band, always wide enough to be a proper triangle
	m := cfg.NMels - 1
	left, center, right := bins[m], bins[m+1], bins[m+2]
	require.Less(t, left, center)
	require.Less(t, center, right)

	enorm := 2.0 / (hz[m+2] - hz[m])
	row := fb.Row(m)

	assert.InDelta(t, enorm, row[center], 1e-15, "peak is the Slaney scale")
	assert.Zero(t, row[left])
	for k := left; k < center; k++ {
		want := enorm * float64(k-left) / float64(center-left)
		assert.InDelta(t, want, row[k], 1e-15)
	}
	for k := center; k < right; k++ {
		want := enorm * float64(right-k) / float64(right-center)
		assert.InDelta(t, want, row[k], 1e-15)
	}
	for k := right; k < len(row); k++ {
		assert.Zero(t, row[k])
	}
}

func TestMelFilterBank_BinMapping(t *testing.T) {
	cfg := defaultMelConfig()
	fb, err := NewMelFilterBank(cfg)
	require.NoError(t, err)

	hz := fb.EdgeFrequencies()
	for i, b := range fb.EdgeBins() {
		want := int(math.Floor(float64(cfg.NFFT+1) * hz[i] / float64(cfg.SampleRate)))
		want = min(max(want, 0), cfg.NFFT/2)
		assert.Equal(t, want, b, "edge %d", i)
	}
}

func TestMelFilterBank_Apply(t *testing.T) {
	fb, err := NewMelFilterBank(MelFilterBankConfig{SampleRate: 16000, NFFT: 512, NMels: 40, FMin: 0, FMax: 8000})
	require.NoError(t, err)

	power := make([]float64, fb.NumFreqs())
	for i := range power {
		power[i] = 1
	}
	out := make([]float64, fb.NumMels())
	fb.Apply(power, out)

	for m := range out {
		sum := 0.0
		for _, w := range fb.Row(m) {
			sum += w
		}
		assert.InDelta(t, sum, out[m], 1e-12)
	}
}

func TestMelFilterBank_Deterministic(t *testing.T) {
	a, err := NewMelFilterBank(defaultMelConfig())
	require.NoError(t, err)
	b, err := NewMelFilterBank(defaultMelConfig())
	require.NoError(t, err)

	for m := range a.NumMels() {
		assert.Equal(t, a.Row(m), b.Row(m))
	}
}

func TestMelFilterBank_InvalidConfig(t *testing.T) {
	bad := []MelFilterBankConfig{
		{SampleRate: 0, NFFT: 512, NMels: 10, FMax: 8000},
		{SampleRate: 16000, NFFT: 0, NMels: 10, FMax: 8000},
		{SampleRate: 16000, NFFT: 512, NMels: 0, FMax: 8000},
		{SampleRate: 16000, NFFT: 512, NMels: 10, FMin: 4000, FMax: 4000},
		{SampleRate: 16000, NFFT: 512, NMels: 10, FMin: -1, FMax: 8000},
	}
	for _, cfg := range bad {
		_, err := NewMelFilterBank(cfg)
		assert.ErrorIs(t, err, common.ErrInvalidConfiguration, "%+v", cfg)
	}
}
