package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-kws/algorithms/windowing"
)

func TestCenterPad(t *testing.T) {
	out := CenterPad([]float32{1, 2, 3}, 2)
	assert.Equal(t, []float32{0, 0, 1, 2, 3, 0, 0}, out)
	assert.Equal(t, []float32{1}, CenterPad([]float32{1}, -3))
}

func TestPossibleFrames(t *testing.T) {
	// one second at 16 kHz, centre padded by 256 on each side
	assert.Equal(t, 126, PossibleFrames(16000+512, 512, 128))
	// unpadded 255-sample frames
	assert.Equal(t, 124, PossibleFrames(16000, 255, 128))
	assert.Equal(t, 1, PossibleFrames(512, 512, 128))
	assert.Equal(t, 0, PossibleFrames(511, 512, 128))
	assert.Equal(t, 0, PossibleFrames(1000, 512, 0))
}

func TestNewFramer_Validation(t *testing.T) {
	_, err := NewFramer(0, 128, nil)
	assert.Error(t, err)
	_, err = NewFramer(255, 0, nil)
	assert.Error(t, err)
	_, err = NewFramer(255, 128, windowing.NewPeriodicHann(256))
	assert.Error(t, err)

	f, err := NewFramer(255, 128, windowing.NewPeriodicHann(255))
	require.NoError(t, err)
	assert.Equal(t, 255, f.FrameLength())
	assert.Equal(t, 128, f.Hop())
}

func TestFramer_ZeroFillsOutOfRange(t *testing.T) {
	f, err := NewFramer(4, 2, nil)
	require.NoError(t, err)

	signal := []float32{1, 2, 3, 4, 5}
	dst := make([]float64, 4)

	f.Frame(signal, 0, dst)
	assert.Equal(t, []float64{1, 2, 3, 4}, dst)

	f.Frame(signal, 1, dst)
	assert.Equal(t, []float64{3, 4, 5, 0}, dst)

	f.Frame(signal, 5, dst)
	assert.Equal(t, []float64{0, 0, 0, 0}, dst)
}

func TestFramer_AppliesWindow(t *testing.T) {
	w := windowing.NewPeriodicHann(8)
	f, err := NewFramer(8, 4, w)
	require.NoError(t, err)

	signal := make([]float32, 16)
	for i := range signal {
		signal[i] = 1
	}
	dst := make([]float64, 8)
	f.Frame(signal, 1, dst)
	assert.InDeltaSlice(t, w.Coefficients(), dst, 1e-12)
}

type rampWindow []float64

func (w rampWindow) Coefficients() []float64 {
	return append([]float64(nil), w...)
}

func (w rampWindow) Size() int {
	return len(w)
}

func TestFramer_UsesWindowSnapshot(t *testing.T) {
	w := rampWindow{0, 0.5, 1, 2}
	f, err := NewFramer(4, 4, w)
	require.NoError(t, err)

	w[3] = 100
	dst := make([]float64, 4)
	f.Frame([]float32{2, 2, 2, 2}, 0, dst)
	assert.Equal(t, []float64{0, 1, 2, 4}, dst)

	_, err = NewFramer(3, 1, rampWindow{1, 1})
	assert.Error(t, err)
}

func TestPowerHelpers(t *testing.T) {
	power := make([]float64, 2)
	PowerFromComplex([]float64{3, 1}, []float64{4, 0}, power)
	assert.Equal(t, []float64{25, 1}, power)

	mag := make([]float64, 2)
	MagnitudeFromInterleaved([]float64{3, 4, 0, -2, 9, 9}, mag)
	assert.Equal(t, []float64{5, 2}, mag)
}

func TestReferencePower(t *testing.T) {
	assert.Equal(t, 42.0, ReferencePower(42))
	for _, bad := range []float64{0, -1, math.Inf(1), math.Inf(-1), math.NaN()} {
		assert.Equal(t, EnergyFloor, ReferencePower(bad))
	}
}

func TestPowerToDB(t *testing.T) {
	assert.Equal(t, 0.0, PowerToDB(5, 5, 80))
	assert.InDelta(t, -10.0, PowerToDB(1, 10, 80), 1e-12)
	assert.Equal(t, -80.0, PowerToDB(EnergyFloor, 1e3, 80))
	assert.Equal(t, 0.0, PowerToDB(EnergyFloor, EnergyFloor, 80))
}

func TestLogMagnitude(t *testing.T) {
	assert.InDelta(t, math.Log(1e-6), LogMagnitude(0, 1e-6), 1e-12)
	assert.InDelta(t, 0.0, LogMagnitude(1-1e-6, 1e-6), 1e-12)
}
