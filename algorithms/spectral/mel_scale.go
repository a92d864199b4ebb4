package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/logging"
)

// Slaney mel scale constants (Auditory Toolbox): linear below 1 kHz,
// logarithmic above with 27 steps per factor of 6.4.
const (
	slaneyFSp       = 200.0 / 3.0
	slaneyMinLogHz  = 1000.0
	slaneyMinLogMel = slaneyMinLogHz / slaneyFSp
)

var slaneyLogStep = math.Log(6.4) / 27.0

// melAreaFloor guards the Slaney area normalisation against zero-width bands.
const melAreaFloor = 1e-10

// HzToMelSlaney converts a frequency in Hz to the Slaney mel scale.
// Negative frequencies are treated as 0 Hz.
func HzToMelSlaney(hz float64) float64 {
	f := math.Max(0, hz)
	if f < slaneyMinLogHz {
		return f / slaneyFSp
	}
	return slaneyMinLogMel + math.Log(f/slaneyMinLogHz)/slaneyLogStep
}

// MelToHzSlaney is the inverse of HzToMelSlaney.
func MelToHzSlaney(mel float64) float64 {
	if mel < slaneyMinLogMel {
		return mel * slaneyFSp
	}
	return slaneyMinLogHz * math.Exp(slaneyLogStep*(mel-slaneyMinLogMel))
}

// MelFilterBankConfig holds the inputs the filterbank is a pure function of.
type MelFilterBankConfig struct {
	SampleRate int
	NFFT       int
	NMels      int
	FMin       float64
	FMax       float64
}

// MelFilterBank is an immutable NMels x (NFFT/2+1) matrix of Slaney-normalised
// triangular filters.
type MelFilterBank struct {
	weights    [][]float64
	edgesHz    []float64
	edgeBins   []int
	degenerate []int
}

// NewMelFilterBank builds the filterbank. Bands whose left/centre or
// centre/right edges fall into the same FFT bin are left as all-zero rows.
func NewMelFilterBank(cfg MelFilterBankConfig) (*MelFilterBank, error) {
	if cfg.SampleRate <= 0 || cfg.NFFT <= 0 || cfg.NMels <= 0 {
		return nil, common.InvalidConfigurationf(
			"mel filterbank needs positive sample rate, fft size and mel count (got %d, %d, %d)",
			cfg.SampleRate, cfg.NFFT, cfg.NMels)
	}
	if cfg.FMin < 0 || cfg.FMax <= cfg.FMin {
		return nil, common.InvalidConfigurationf("invalid mel frequency range [%g, %g]", cfg.FMin, cfg.FMax)
	}

	nFreqs := cfg.NFFT/2 + 1

	melMin := HzToMelSlaney(cfg.FMin)
	melMax := HzToMelSlaney(cfg.FMax)

	hz := make([]float64, cfg.NMels+2)
	bins := make([]int, len(hz))
	for i := range hz {
		mel := melMin + (melMax-melMin)*float64(i)/float64(cfg.NMels+1)
		hz[i] = MelToHzSlaney(mel)

		b := int(math.Floor(float64(cfg.NFFT+1) * hz[i] / float64(cfg.SampleRate)))
		bins[i] = int(common.Clamp(float64(b), 0, float64(nFreqs-1)))
	}

	fb := &MelFilterBank{
		weights:  make([][]float64, cfg.NMels),
		edgesHz:  hz,
		edgeBins: bins,
	}

	for m := range cfg.NMels {
		row := make([]float64, nFreqs)
		fb.weights[m] = row

		left, center, right := bins[m], bins[m+1], bins[m+2]
		if center == left || right == center {
			fb.degenerate = append(fb.degenerate, m)
			continue
		}

		for k := left; k < center; k++ {
			row[k] = float64(k-left) / float64(center-left)
		}
		for k := center; k < right; k++ {
			row[k] = float64(right-k) / float64(right-center)
		}

		enorm := 2.0 / math.Max(melAreaFloor, hz[m+2]-hz[m])
		floats.Scale(enorm, row)
	}

	if len(fb.degenerate) > 0 {
		logging.WithFields(logging.Fields{
			"component": "mel_filterbank",
		}).Debug("Degenerate mel bands left empty", logging.Fields{
			"bands":   len(fb.degenerate),
			"n_mels":  cfg.NMels,
			"n_fft":   cfg.NFFT,
			"f_range": [2]float64{cfg.FMin, cfg.FMax},
		})
	}

	return fb, nil
}

// NumMels returns the number of bands (rows).
func (fb *MelFilterBank) NumMels() int {
	return len(fb.weights)
}

// NumFreqs returns the number of FFT bins per row.
func (fb *MelFilterBank) NumFreqs() int {
	if len(fb.weights) == 0 {
		return 0
	}
	return len(fb.weights[0])
}

// Row returns a copy of band m's weights.
func (fb *MelFilterBank) Row(m int) []float64 {
	row := make([]float64, len(fb.weights[m]))
	copy(row, fb.weights[m])
	return row
}

// EdgeFrequencies returns a copy of the NMels+2 filter edge frequencies in Hz.
func (fb *MelFilterBank) EdgeFrequencies() []float64 {
	out := make([]float64, len(fb.edgesHz))
	copy(out, fb.edgesHz)
	return out
}

// EdgeBins returns a copy of the FFT bin index of every edge frequency.
func (fb *MelFilterBank) EdgeBins() []int {
	out := make([]int, len(fb.edgeBins))
	copy(out, fb.edgeBins)
	return out
}

// DegenerateBands lists the bands that collapsed to all-zero rows.
func (fb *MelFilterBank) DegenerateBands() []int {
	out := make([]int, len(fb.degenerate))
	copy(out, fb.degenerate)
	return out
}

// Apply projects a power spectrum (len NumFreqs()) onto the bands, writing
// NumMels() energies into dst.
func (fb *MelFilterBank) Apply(power, dst []float64) {
	for m, row := range fb.weights {
		dst[m] = floats.Dot(row, power[:len(row)])
	}
}
