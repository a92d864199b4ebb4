package extractors

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
	"github.com/RyanBlaney/sonido-kws/algorithms/spectral"
	"github.com/RyanBlaney/sonido-kws/algorithms/windowing"
	"github.com/RyanBlaney/sonido-kws/features/config"
	"github.com/RyanBlaney/sonido-kws/logging"
)

// LogMelExtractor computes a librosa-style log-mel spectrogram: centred
// frames, periodic Hann window, power spectrum, Slaney mel filterbank and
// power_to_db(ref=max, top_db).
type LogMelExtractor struct {
	config      config.LogMelConfig
	fft         *spectral.Radix2FFT
	framer      *spectral.Framer
	filterBank  *spectral.MelFilterBank
	framesToUse int
	logger      logging.Logger
}

// NewLogMelExtractor validates cfg and precomputes the window, twiddle
// tables and filterbank.
func NewLogMelExtractor(cfg *config.LogMelConfig) (*LogMelExtractor, error) {
	if cfg == nil {
		cfg = config.DefaultLogMelConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("log-mel extractor: %w", err)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "log_mel_extractor",
	})

	fft, err := spectral.NewRadix2FFT(cfg.NFFT)
	if err != nil {
		return nil, fmt.Errorf("log-mel extractor: %w", err)
	}

	framer, err := spectral.NewFramer(cfg.NFFT, cfg.HopLength, windowing.NewPeriodicHann(cfg.NFFT))
	if err != nil {
		return nil, common.NewFeatureError(common.ErrCodeInvalidConfiguration, "log-mel extractor framer", err)
	}

	filterBank, err := spectral.NewMelFilterBank(spectral.MelFilterBankConfig{
		SampleRate: cfg.SampleRate,
		NFFT:       cfg.NFFT,
		NMels:      cfg.NMels,
		FMin:       cfg.FMin,
		FMax:       cfg.EffectiveFMax(),
	})
	if err != nil {
		return nil, fmt.Errorf("log-mel extractor: %w", err)
	}

	paddedLen := cfg.TargetLength() + 2*(cfg.NFFT/2)
	possible := spectral.PossibleFrames(paddedLen, cfg.NFFT, cfg.HopLength)

	e := &LogMelExtractor{
		config:      *cfg,
		fft:         fft,
		framer:      framer,
		filterBank:  filterBank,
		framesToUse: min(cfg.NumFrames, possible),
		logger:      logger,
	}

	logger.Debug("Log-mel extractor ready", logging.Fields{
		"n_fft":            cfg.NFFT,
		"hop_length":       cfg.HopLength,
		"n_mels":           cfg.NMels,
		"num_frames":       cfg.NumFrames,
		"frames_to_use":    e.framesToUse,
		"degenerate_bands": len(filterBank.DegenerateBands()),
	})
	if e.framesToUse < cfg.NumFrames {
		logger.Warn("Waveform supports fewer frames than requested, trailing frames are silence", logging.Fields{
			"possible_frames": possible,
			"num_frames":      cfg.NumFrames,
		})
	}

	return e, nil
}

// Variant implements Extractor.
func (e *LogMelExtractor) Variant() config.Variant {
	return config.VariantLogMel
}

// Shape implements Extractor.
func (e *LogMelExtractor) Shape() [4]int {
	return [4]int{1, e.config.NumFrames, e.config.NMels, 1}
}

// Config returns a copy of the extractor configuration.
func (e *LogMelExtractor) Config() config.LogMelConfig {
	return e.config
}

// FilterBank returns the precomputed mel filterbank.
func (e *LogMelExtractor) FilterBank() *spectral.MelFilterBank {
	return e.filterBank
}

// FramesToUse is the number of frames computed from real FFTs; frames past
// it are filled with the -TopDB silence value.
func (e *LogMelExtractor) FramesToUse() int {
	return e.framesToUse
}

// Extract implements Extractor.
func (e *LogMelExtractor) Extract(pcm []float32) Tensor {
	energies, globalMax := e.melEnergies(pcm)
	return e.toDecibels(energies, globalMax)
}

// melEnergies is the first pass: floored mel energies of every computed
// frame, row-major (frame, band), and their maximum.
func (e *LogMelExtractor) melEnergies(pcm []float32) ([]float64, float64) {
	nFFT := e.config.NFFT
	nMels := e.config.NMels

	y := common.ConditionWaveform(pcm, e.config.TargetLength())
	yPad := spectral.CenterPad(y, nFFT/2)

	re := make([]float64, nFFT)
	im := make([]float64, nFFT)
	power := make([]float64, e.config.NumFreqs())
	energies := make([]float64, e.framesToUse*nMels)

	globalMax := math.Inf(-1)
	nonFinite := 0
	for t := range e.framesToUse {
		e.framer.Frame(yPad, t, re)
		clear(im)
		e.fft.Forward(re, im)
		spectral.PowerFromComplex(re, im, power)

		row := energies[t*nMels : (t+1)*nMels]
		e.filterBank.Apply(power, row)
		for m, v := range row {
			if !common.IsFinite(v) {
				nonFinite++
				v = spectral.EnergyFloor
			}
			v = math.Max(v, spectral.EnergyFloor)
			row[m] = v
			if v > globalMax {
				globalMax = v
			}
		}
	}

	if nonFinite > 0 {
		e.logger.Warn("Non-finite mel energies replaced with the energy floor", logging.Fields{
			"count":        nonFinite,
			"input_length": len(pcm),
		})
	}

	return energies, globalMax
}

// toDecibels is the second pass: dB relative to the utterance-wide maximum.
func (e *LogMelExtractor) toDecibels(energies []float64, globalMax float64) Tensor {
	nMels := e.config.NMels
	topDB := e.config.TopDB
	ref := spectral.ReferencePower(globalMax)

	out := NewTensor(e.config.NumFrames, nMels)
	for t := range e.framesToUse {
		for m := range nMels {
			db := spectral.PowerToDB(energies[t*nMels+m], ref, topDB)
			out.Set(t, m, float32(db))
		}
	}

	silence := float32(-topDB)
	for t := e.framesToUse; t < e.config.NumFrames; t++ {
		for m := range nMels {
			out.Set(t, m, silence)
		}
	}

	return out
}
