package windowing

import (
	"fmt"
	"math"
)

// Hann represents a Hann window function. The periodic form
// w[i] = 0.5 - 0.5*cos(2*pi*i/n) is the one used for spectral analysis;
// the symmetric form divides by n-1 instead.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a new Hann window
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      max(size, 0),
		symmetric: symmetric,
	}
	h.generate()
	return h
}

// NewPeriodicHann creates the periodic ("fftbins") Hann window.
func NewPeriodicHann(size int) *Hann {
	return NewHann(size, false)
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)
	if h.size == 1 {
		h.coefficients[0] = 1
		return
	}

	denominator := float64(h.size)
	if h.symmetric {
		denominator = float64(h.size - 1)
	}

	for i := range h.size {
		h.coefficients[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denominator)
	}
}

// Apply applies the window to a signal (creates new array)
func (h *Hann) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i, c := range h.coefficients {
		windowed[i] = signal[i] * c
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i, c := range h.coefficients {
		signal[i] *= c
	}

	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *Hann) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *Hann) Size() int {
	return h.size
}

// Symmetric reports whether the window is the symmetric variant.
func (h *Hann) Symmetric() bool {
	return h.symmetric
}

// Type returns the window type
func (h *Hann) Type() string {
	return "hann"
}
