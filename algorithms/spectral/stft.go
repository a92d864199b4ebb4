package spectral

import (
	"fmt"
)

// Window supplies the coefficients applied to each frame before
// transforming.
type Window interface {
	Coefficients() []float64
	Size() int
}

// CenterPad returns y with pad zeros on both sides, so that frame t of the
// padded signal is centred on sample t*hop of y.
func CenterPad(y []float32, pad int) []float32 {
	pad = max(pad, 0)
	out := make([]float32, len(y)+2*pad)
	copy(out[pad:], y)
	return out
}

// PossibleFrames is the number of whole frames a signal of the given length
// supports at the given hop. Zero when the signal is shorter than one frame.
func PossibleFrames(length, frameLength, hop int) int {
	if length < frameLength || frameLength <= 0 || hop <= 0 {
		return 0
	}
	return 1 + (length-frameLength)/hop
}

// Framer cuts fixed-length windowed frames out of a signal at a fixed hop.
// It holds no per-call state.
type Framer struct {
	frameLength int
	hop         int
	window      []float64
}

// NewFramer creates a framer. window may be nil for a rectangular window.
func NewFramer(frameLength, hop int, window Window) (*Framer, error) {
	if frameLength <= 0 {
		return nil, fmt.Errorf("frame length must be positive, got %d", frameLength)
	}
	if hop <= 0 {
		return nil, fmt.Errorf("hop must be positive, got %d", hop)
	}
	f := &Framer{frameLength: frameLength, hop: hop}
	if window != nil {
		coeffs := window.Coefficients()
		if window.Size() != frameLength || len(coeffs) != frameLength {
			return nil, fmt.Errorf("window size (%d) doesn't match frame length (%d)", window.Size(), frameLength)
		}
		f.window = coeffs
	}
	return f, nil
}

// FrameLength returns the frame length in samples.
func (f *Framer) FrameLength() int {
	return f.frameLength
}

// Hop returns the hop between frame starts in samples.
func (f *Framer) Hop() int {
	return f.hop
}

// Frame writes windowed frame t of signal into dst (len FrameLength()).
// Samples past either end of signal read as zero.
func (f *Framer) Frame(signal []float32, t int, dst []float64) {
	dst = dst[:f.frameLength]
	start := t * f.hop
	for i := range dst {
		idx := start + i
		if idx >= 0 && idx < len(signal) {
			dst[i] = float64(signal[idx])
		} else {
			dst[i] = 0
		}
	}

	for i, c := range f.window {
		dst[i] *= c
	}
}
