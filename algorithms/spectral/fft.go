package spectral

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

// Radix2FFT is an in-place radix-2 decimation-in-time FFT of a fixed
// power-of-two size. Its tables are built once and only read afterwards,
// so one instance can serve concurrent Forward calls on distinct buffers.
type Radix2FFT struct {
	n        int
	reversed []int
	cosTable []float64
	sinTable []float64
}

// NewRadix2FFT builds the bit-reversal and twiddle tables for size n.
func NewRadix2FFT(n int) (*Radix2FFT, error) {
	if !common.IsPowerOfTwo(n) {
		return nil, common.InvalidConfigurationf("fft size %d is not a positive power of two", n)
	}

	levels := common.Log2(n)
	f := &Radix2FFT{
		n:        n,
		reversed: make([]int, n),
		cosTable: make([]float64, n/2),
		sinTable: make([]float64, n/2),
	}

	for i := range n {
		f.reversed[i] = reverseBits(i, levels)
	}
	for i := range n / 2 {
		angle := 2 * math.Pi * float64(i) / float64(n)
		f.cosTable[i] = math.Cos(angle)
		f.sinTable[i] = math.Sin(angle)
	}

	return f, nil
}

func reverseBits(x, bits int) int {
	y := 0
	for range bits {
		y = (y << 1) | (x & 1)
		x >>= 1
	}
	return y
}

// Size returns the transform length.
func (f *Radix2FFT) Size() int {
	return f.n
}

// Forward replaces (re, im) with its discrete Fourier transform.
// Both slices must have length Size().
func (f *Radix2FFT) Forward(re, im []float64) {
	n := f.n
	re, im = re[:n], im[:n]

	for i, j := range f.reversed {
		if j > i {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		step := n / size
		for start := 0; start < n; start += size {
			for j, k := start, 0; j < start+half; j, k = j+1, k+step {
				l := j + half
				c, s := f.cosTable[k], f.sinTable[k]
				tre := re[l]*c + im[l]*s
				tim := -re[l]*s + im[l]*c
				re[l] = re[j] - tre
				im[l] = im[j] - tim
				re[j] += tre
				im[j] += tim
			}
		}
	}
}

// FFT computes transforms of a fixed but arbitrary length through
// mjibson/go-dsp, which falls back to Bluestein's algorithm when the
// length is not a power of two.
type FFT struct {
	n int
}

// NewFFT creates an arbitrary-length FFT and primes go-dsp's factor caches
// so the first real frame does not pay for them.
func NewFFT(n int) (*FFT, error) {
	if n <= 0 {
		return nil, common.InvalidConfigurationf("fft size must be positive, got %d", n)
	}
	fft.FFTReal(make([]float64, n))
	return &FFT{n: n}, nil
}

// Size returns the transform length.
func (f *FFT) Size() int {
	return f.n
}

// ComputeFull returns the full complex spectrum of x (length Size()).
// Shorter input is zero-extended, longer input truncated.
func (f *FFT) ComputeFull(x []float64) []complex128 {
	if len(x) != f.n {
		buf := make([]float64, f.n)
		copy(buf, x)
		x = buf
	}
	return fft.FFTReal(x)
}

// ComputeInterleaved returns the full spectrum packed as
// [re0, im0, re1, im1, ...] with length 2*Size().
func (f *FFT) ComputeInterleaved(x []float64) []float64 {
	spectrum := f.ComputeFull(x)
	out := make([]float64, 2*len(spectrum))
	for k, c := range spectrum {
		out[2*k] = real(c)
		out[2*k+1] = imag(c)
	}
	return out
}
