package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a block of feature values.
type Stats struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// Summarize computes min/max/mean/stddev with gonum. Empty input yields zero Stats.
func Summarize(data []float64) Stats {
	if len(data) == 0 {
		return Stats{}
	}

	s := Stats{
		Min:   floats.Min(data),
		Max:   floats.Max(data),
		Mean:  stat.Mean(data, nil),
		Count: len(data),
	}
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}
	return s
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsPowerOfTwo checks if n is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns log2(n) for a power of two n.
func Log2(n int) int {
	levels := 0
	for n > 1 {
		n >>= 1
		levels++
	}
	return levels
}
