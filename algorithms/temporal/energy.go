package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SilenceFloor is the smallest RMS value converted to dB.
const SilenceFloor = 1e-10

// Energy computes short-time RMS energy over non-padded frames
type Energy struct {
	frameSize int
	hopSize   int
}

// NewEnergy creates a new energy calculator
func NewEnergy(frameSize, hopSize int) *Energy {
	return &Energy{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// ShortTimeRMS returns the RMS of each full frame of signal.
func (e *Energy) ShortTimeRMS(signal []float32) []float64 {
	if len(signal) < e.frameSize || e.hopSize <= 0 || e.frameSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-e.frameSize)/e.hopSize + 1
	rms := make([]float64, numFrames)
	frame := make([]float64, e.frameSize)

	for i := range numFrames {
		start := i * e.hopSize
		for j, s := range signal[start : start+e.frameSize] {
			frame[j] = float64(s)
		}
		rms[i] = math.Sqrt(floats.Dot(frame, frame) / float64(e.frameSize))
	}

	return rms
}

// ToDB converts an amplitude to dBFS, flooring at SilenceFloor.
func ToDB(amplitude float64) float64 {
	return 20.0 * math.Log10(math.Max(amplitude, SilenceFloor))
}

// Level summarises the loudness of one clip
type Level struct {
	RMSdB       float64 `json:"rms_db" yaml:"rms_db"`
	PeakdB      float64 `json:"peak_db" yaml:"peak_db"`
	ActiveRatio float64 `json:"active_ratio" yaml:"active_ratio"` // share of frames above the silence threshold
}

// ClipLevel measures overall RMS, peak and the share of frames louder than
// silenceDB. A clip shorter than one frame counts as a single frame.
func (e *Energy) ClipLevel(signal []float32, silenceDB float64) Level {
	if len(signal) == 0 {
		return Level{RMSdB: ToDB(0), PeakdB: ToDB(0)}
	}

	sumSquares, peak := 0.0, 0.0
	for _, s := range signal {
		v := float64(s)
		sumSquares += v * v
		peak = math.Max(peak, math.Abs(v))
	}

	frames := e.ShortTimeRMS(signal)
	if len(frames) == 0 {
		frames = []float64{math.Sqrt(sumSquares / float64(len(signal)))}
	}
	active := 0
	for _, rms := range frames {
		if ToDB(rms) > silenceDB {
			active++
		}
	}

	return Level{
		RMSdB:       ToDB(math.Sqrt(sumSquares / float64(len(signal)))),
		PeakdB:      ToDB(peak),
		ActiveRatio: float64(active) / float64(len(frames)),
	}
}
