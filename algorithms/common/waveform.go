package common

// ConditionWaveform returns a fresh slice of exactly targetLen samples:
// pcm is copied, zero-padded on the right when shorter and truncated when longer.
func ConditionWaveform(pcm []float32, targetLen int) []float32 {
	if targetLen <= 0 {
		return []float32{}
	}
	out := make([]float32, targetLen)
	copy(out, pcm)
	return out
}

// PCM16ToFloat32 converts signed 16-bit samples to [-1, 1).
func PCM16ToFloat32(pcm []int16) []float32 {
	out := make([]float32, len(pcm))
	for i, s := range pcm {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Float64ToFloat32 narrows a sample slice.
func Float64ToFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

// DownmixInterleaved averages interleaved channels into a mono signal.
func DownmixInterleaved(samples []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}
