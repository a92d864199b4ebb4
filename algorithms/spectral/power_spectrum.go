package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

// EnergyFloor is the smallest energy kept before taking logarithms.
const EnergyFloor = 1e-10

// PowerFromComplex writes re[k]^2 + im[k]^2 for k < len(dst).
func PowerFromComplex(re, im, dst []float64) {
	for k := range dst {
		dst[k] = re[k]*re[k] + im[k]*im[k]
	}
}

// MagnitudeFromInterleaved writes |X_k| for k < len(dst) from a spectrum
// packed as [re0, im0, re1, im1, ...].
func MagnitudeFromInterleaved(spectrum, dst []float64) {
	for k := range dst {
		re := spectrum[2*k]
		im := spectrum[2*k+1]
		dst[k] = math.Sqrt(re*re + im*im)
	}
}

// ReferencePower returns maxEnergy when it is a usable dB reference and
// EnergyFloor when it is zero, negative, infinite or NaN.
func ReferencePower(maxEnergy float64) float64 {
	if maxEnergy <= 0 || !common.IsFinite(maxEnergy) {
		return EnergyFloor
	}
	return maxEnergy
}

// PowerToDB converts a power value to decibels relative to ref, clipped
// below at -topDB.
func PowerToDB(power, ref, topDB float64) float64 {
	db := 10 * math.Log10(power/ref)
	return math.Max(db, -topDB)
}

// LogMagnitude returns ln(magnitude + eps).
func LogMagnitude(magnitude, eps float64) float64 {
	return math.Log(magnitude + eps)
}
