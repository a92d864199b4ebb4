package classify

import "fmt"

// Labels maps classifier output indices to keyword names.
type Labels []string

// Lookup returns the label at idx, or "unknown(idx)" when idx is out of range.
func (l Labels) Lookup(idx int) string {
	if idx < 0 || idx >= len(l) {
		return fmt.Sprintf("unknown(%d)", idx)
	}
	return l[idx]
}

// Argmax returns the index and value of the largest probability. The first
// maximum wins on ties; an empty slice yields (-1, 0).
func Argmax(probs []float32) (int, float32) {
	if len(probs) == 0 {
		return -1, 0
	}
	best := 0
	for i, p := range probs[1:] {
		if p > probs[best] {
			best = i + 1
		}
	}
	return best, probs[best]
}
