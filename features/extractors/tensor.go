package extractors

// Tensor is a [1][frames][bands][1] float32 feature tensor, the layout the
// keyword classifier consumes.
type Tensor [][][][]float32

// NewTensor allocates a zeroed tensor backed by one contiguous block.
func NewTensor(frames, bands int) Tensor {
	backing := make([]float32, frames*bands)
	rows := make([][][]float32, frames)
	cells := make([][]float32, frames*bands)
	for t := range frames {
		for b := range bands {
			i := t*bands + b
			cells[i] = backing[i : i+1 : i+1]
		}
		rows[t] = cells[t*bands : (t+1)*bands : (t+1)*bands]
	}
	return Tensor{rows}
}

// Shape returns [1, frames, bands, 1] (zeros for an empty tensor).
func (t Tensor) Shape() [4]int {
	if len(t) == 0 {
		return [4]int{}
	}
	frames := len(t[0])
	bands := 0
	if frames > 0 {
		bands = len(t[0][0])
	}
	return [4]int{len(t), frames, bands, 1}
}

// Frames returns the time dimension.
func (t Tensor) Frames() int {
	return t.Shape()[1]
}

// Bands returns the frequency dimension.
func (t Tensor) Bands() int {
	return t.Shape()[2]
}

// At returns the value at (frame, band).
func (t Tensor) At(frame, band int) float32 {
	return t[0][frame][band][0]
}

// Set stores v at (frame, band).
func (t Tensor) Set(frame, band int, v float32) {
	t[0][frame][band][0] = v
}

// Frame returns a copy of one frame's bands.
func (t Tensor) Frame(frame int) []float32 {
	row := t[0][frame]
	out := make([]float32, len(row))
	for b, cell := range row {
		out[b] = cell[0]
	}
	return out
}

// Flatten returns the values in row-major (frame, band) order.
func (t Tensor) Flatten() []float32 {
	shape := t.Shape()
	out := make([]float32, 0, shape[1]*shape[2])
	for frame := range shape[1] {
		for _, cell := range t[0][frame] {
			out = append(out, cell[0])
		}
	}
	return out
}

// Matrix returns the tensor as a frames x bands float64 matrix.
func (t Tensor) Matrix() [][]float64 {
	shape := t.Shape()
	out := make([][]float64, shape[1])
	for frame := range out {
		out[frame] = make([]float64, shape[2])
		for b, cell := range t[0][frame] {
			out[frame][b] = float64(cell[0])
		}
	}
	return out
}
