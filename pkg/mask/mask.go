// Package mask provides the binary foreground mask consumed by the
// detection pipeline, the data-parallel scanner that extracts foreground
// pixel coordinates from it, and the thresholding step that produces a
// mask from a source image.
package mask

import (
	"fmt"
)

// Mask is a width × height grid of continuous 0..1 values addressable in
// row-major order. A cell counts as foreground when its value is at
// least 0.5.
type Mask struct {
	width  int
	height int
	data   []float64
}

// foregroundLevel is the cutoff above which a cell counts as foreground.
const foregroundLevel = 0.5

// New allocates a zeroed (all-background) mask of the given dimensions.
func New(width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("mask dimensions must be positive, got %dx%d", width, height)
	}

	return &Mask{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}, nil
}

// Width returns the mask width in cells.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in cells.
func (m *Mask) Height() int { return m.height }

// At returns the cell value at (x, y). The caller must ensure the
// coordinates are in range.
func (m *Mask) At(x, y int) float64 {
	return m.data[y*m.width+x]
}

// Set stores a cell value at (x, y). The caller must ensure the
// coordinates are in range.
func (m *Mask) Set(x, y int, v float64) {
	m.data[y*m.width+x] = v
}

// Foreground reports whether the cell at (x, y) counts as foreground.
func (m *Mask) Foreground(x, y int) bool {
	return m.data[y*m.width+x] >= foregroundLevel
}
