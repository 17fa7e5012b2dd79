// Package geometry provides the 2D primitives shared by the detection and
// quad-extraction stages: floating-point points with the two distance
// metrics used in the pipeline, and integer pixel coordinates.
package geometry

import (
	"math"
)

// Point2D is an immutable 2D point with double-precision coordinates.
// Point2D is a comparable value type: two points are equal exactly when
// both coordinates are equal, so it can be used directly as a map key.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TaxicabDistance returns the Manhattan distance |dx| + |dy| to q.
// The spatial index uses this metric for all of its pruning and
// comparisons because it is cheaper than the Euclidean distance.
func (p Point2D) TaxicabDistance(q Point2D) float64 {
	return math.Abs(p.X-q.X) + math.Abs(p.Y-q.Y)
}

// EuclideanDistance returns the straight-line distance to q.
// Quad geometry uses this metric for baseline and descriptor computation.
func (p Point2D) EuclideanDistance(q Point2D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PixelCoordinate is an integer pixel location produced by the mask
// scanner and consumed by the component labeler.
type PixelCoordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// pixelKeyStride is the encoding base for PixelCoordinate keys. It bounds
// the supported image size to under 1,000,000 pixels per axis.
const pixelKeyStride = 1_000_000

// Key encodes the coordinate into a single integer, valid for images
// under one million pixels per axis. The labeler uses these keys for
// O(1) neighbor lookups.
func (c PixelCoordinate) Key() int64 {
	return int64(c.X)*pixelKeyStride + int64(c.Y)
}

// Offset returns the coordinate shifted by (dx, dy).
func (c PixelCoordinate) Offset(dx, dy int) PixelCoordinate {
	return PixelCoordinate{X: c.X + dx, Y: c.Y + dy}
}

// Point returns the pixel center as a floating-point point.
func (c PixelCoordinate) Point() Point2D {
	return Point2D{X: float64(c.X), Y: float64(c.Y)}
}
