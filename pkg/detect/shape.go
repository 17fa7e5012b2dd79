package detect

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"starquads/pkg/geometry"
)

// Properties holds the shape statistics derived from a component's image
// moments. Values are computed once per component and never mutated.
type Properties struct {
	// Area is the pixel count (zeroth moment).
	Area float64 `json:"area"`

	// Centroid is the first-moment center of the component.
	Centroid geometry.Point2D `json:"centroid"`

	// MajorAxis and MinorAxis are the lengths 4·sqrt(λ) of the
	// covariance eigenvalues. The factor 4 is a fixed scale convention.
	MajorAxis float64 `json:"majorAxis"`
	MinorAxis float64 `json:"minorAxis"`

	// Eccentricity is sqrt(1 − (minor/major)²), in [0, 1); 0 for a
	// circular component, approaching 1 for a line-like one.
	Eccentricity float64 `json:"eccentricity"`

	// RotationAngle is the orientation of the major axis in radians.
	RotationAngle float64 `json:"rotationAngle"`
}

// Measure computes the moment statistics of a component.
//
// The zeroth moment m00 is the area; the first moments give the
// centroid; the second central moments μ20, μ02, μ11 (normalized by
// area) form the 2×2 covariance matrix whose eigenvalues determine the
// axis lengths. A negative discriminant cannot occur for a true
// covariance matrix but is defended against numerically by returning
// zero axes, eccentricity, and rotation instead of propagating NaN.
func Measure(c Component) Properties {
	m00 := float64(c.Area())
	if m00 == 0 {
		// Components are never empty by construction; this guards
		// against a hand-built zero value.
		return Properties{}
	}

	var m10, m01 float64
	for _, p := range c.Pixels {
		m10 += float64(p.X)
		m01 += float64(p.Y)
	}
	centroid := geometry.Point2D{X: m10 / m00, Y: m01 / m00}

	var mu20, mu02, mu11 float64
	for _, p := range c.Pixels {
		dx := float64(p.X) - centroid.X
		dy := float64(p.Y) - centroid.Y
		mu20 += dx * dx
		mu02 += dy * dy
		mu11 += dx * dy
	}
	mu20 /= m00
	mu02 /= m00
	mu11 /= m00

	props := Properties{
		Area:     m00,
		Centroid: centroid,
	}

	cov := mat.NewSymDense(2, []float64{mu20, mu11, mu11, mu02})
	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return props
	}

	vals := eig.Values(nil) // ascending
	lambdaMin, lambdaMax := vals[0], vals[1]
	if lambdaMax < 0 {
		return props
	}
	if lambdaMin < 0 {
		lambdaMin = 0
	}

	props.MajorAxis = 4 * math.Sqrt(lambdaMax)
	props.MinorAxis = 4 * math.Sqrt(lambdaMin)
	if props.MajorAxis > 0 {
		ratio := props.MinorAxis / props.MajorAxis
		props.Eccentricity = math.Sqrt(1 - ratio*ratio)
		props.RotationAngle = 0.5 * math.Atan2(2*mu11, mu20-mu02)
	}

	return props
}

// MeasureAll computes properties for every component in order.
func MeasureAll(components []Component) []Properties {
	props := make([]Properties, len(components))
	for i, c := range components {
		props[i] = Measure(c)
	}
	return props
}
