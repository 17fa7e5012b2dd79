package mask

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the statistics used to binarize a source image.
type Stats struct {
	// Median is the median luminance of the (noise-reduced) image,
	// used as the background estimate.
	Median float64 `json:"median"`

	// StdDev is the luminance standard deviation.
	StdDev float64 `json:"stddev"`

	// Threshold is the binarization cutoff: median + sigma·stddev,
	// clamped to [0, 1].
	Threshold float64 `json:"threshold"`

	// Foreground is the number of cells at or above the cutoff.
	Foreground int `json:"foreground"`
}

// FromImage converts an image into a binary mask. The image is converted
// to grayscale, optionally blurred to suppress single-pixel noise, and
// binarized at median + sigma standard deviations above the background.
//
// sigma is the clipping multiplier (how many standard deviations above
// the median background a pixel must be to count as a star structure).
// blurRadius of 0 disables noise reduction.
func FromImage(img image.Image, sigma, blurRadius float64) (*Mask, Stats, error) {
	gray := effect.Grayscale(img)
	if blurRadius > 0 {
		gray = blur.Gaussian(gray, blurRadius)
	}

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	m, err := New(width, height)
	if err != nil {
		return nil, Stats{}, err
	}

	// Luminance in 0..1. The grayscale conversion leaves R=G=B, so a
	// single channel is enough.
	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := gray.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			lum[y*width+x] = float64(c.R) / 255.0
		}
	}

	stats := Stats{
		StdDev: stat.StdDev(lum, nil),
	}

	sorted := make([]float64, len(lum))
	copy(sorted, lum)
	sort.Float64s(sorted)
	stats.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	stats.Threshold = stats.Median + sigma*stats.StdDev
	if stats.Threshold > 1 {
		stats.Threshold = 1
	}
	if stats.Threshold < 0 {
		stats.Threshold = 0
	}

	for i, v := range lum {
		if v >= stats.Threshold {
			m.data[i] = 1
			stats.Foreground++
		}
	}

	return m, stats, nil
}
