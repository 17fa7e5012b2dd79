package mask

import (
	"image"
	"image/color"
	"sort"
	"testing"

	"starquads/pkg/geometry"
)

// TestNewMask verifies allocation and dimension validation
func TestNewMask(t *testing.T) {
	m, err := New(8, 4)
	if err != nil {
		t.Fatalf("New(8,4) failed: %v", err)
	}

	if m.Width() != 8 || m.Height() != 4 {
		t.Errorf("Expected 8x4 mask, got %dx%d", m.Width(), m.Height())
	}

	if m.Foreground(3, 2) {
		t.Errorf("Expected new mask to be all background")
	}

	if _, err := New(0, 4); err == nil {
		t.Errorf("Expected error for zero width")
	}

	if _, err := New(4, -1); err == nil {
		t.Errorf("Expected error for negative height")
	}
}

// TestForegroundLevel verifies the 0.5 cutoff on a continuous mask
func TestForegroundLevel(t *testing.T) {
	m, _ := New(3, 1)
	m.Set(0, 0, 0.49)
	m.Set(1, 0, 0.5)
	m.Set(2, 0, 1.0)

	if m.Foreground(0, 0) {
		t.Errorf("0.49 must not count as foreground")
	}
	if !m.Foreground(1, 0) {
		t.Errorf("0.5 must count as foreground")
	}
	if !m.Foreground(2, 0) {
		t.Errorf("1.0 must count as foreground")
	}
}

// sortCoords orders coordinates for order-insensitive comparison, since
// the scanner's output ordering is unspecified
func sortCoords(coords []geometry.PixelCoordinate) {
	sort.Slice(coords, func(i, j int) bool {
		return coords[i].Key() < coords[j].Key()
	})
}

// TestForegroundPixels verifies the two-pass scan against a known set
func TestForegroundPixels(t *testing.T) {
	m, _ := New(100, 60)
	want := []geometry.PixelCoordinate{
		{X: 0, Y: 0},
		{X: 99, Y: 59},
		{X: 42, Y: 17},
		{X: 42, Y: 18},
		{X: 7, Y: 31},
	}
	for _, c := range want {
		m.Set(c.X, c.Y, 1)
	}

	got := m.ForegroundPixels()
	if len(got) != len(want) {
		t.Fatalf("Expected %d foreground pixels, got %d", len(want), len(got))
	}

	sortCoords(got)
	sortCoords(want)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("foreground[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if n := m.CountForeground(); n != len(want) {
		t.Errorf("CountForeground = %d, want %d", n, len(want))
	}
}

// TestForegroundPixelsEmpty ensures an all-background mask yields nothing
func TestForegroundPixelsEmpty(t *testing.T) {
	m, _ := New(50, 50)
	if got := m.ForegroundPixels(); len(got) != 0 {
		t.Errorf("Expected no foreground pixels, got %d", len(got))
	}
}

// TestForegroundPixelsDense exercises the parallel passes on a mask where
// every cell is foreground, so every output slot must be claimed exactly
// once
func TestForegroundPixelsDense(t *testing.T) {
	const w, h = 64, 48
	m, _ := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, 1)
		}
	}

	got := m.ForegroundPixels()
	if len(got) != w*h {
		t.Fatalf("Expected %d pixels, got %d", w*h, len(got))
	}

	seen := make(map[int64]bool, len(got))
	for _, c := range got {
		if seen[c.Key()] {
			t.Fatalf("Coordinate %v written more than once", c)
		}
		seen[c.Key()] = true
	}
}

// starImage builds a dark test frame with a few bright star-like spots
func starImage(w, h int, stars []image.Point) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Mild background texture so the standard deviation is nonzero
			img.SetGray(x, y, color.Gray{Y: uint8(10 + (x+y)%5)})
		}
	}
	for _, s := range stars {
		img.SetGray(s.X, s.Y, color.Gray{Y: 255})
	}
	return img
}

// TestFromImage verifies that statistical thresholding isolates bright
// pixels against a dim background
func TestFromImage(t *testing.T) {
	stars := []image.Point{{10, 10}, {30, 20}, {50, 40}}
	img := starImage(64, 64, stars)

	m, stats, err := FromImage(img, 3.0, 0)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	if m.Width() != 64 || m.Height() != 64 {
		t.Fatalf("Expected 64x64 mask, got %dx%d", m.Width(), m.Height())
	}

	if stats.Threshold <= stats.Median {
		t.Errorf("Expected threshold above the median background, got %f <= %f",
			stats.Threshold, stats.Median)
	}

	for _, s := range stars {
		if !m.Foreground(s.X, s.Y) {
			t.Errorf("Expected star pixel (%d,%d) to be foreground", s.X, s.Y)
		}
	}

	if !(stats.Foreground >= len(stars)) {
		t.Errorf("Expected at least %d foreground cells, got %d", len(stars), stats.Foreground)
	}

	// Background pixels far from any star must stay background
	if m.Foreground(0, 63) {
		t.Errorf("Expected background pixel to stay background")
	}
}

// TestFromImageBlur ensures noise reduction keeps a multi-pixel star
// detectable while the mask dimensions are preserved
func TestFromImageBlur(t *testing.T) {
	// A 2x2 bright block survives a small Gaussian blur
	stars := []image.Point{{20, 20}, {21, 20}, {20, 21}, {21, 21}}
	img := starImage(64, 64, stars)

	m, _, err := FromImage(img, 2.5, 1)
	if err != nil {
		t.Fatalf("FromImage with blur failed: %v", err)
	}

	if m.Width() != 64 || m.Height() != 64 {
		t.Fatalf("Blur changed mask dimensions to %dx%d", m.Width(), m.Height())
	}

	found := false
	for _, s := range stars {
		if m.Foreground(s.X, s.Y) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected the blurred star block to remain foreground")
	}
}
