package pipeline

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"starquads/pkg/mask"
)

func newTestPipeline(t *testing.T, params Params) *Pipeline {
	t.Helper()
	p, err := New(params, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

// maskWithStars builds a mask with single-pixel stars at the given
// coordinates
func maskWithStars(t *testing.T, width, height int, coords [][2]int) *mask.Mask {
	t.Helper()
	m, err := mask.New(width, height)
	if err != nil {
		t.Fatalf("mask.New failed: %v", err)
	}
	for _, c := range coords {
		m.Set(c[0], c[1], 1)
	}
	return m
}

// TestRunEndToEnd drives the full chain over five isolated stars in
// general position. With k=4 every seed sees all other stars, so the 5
// possible 4-star subsets surface exactly once: 4 quads from the first
// seed and 1 from the second, later seeds contributing only duplicates.
func TestRunEndToEnd(t *testing.T) {
	coords := [][2]int{
		{10, 10}, {30, 170}, {150, 40}, {180, 160}, {90, 80},
	}
	m := maskWithStars(t, 200, 200, coords)

	p := newTestPipeline(t, Params{MaxStars: 5, MinDistancePercent: 0, KNeighbors: 4})
	result, err := p.Run(m)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Width != 200 || result.Height != 200 {
		t.Errorf("Expected 200x200 result, got %dx%d", result.Width, result.Height)
	}
	if result.TotalComponents != 5 {
		t.Errorf("Expected 5 components, got %d", result.TotalComponents)
	}
	if len(result.Stars) != 5 {
		t.Errorf("Expected 5 selected stars, got %d", len(result.Stars))
	}
	if len(result.SeedQuads) != 2 {
		t.Fatalf("Expected 2 seed groups, got %d", len(result.SeedQuads))
	}
	if len(result.SeedQuads[0].Quads) != 4 || len(result.SeedQuads[1].Quads) != 1 {
		t.Errorf("Expected quad group sizes 4 and 1, got %d and %d",
			len(result.SeedQuads[0].Quads), len(result.SeedQuads[1].Quads))
	}
	if result.QuadCount != 5 {
		t.Errorf("Expected 5 quads in total, got %d", result.QuadCount)
	}

	// Single-pixel stars: every selected star reports unit area and a
	// centroid on the pixel itself
	for _, s := range result.Stars {
		if s.Area != 1 {
			t.Errorf("Expected unit area for a single-pixel star, got %f", s.Area)
		}
	}
}

// TestRunEmptyMask produces an empty result rather than an error
func TestRunEmptyMask(t *testing.T) {
	m, err := mask.New(64, 64)
	if err != nil {
		t.Fatalf("mask.New failed: %v", err)
	}

	p := newTestPipeline(t, DefaultParams())
	result, err := p.Run(m)
	if err != nil {
		t.Fatalf("Run failed on empty mask: %v", err)
	}

	if result.TotalComponents != 0 || len(result.Stars) != 0 || result.QuadCount != 0 {
		t.Errorf("Expected an empty result, got %+v", result)
	}
}

// TestRunNilMask surfaces the sentinel error
func TestRunNilMask(t *testing.T) {
	p := newTestPipeline(t, DefaultParams())
	if _, err := p.Run(nil); !errors.Is(err, ErrMissingMask) {
		t.Errorf("Expected ErrMissingMask, got %v", err)
	}
}

// TestNewValidation rejects out-of-range parameters with a typed error
func TestNewValidation(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		field  string
	}{
		{"zero maxStars", Params{MaxStars: 0, KNeighbors: 5}, "maxStars"},
		{"negative percent", Params{MaxStars: 10, MinDistancePercent: -1, KNeighbors: 5}, "minDistancePercent"},
		{"percent over 100", Params{MaxStars: 10, MinDistancePercent: 101, KNeighbors: 5}, "minDistancePercent"},
		{"too few neighbors", Params{MaxStars: 10, KNeighbors: 2}, "kNeighbors"},
	}

	for _, tc := range cases {
		_, err := New(tc.params, zerolog.Nop())
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		var paramErr *InvalidParamError
		if !errors.As(err, &paramErr) {
			t.Errorf("%s: expected InvalidParamError, got %T", tc.name, err)
			continue
		}
		if paramErr.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, paramErr.Field)
		}
	}
}

// TestDefaultParamsValid ensures the defaults pass their own validation
func TestDefaultParamsValid(t *testing.T) {
	if _, err := New(DefaultParams(), zerolog.Nop()); err != nil {
		t.Errorf("Default parameters rejected: %v", err)
	}
}

// TestRunAppliesSelection verifies maxStars limits the stars that feed
// quad generation
func TestRunAppliesSelection(t *testing.T) {
	var coords [][2]int
	for i := 0; i < 12; i++ {
		coords = append(coords, [2]int{10 + i*15, 10 + (i*37)%150})
	}
	m := maskWithStars(t, 200, 200, coords)

	p := newTestPipeline(t, Params{MaxStars: 6, MinDistancePercent: 0, KNeighbors: 3})
	result, err := p.Run(m)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.TotalComponents != 12 {
		t.Errorf("Expected 12 components, got %d", result.TotalComponents)
	}
	if len(result.Stars) != 6 {
		t.Errorf("Expected selection capped at 6 stars, got %d", len(result.Stars))
	}
}
