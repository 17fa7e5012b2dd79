package detect

import (
	"math"
	"testing"

	"starquads/pkg/geometry"
)

// starAt builds a Properties record directly, since the selector only
// consumes area and centroid
func starAt(x, y, area float64) Properties {
	return Properties{
		Area:     area,
		Centroid: geometry.Point2D{X: x, Y: y},
	}
}

// TestSelectTopByArea verifies plain brightness-ranked selection when no
// separation is requested
func TestSelectTopByArea(t *testing.T) {
	candidates := []Properties{
		starAt(0, 0, 5),
		starAt(1, 1, 50),
		starAt(2, 2, 20),
		starAt(3, 3, 35),
	}

	got := SelectStars(candidates, 3, 0, 100, 100)
	if len(got) != 3 {
		t.Fatalf("Expected 3 stars, got %d", len(got))
	}

	wantAreas := []float64{50, 35, 20}
	for i, w := range wantAreas {
		if got[i].Area != w {
			t.Errorf("selected[%d].Area = %f, want %f", i, got[i].Area, w)
		}
	}
}

// TestSelectFewerCandidates returns everything when maxStars exceeds the
// candidate count
func TestSelectFewerCandidates(t *testing.T) {
	candidates := []Properties{starAt(0, 0, 1), starAt(5, 5, 2)}

	got := SelectStars(candidates, 10, 0, 100, 100)
	if len(got) != 2 {
		t.Errorf("Expected 2 stars, got %d", len(got))
	}
}

// TestSelectSeparationConstraint checks a crowded field: 10 candidates
// on a 1000×1000 image with a 5%% minimum separation (100 px taxicab)
// must yield a set whose pairwise taxicab distances are all ≥ 100
func TestSelectSeparationConstraint(t *testing.T) {
	candidates := []Properties{
		starAt(100, 100, 100),
		starAt(130, 120, 90), // within 100 of the first, must be rejected
		starAt(500, 500, 80),
		starAt(520, 530, 70), // within 100 of (500,500)
		starAt(900, 900, 60),
		starAt(100, 900, 50),
		starAt(900, 100, 40),
		starAt(140, 110, 30), // within 100 of the first
		starAt(500, 100, 20),
		starAt(100, 500, 10),
	}

	got := SelectStars(candidates, 10, 5, 1000, 1000)
	if len(got) == 0 {
		t.Fatalf("Expected a non-empty selection")
	}

	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			d := got[i].Centroid.TaxicabDistance(got[j].Centroid)
			if d < 100 {
				t.Errorf("stars %d and %d are %f apart, want >= 100", i, j, d)
			}
		}
	}

	// The brightest star always survives, and its near neighbors must not
	if got[0].Area != 100 {
		t.Errorf("Expected the brightest star first, got area %f", got[0].Area)
	}
	for _, s := range got {
		if s.Area == 90 || s.Area == 30 {
			t.Errorf("Star with area %f violates the separation constraint", s.Area)
		}
	}
}

// TestSelectMaxStarsCap stops accepting once maxStars is reached
func TestSelectMaxStarsCap(t *testing.T) {
	var candidates []Properties
	for i := 0; i < 20; i++ {
		candidates = append(candidates, starAt(float64(i*200), float64(i*200), float64(100-i)))
	}

	got := SelectStars(candidates, 4, 1, 1000, 1000)
	if len(got) != 4 {
		t.Errorf("Expected selection capped at 4, got %d", len(got))
	}
}

// TestSelectSkipsInvalidCentroid drops candidates whose centroid failed
// to compute
func TestSelectSkipsInvalidCentroid(t *testing.T) {
	bad := Properties{Area: 99, Centroid: geometry.Point2D{X: math.NaN(), Y: 0}}
	candidates := []Properties{bad, starAt(10, 10, 5)}

	got := SelectStars(candidates, 5, 1, 100, 100)
	if len(got) != 1 {
		t.Fatalf("Expected 1 valid star, got %d", len(got))
	}
	if got[0].Area != 5 {
		t.Errorf("Expected the valid star to survive, got area %f", got[0].Area)
	}
}

// TestSelectZeroPercentDisables ensures 0%% keeps arbitrarily close stars
func TestSelectZeroPercentDisables(t *testing.T) {
	candidates := []Properties{starAt(0, 0, 2), starAt(1, 0, 1)}

	got := SelectStars(candidates, 2, 0, 1000, 1000)
	if len(got) != 2 {
		t.Errorf("Expected both stars with the constraint disabled, got %d", len(got))
	}
}
