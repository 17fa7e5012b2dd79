// Package quads builds rotation/scale/translation-invariant four-star
// descriptors ("quads") from a selected star field. Each descriptor is a
// geometric hash: matching a field against a reference catalog reduces
// to comparing these 4-number descriptors.
package quads

import (
	"math"

	"starquads/pkg/geometry"
	"starquads/pkg/spatial"
)

// StarInfo is a denormalized view of a selected component: its centroid,
// its area (the brightness proxy), and whether it acted as the seed of a
// quad-generation pass.
type StarInfo struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Area   float64 `json:"area"`
	IsSeed bool    `json:"isSeed"`
}

func (s StarInfo) point() geometry.Point2D {
	return geometry.Point2D{X: s.X, Y: s.Y}
}

// Descriptor is the canonical normalized quad hash (x3, y3, x4, y4) in
// baseline-relative coordinates: star 1 at the origin, star 2 at (1, 0).
type Descriptor [4]float64

// descriptorQuantum quantizes descriptor components for deduplication so
// that the same four stars reached through different seeds (and thus a
// slightly different floating-point evaluation order) still collide.
const descriptorQuantum = 1e9

type descriptorKey [4]int64

func (d Descriptor) key() descriptorKey {
	var k descriptorKey
	for i, v := range d {
		k[i] = int64(math.Round(v * descriptorQuantum))
	}
	return k
}

// Quad is a four-star combination with its canonical descriptor. Stars
// are ordered so that Stars[0] and Stars[1] form the maximum-distance
// pair (the baseline). The original image coordinates are retained for
// downstream overlay drawing; only the descriptor participates in
// matching.
type Quad struct {
	Stars      [4]StarInfo `json:"stars"`
	Distances  [6]float64  `json:"distances"`
	Descriptor Descriptor  `json:"descriptor"`

	// Degenerate marks a zero-length baseline. The descriptor is then
	// the identity value rather than a division-by-zero artifact.
	Degenerate bool `json:"degenerate,omitempty"`
}

// SeedQuad groups one seed star, its nearest neighbors, and the quads it
// contributed after global deduplication. Seeds whose quads were all
// duplicates of earlier seeds' quads are dropped entirely.
type SeedQuad struct {
	Seed      StarInfo   `json:"seed"`
	Neighbors []StarInfo `json:"neighbors"`
	Quads     []Quad     `json:"quads"`
}

// Build enumerates invariant quads over the selected stars.
//
// For every star taken as seed, the kNeighbors nearest other stars are
// found through the spatial index (taxicab metric), every combination of
// 3 of them plus the seed forms a candidate quad, and each candidate is
// normalized to its canonical descriptor. A global set of seen
// descriptors removes duplicates across seeds. Seeds with fewer than 3
// neighbors produce nothing.
func Build(stars []StarInfo, kNeighbors int) []SeedQuad {
	if len(stars) < 4 || kNeighbors < 3 {
		return nil
	}

	points := make([]geometry.Point2D, len(stars))
	byPoint := make(map[geometry.Point2D]StarInfo, len(stars))
	for i, s := range stars {
		points[i] = s.point()
		byPoint[points[i]] = s
	}

	tree := spatial.Build(points)
	seen := make(map[descriptorKey]struct{})

	var result []SeedQuad
	for _, s := range stars {
		seed := s
		seed.IsSeed = true

		// The query point itself comes back in the kNN result; ask for
		// one extra and drop it.
		nn := tree.KNearestNeighbors(seed.point(), kNeighbors+1)
		neighbors := make([]StarInfo, 0, kNeighbors)
		droppedSelf := false
		for _, p := range nn {
			if !droppedSelf && p == seed.point() {
				droppedSelf = true
				continue
			}
			neighbors = append(neighbors, byPoint[p])
		}
		if len(neighbors) > kNeighbors {
			neighbors = neighbors[:kNeighbors]
		}
		if len(neighbors) < 3 {
			continue
		}

		var quads []Quad
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				for k := j + 1; k < len(neighbors); k++ {
					q := makeQuad([4]StarInfo{seed, neighbors[i], neighbors[j], neighbors[k]})
					key := q.Descriptor.key()
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
					quads = append(quads, q)
				}
			}
		}

		if len(quads) > 0 {
			result = append(result, SeedQuad{
				Seed:      seed,
				Neighbors: neighbors,
				Quads:     quads,
			})
		}
	}

	return result
}

// TotalQuads counts the deduplicated quads across all seeds.
func TotalQuads(seedQuads []SeedQuad) int {
	n := 0
	for _, sq := range seedQuads {
		n += len(sq.Quads)
	}
	return n
}

// pairIndex enumerates the 6 unordered pairs of a 4-star set.
var pairIndex = [6][2]int{
	{0, 1}, {0, 2}, {0, 3},
	{1, 2}, {1, 3}, {2, 3},
}

// makeQuad orders a candidate 4-star set around its maximum-distance
// baseline and computes the canonical descriptor.
func makeQuad(stars [4]StarInfo) Quad {
	var dist [6]float64
	maxAt := 0
	for i, pair := range pairIndex {
		dist[i] = stars[pair[0]].point().EuclideanDistance(stars[pair[1]].point())
		if dist[i] > dist[maxAt] {
			maxAt = i
		}
	}

	// Reorder so the baseline pair comes first; the remaining two stars
	// keep their relative index order.
	a, b := pairIndex[maxAt][0], pairIndex[maxAt][1]
	ordered := [4]StarInfo{stars[a], stars[b]}
	at := 2
	for i := 0; i < 4; i++ {
		if i != a && i != b {
			ordered[at] = stars[i]
			at++
		}
	}

	q := Quad{Stars: ordered}
	for i, pair := range pairIndex {
		q.Distances[i] = ordered[pair[0]].point().EuclideanDistance(ordered[pair[1]].point())
	}

	q.Descriptor, q.Degenerate = canonical(
		ordered[0].point(), ordered[1].point(),
		ordered[2].point(), ordered[3].point(),
	)
	return q
}

// canonical normalizes the quad into baseline-relative coordinates and
// resolves the remaining symmetries.
//
// Translation puts s1 at the origin, rotation puts s2 on the positive
// x-axis, and scaling makes the baseline unit length. The baseline
// choice alone fixes neither which endpoint is s1, the sign of the
// rotation (mirror ambiguity), nor the order of the two non-baseline
// stars, so the endpoint-swap and vertical-reflection variants are
// generated with both orderings of the non-baseline pair and the
// lexicographically smallest tuple wins. Congruent quads reached from
// different seeds therefore canonicalize identically.
//
// A zero-length baseline cannot be normalized; the identity descriptor
// is returned with the degenerate flag set rather than dividing by zero.
func canonical(s1, s2, s3, s4 geometry.Point2D) (Descriptor, bool) {
	baseline := s1.EuclideanDistance(s2)
	if baseline < 1e-12 {
		return Descriptor{}, true
	}

	cos := (s2.X - s1.X) / baseline
	sin := (s2.Y - s1.Y) / baseline

	normalize := func(p geometry.Point2D) (float64, float64) {
		dx := p.X - s1.X
		dy := p.Y - s1.Y
		return (dx*cos + dy*sin) / baseline, (-dx*sin + dy*cos) / baseline
	}

	x3, y3 := normalize(s3)
	x4, y4 := normalize(s4)

	variants := [4]Descriptor{
		{x3, y3, x4, y4},
		{1 - x3, -y3, 1 - x4, -y4},
		{x3, -y3, x4, -y4},
		{1 - x3, y3, 1 - x4, y4},
	}

	best := variants[0]
	for _, v := range variants {
		if lexLess(v, best) {
			best = v
		}
		swapped := Descriptor{v[2], v[3], v[0], v[1]}
		if lexLess(swapped, best) {
			best = swapped
		}
	}
	return best, false
}

// lexLess compares descriptors componentwise: x3, then y3, x4, y4.
func lexLess(a, b Descriptor) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
