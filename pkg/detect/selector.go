package detect

import (
	"math"
	"sort"

	"starquads/pkg/geometry"
	"starquads/pkg/spatial"
)

// SelectStars picks up to maxStars components ordered by area descending
// (area is the brightness proxy), optionally enforcing a minimum pairwise
// separation given as a percentage of the image's taxicab diagonal
// (width + height).
//
// With no separation requested the top maxStars are taken directly.
// Otherwise the sorted list is scanned greedily: a candidate is accepted
// only when no previously accepted centroid lies within the separation
// distance, and the index of accepted centroids is rebuilt after each
// acceptance. The rebuild cost is negligible because the accepted set is
// small compared to the candidate set being filtered.
//
// A candidate without a valid centroid is skipped. minDistancePercent of
// zero disables the constraint.
func SelectStars(candidates []Properties, maxStars int, minDistancePercent float64, width, height int) []Properties {
	if maxStars <= 0 || len(candidates) == 0 {
		return nil
	}

	sorted := make([]Properties, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area > sorted[j].Area
	})

	if minDistancePercent <= 0 {
		if len(sorted) > maxStars {
			sorted = sorted[:maxStars]
		}
		return sorted
	}

	minDistance := minDistancePercent / 100 * float64(width+height)

	selected := make([]Properties, 0, maxStars)
	index := spatial.Build(nil)
	for _, cand := range sorted {
		if len(selected) >= maxStars {
			break
		}
		if !validCentroid(cand) {
			continue
		}
		if index.HasPointWithinDistance(cand.Centroid, minDistance) {
			continue
		}

		selected = append(selected, cand)
		index = rebuildIndex(selected)
	}

	return selected
}

// validCentroid rejects candidates whose centroid failed to compute.
func validCentroid(p Properties) bool {
	return !math.IsNaN(p.Centroid.X) && !math.IsNaN(p.Centroid.Y) && p.Area > 0
}

// rebuildIndex reconstructs the spatial index over the accepted
// centroids from scratch.
func rebuildIndex(selected []Properties) *spatial.KDTree {
	centroids := make([]geometry.Point2D, len(selected))
	for i, s := range selected {
		centroids[i] = s.Centroid
	}
	return spatial.Build(centroids)
}
