// Package spatial provides a 2D k-d tree over geometry.Point2D used for
// nearest-neighbor, k-nearest-neighbor and range queries during star
// selection and quad construction.
//
// All distance comparisons inside the tree use the taxicab (Manhattan)
// metric. This is a deliberate simplification: the axis-aligned distance
// to a splitting plane is a valid lower bound on the taxicab distance to
// any point beyond it, which keeps the pruning rule a single subtraction.
// Quad geometry downstream uses the Euclidean metric instead; the two are
// intentionally not unified.
package spatial

import (
	"sort"

	"starquads/pkg/geometry"
)

// node is a single k-d tree node. The stored depth selects the splitting
// axis: x on even depths, y on odd depths.
type node struct {
	point geometry.Point2D
	depth int
	left  *node
	right *node
}

// axisValue returns the coordinate of p along the node's splitting axis.
func (n *node) axisValue(p geometry.Point2D) float64 {
	if n.depth%2 == 0 {
		return p.X
	}
	return p.Y
}

// KDTree is a binary spatial index over 2D points. The tree holds plain
// point values and no external references; rebuilding replaces the whole
// structure. The zero value is an empty tree.
type KDTree struct {
	root *node
}

// Build constructs a balanced tree from the given points in O(n log n)
// via recursive median splits. An empty or nil input yields an empty
// tree, for which all queries return empty results.
func Build(points []geometry.Point2D) *KDTree {
	owned := make([]geometry.Point2D, len(points))
	copy(owned, points)
	return &KDTree{root: build(owned, 0)}
}

func build(points []geometry.Point2D, depth int) *node {
	if len(points) == 0 {
		return nil
	}

	// Sort by the splitting axis, breaking ties on the other axis so the
	// resulting structure is deterministic for a given input ordering.
	if depth%2 == 0 {
		sort.Slice(points, func(i, j int) bool {
			if points[i].X != points[j].X {
				return points[i].X < points[j].X
			}
			return points[i].Y < points[j].Y
		})
	} else {
		sort.Slice(points, func(i, j int) bool {
			if points[i].Y != points[j].Y {
				return points[i].Y < points[j].Y
			}
			return points[i].X < points[j].X
		})
	}

	mid := len(points) / 2
	return &node{
		point: points[mid],
		depth: depth,
		left:  build(points[:mid], depth+1),
		right: build(points[mid+1:], depth+1),
	}
}

// IsEmpty reports whether the tree contains no points. O(1).
func (t *KDTree) IsEmpty() bool {
	return t == nil || t.root == nil
}

// Count returns the number of points in the tree by traversal. O(n).
func (t *KDTree) Count() int {
	if t == nil {
		return 0
	}
	return count(t.root)
}

func count(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + count(n.left) + count(n.right)
}

// NearestNeighbor returns the point closest to query by taxicab distance.
// The second return value is false when the tree is empty.
func (t *KDTree) NearestNeighbor(query geometry.Point2D) (geometry.Point2D, bool) {
	if t.IsEmpty() {
		return geometry.Point2D{}, false
	}

	best := t.root.point
	bestDist := query.TaxicabDistance(best)
	nearest(t.root, query, &best, &bestDist)
	return best, true
}

func nearest(n *node, query geometry.Point2D, best *geometry.Point2D, bestDist *float64) {
	if n == nil {
		return
	}

	if d := query.TaxicabDistance(n.point); d < *bestDist {
		*bestDist = d
		*best = n.point
	}

	// Descend toward the half-space containing the query first, then only
	// visit the sibling if the perpendicular distance to the splitting
	// plane beats the current best.
	planeDist := n.axisValue(query) - n.axisValue(n.point)
	near, far := n.left, n.right
	if planeDist > 0 {
		near, far = n.right, n.left
	}

	nearest(near, query, best, bestDist)
	if abs(planeDist) < *bestDist {
		nearest(far, query, best, bestDist)
	}
}

// KNearestNeighbors returns up to k points sorted ascending by taxicab
// distance to query. Ties are broken by traversal order: a later point
// only displaces an earlier candidate when it is strictly closer.
func (t *KDTree) KNearestNeighbors(query geometry.Point2D, k int) []geometry.Point2D {
	if t.IsEmpty() || k <= 0 {
		return nil
	}

	c := &candidateSet{max: k}
	knn(t.root, query, c)

	result := make([]geometry.Point2D, len(c.points))
	for i, cand := range c.points {
		result[i] = cand.point
	}
	return result
}

type candidate struct {
	point geometry.Point2D
	dist  float64
}

// candidateSet keeps the best max candidates seen so far, sorted
// ascending by distance.
type candidateSet struct {
	points []candidate
	max    int
}

func (c *candidateSet) worst() float64 {
	return c.points[len(c.points)-1].dist
}

func (c *candidateSet) full() bool {
	return len(c.points) == c.max
}

func (c *candidateSet) add(p geometry.Point2D, dist float64) {
	if c.full() {
		if dist >= c.worst() {
			return
		}
		c.points = c.points[:len(c.points)-1]
	}

	at := sort.Search(len(c.points), func(i int) bool { return c.points[i].dist > dist })
	c.points = append(c.points, candidate{})
	copy(c.points[at+1:], c.points[at:])
	c.points[at] = candidate{point: p, dist: dist}
}

func knn(n *node, query geometry.Point2D, c *candidateSet) {
	if n == nil {
		return
	}

	c.add(n.point, query.TaxicabDistance(n.point))

	planeDist := n.axisValue(query) - n.axisValue(n.point)
	near, far := n.left, n.right
	if planeDist > 0 {
		near, far = n.right, n.left
	}

	knn(near, query, c)
	if !c.full() || abs(planeDist) < c.worst() {
		knn(far, query, c)
	}
}

// PointsWithinDistance returns every point whose taxicab distance to
// query is at most maxDistance, in traversal order.
func (t *KDTree) PointsWithinDistance(query geometry.Point2D, maxDistance float64) []geometry.Point2D {
	if t.IsEmpty() {
		return nil
	}

	var result []geometry.Point2D
	within(t.root, query, maxDistance, func(p geometry.Point2D) bool {
		result = append(result, p)
		return true
	})
	return result
}

// HasPointWithinDistance reports whether any point lies within
// maxDistance of query (taxicab), exiting as soon as one is found.
func (t *KDTree) HasPointWithinDistance(query geometry.Point2D, maxDistance float64) bool {
	if t.IsEmpty() {
		return false
	}

	found := false
	within(t.root, query, maxDistance, func(geometry.Point2D) bool {
		found = true
		return false
	})
	return found
}

// within performs a pruned range search, invoking visit for every match.
// A false return from visit aborts the search early.
func within(n *node, query geometry.Point2D, maxDistance float64, visit func(geometry.Point2D) bool) bool {
	if n == nil {
		return true
	}

	if query.TaxicabDistance(n.point) <= maxDistance {
		if !visit(n.point) {
			return false
		}
	}

	planeDist := n.axisValue(query) - n.axisValue(n.point)
	near, far := n.left, n.right
	if planeDist > 0 {
		near, far = n.right, n.left
	}

	if !within(near, query, maxDistance, visit) {
		return false
	}
	if abs(planeDist) <= maxDistance {
		return within(far, query, maxDistance, visit)
	}
	return true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
