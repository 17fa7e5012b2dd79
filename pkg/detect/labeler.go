// Package detect groups foreground pixels into connected components,
// measures their shape statistics through image moments, and selects the
// brightest components under a minimum-separation constraint.
package detect

import (
	"starquads/pkg/geometry"
)

// Component is a set of pixel coordinates sharing 8-connectivity. A
// component is never empty and is immutable after labeling; the order of
// its pixels carries no meaning.
type Component struct {
	Pixels []geometry.PixelCoordinate `json:"pixels"`
}

// Area returns the pixel count of the component.
func (c Component) Area() int {
	return len(c.Pixels)
}

// eightNeighborhood enumerates the offsets of the 8-connected neighbors,
// including diagonals.
var eightNeighborhood = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Label groups an unordered coordinate list into 8-connected components
// using union-find. Neighbor membership is resolved in O(1) through a
// dictionary keyed on the integer-encoded coordinate, giving O(n log n)
// overall for the connectivity pass (the union-find overhead itself is
// near-constant).
//
// An empty input yields zero components. The input ordering does not
// affect the component contents, only the order in which components are
// emitted.
func Label(pixels []geometry.PixelCoordinate) []Component {
	if len(pixels) == 0 {
		return nil
	}

	index := make(map[int64]int, len(pixels))
	for i, p := range pixels {
		index[p.Key()] = i
	}

	uf := newUnionFind(len(pixels))
	for i, p := range pixels {
		for _, d := range eightNeighborhood {
			if j, ok := index[p.Offset(d[0], d[1]).Key()]; ok {
				uf.union(i, j)
			}
		}
	}

	// Group indices by root, preserving first-encounter order of roots.
	groups := make(map[int][]geometry.PixelCoordinate)
	order := make([]int, 0)
	for i, p := range pixels {
		root := uf.find(i)
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], p)
	}

	components := make([]Component, 0, len(order))
	for _, root := range order {
		components = append(components, Component{Pixels: groups[root]})
	}
	return components
}

// unionFind is a disjoint-set forest with path compression and
// union by rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]] // path compression
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}

	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}
