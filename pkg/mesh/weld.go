package mesh

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// point is a mesh vertex stored in a k-d tree.
type point struct {
	r3.Vec
	index int
}

// Compare implements the kdtree.Comparable interface
func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p point) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points
func (p point) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.Vec, c.(point).Vec))
}

// points satisfies kdtree.Interface
type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p points) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(plane{points: p, Dim: d}, kdtree.MedianOfRandoms(plane{points: p, Dim: d}, 100))
}

// plane implements sort.Interface and kdtree.SortSlicer for points
type plane struct {
	points
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.points[i].X < p.points[j].X
	case 1:
		return p.points[i].Y < p.points[j].Y
	case 2:
		return p.points[i].Z < p.points[j].Z
	default:
		panic("illegal dimension")
	}
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{points: p.points[start:end], Dim: p.Dim}
}

func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

// Weld merges vertices closer than tol into the lowest indexed vertex of
// their neighbourhood, drops faces that collapse to fewer than three
// distinct vertices and compacts the vertex array. It returns the number
// of vertices removed.
//
// Welding makes coincident vertices produced at grid samples that lie
// exactly on the level share one index.
func (m *Mesh) Weld(tol float64) int {
	n := len(m.Vertices)
	if n == 0 || tol < 0 {
		return 0
	}
	pts := make(points, n)
	for i, v := range m.Vertices {
		pts[i] = point{Vec: v, index: i}
	}
	tree := kdtree.New(pts, false)

	target := make([]int, n)
	for i := range target {
		target[i] = -1
	}
	for i, v := range m.Vertices {
		if target[i] >= 0 {
			continue
		}
		target[i] = i
		keeper := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keeper, point{Vec: v, index: i})
		for _, item := range keeper.Heap {
			// Skip the sentinel value
			if item.Comparable == nil {
				continue
			}
			j := item.Comparable.(point).index
			if target[j] < 0 {
				target[j] = i
			}
		}
	}

	faces := m.Faces[:0]
	for _, f := range m.Faces {
		w := [3]int{target[f[0]], target[f[1]], target[f[2]]}
		if w[0] == w[1] || w[1] == w[2] || w[2] == w[0] {
			continue
		}
		faces = append(faces, w)
	}
	m.Faces = faces
	m.Compact()
	return n - len(m.Vertices)
}
