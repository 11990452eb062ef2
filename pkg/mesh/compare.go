package mesh

import (
	"math"
	"sort"
)

// Canonical returns the mesh as a list of 9-component triangles, each
// with its corners sorted lexicographically, and the list itself sorted.
// Two meshes describing the same triangles in any vertex or face order
// have equal canonical forms.
func (m *Mesh) Canonical() [][9]float64 {
	out := make([][9]float64, len(m.Faces))
	for i, f := range m.Faces {
		corners := [3][3]float64{}
		for c, idx := range f {
			v := m.Vertices[idx]
			corners[c] = [3]float64{v.X, v.Y, v.Z}
		}
		sort.Slice(corners[:], func(a, b int) bool { return lessTuple(corners[a][:], corners[b][:]) })
		for c := range corners {
			copy(out[i][3*c:], corners[c][:])
		}
	}
	sort.Slice(out, func(a, b int) bool { return lessTuple(out[a][:], out[b][:]) })
	return out
}

func lessTuple(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Equivalent reports whether a and b contain the same triangles up to
// face order, vertex order and winding, comparing coordinates with an
// absolute tolerance.
func Equivalent(a, b *Mesh, tol float64) bool {
	if len(a.Faces) != len(b.Faces) {
		return false
	}
	ca, cb := a.Canonical(), b.Canonical()
	for i := range ca {
		for c := range ca[i] {
			if math.Abs(ca[i][c]-cb[i][c]) > tol {
				return false
			}
		}
	}
	return true
}
