package marching

import (
	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/internal/d3"
	"volmesh/pkg/mesh"
)

// transform moves vertices from index space to physical space and orients
// the mesh. Triangles leave the sweep facing lower values; Descent keeps
// that winding and negates the gradient normals, Ascent flips the winding
// and keeps them.
func transform(m *mesh.Mesh, spacing r3.Vec, dir GradientDirection) {
	if spacing != d3.Elem(1) {
		for i, v := range m.Vertices {
			m.Vertices[i] = d3.MulElem(v, spacing)
		}
	}
	switch dir {
	case Descent:
		for i, n := range m.Normals {
			m.Normals[i] = r3.Scale(-1, n)
		}
	case Ascent:
		m.FlipWinding()
	}
}
