package marching

import "volmesh/pkg/mesh"

// degenerateTol is the collinearity tolerance, relative to the squared
// longest edge of a triangle.
const degenerateTol = 1e-10

// dropDegenerate removes triangles with a repeated index or zero area and
// then the vertices left unreferenced. It returns the number of triangles
// removed.
func dropDegenerate(m *mesh.Mesh) int {
	kept := m.Faces[:0]
	for i, f := range m.Faces {
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		if m.Triangle(i).Degenerate(degenerateTol) {
			continue
		}
		kept = append(kept, f)
	}
	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	if removed > 0 {
		m.Compact()
	}
	return removed
}
