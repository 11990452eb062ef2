package mesh

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/internal/d3"
)

// SurfaceArea returns the total area of the triangles described by
// vertices and faces, summing 0.5*|cross(v1-v0, v2-v0)| per face. An empty
// face list has zero area.
func SurfaceArea(vertices []r3.Vec, faces [][3]int) (float64, error) {
	areas, err := TriangleAreas(vertices, faces)
	if err != nil {
		return 0, err
	}
	return floats.Sum(areas), nil
}

// TriangleAreas returns the area of each face.
func TriangleAreas(vertices []r3.Vec, faces [][3]int) ([]float64, error) {
	if err := checkFaces(len(vertices), faces); err != nil {
		return nil, err
	}
	areas := make([]float64, len(faces))
	for i, f := range faces {
		areas[i] = d3.Triangle{vertices[f[0]], vertices[f[1]], vertices[f[2]]}.Area()
	}
	return areas, nil
}

// Area returns the surface area of the mesh.
func (m *Mesh) Area() (float64, error) {
	return SurfaceArea(m.Vertices, m.Faces)
}
