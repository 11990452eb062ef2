// Package mesh holds the indexed triangle mesh produced by isosurface
// extraction together with measurements and clean-up passes over it.
package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/internal/d3"
)

var (
	// ErrInvalidFace is returned when a face references a vertex index
	// outside the vertex array.
	ErrInvalidFace = errors.New("invalid face")

	// ErrAttributeLength is returned when normals or values are present
	// but do not match the vertex count.
	ErrAttributeLength = errors.New("attribute length does not match vertex count")
)

// Mesh is an indexed triangle mesh. Normals and Values are optional; when
// present they hold one entry per vertex.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
	Normals  []r3.Vec
	Values   []float64
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int { return len(m.Faces) }

// IsEmpty reports whether the mesh has no faces.
func (m *Mesh) IsEmpty() bool { return len(m.Faces) == 0 }

// Triangle returns the corner positions of face i.
func (m *Mesh) Triangle(i int) d3.Triangle {
	f := m.Faces[i]
	return d3.Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Validate checks face indices and attribute lengths.
func (m *Mesh) Validate() error {
	if err := checkFaces(len(m.Vertices), m.Faces); err != nil {
		return err
	}
	if m.Normals != nil && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrAttributeLength, len(m.Normals), len(m.Vertices))
	}
	if m.Values != nil && len(m.Values) != len(m.Vertices) {
		return fmt.Errorf("%w: %d values for %d vertices", ErrAttributeLength, len(m.Values), len(m.Vertices))
	}
	return nil
}

func checkFaces(n int, faces [][3]int) error {
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidFace, i, idx, n)
			}
		}
	}
	return nil
}

// Bounds returns the axis aligned bounding box of the vertices. It
// returns zero vectors for a mesh without vertices.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	set := d3.Set(m.Vertices)
	return set.Min(), set.Max()
}

// Compact drops vertices no face references and renumbers the faces,
// keeping the relative order of the surviving vertices.
func (m *Mesh) Compact() {
	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	for _, f := range m.Faces {
		for _, idx := range f {
			remap[idx] = 0
		}
	}
	n := 0
	for i, r := range remap {
		if r < 0 {
			continue
		}
		remap[i] = n
		m.Vertices[n] = m.Vertices[i]
		if m.Normals != nil {
			m.Normals[n] = m.Normals[i]
		}
		if m.Values != nil {
			m.Values[n] = m.Values[i]
		}
		n++
	}
	m.Vertices = m.Vertices[:n]
	if m.Normals != nil {
		m.Normals = m.Normals[:n]
	}
	if m.Values != nil {
		m.Values = m.Values[:n]
	}
	for i, f := range m.Faces {
		m.Faces[i] = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
}

// FlipWinding reverses the orientation of every face.
func (m *Mesh) FlipWinding() {
	for i, f := range m.Faces {
		m.Faces[i] = [3]int{f[0], f[2], f[1]}
	}
}
