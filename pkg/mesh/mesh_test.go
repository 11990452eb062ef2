package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// tetrahedron returns a closed, outward wound unit tetrahedron.
func tetrahedron() *Mesh {
	return &Mesh{
		Vertices: []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}},
		Faces:    [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
}

func TestSurfaceArea(t *testing.T) {
	m := tetrahedron()
	want := 1.5 + math.Sqrt(3)/2

	area, err := m.Area()
	require.NoError(t, err)
	assert.InDelta(t, want, area, 1e-12)

	// Winding does not change the area
	m.FlipWinding()
	flipped, err := m.Area()
	require.NoError(t, err)
	assert.InDelta(t, area, flipped, 1e-12)

	// Neither does renumbering the vertices
	perm := []int{2, 0, 3, 1}
	reordered := make([]r3.Vec, len(m.Vertices))
	for old, nu := range perm {
		reordered[nu] = m.Vertices[old]
	}
	faces := make([][3]int, len(m.Faces))
	for i, f := range m.Faces {
		faces[i] = [3]int{perm[f[0]], perm[f[1]], perm[f[2]]}
	}
	moved, err := SurfaceArea(reordered, faces)
	require.NoError(t, err)
	assert.InDelta(t, area, moved, 1e-12)
}

func TestSurfaceAreaEmptyAndInvalid(t *testing.T) {
	area, err := SurfaceArea(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, area)

	_, err = SurfaceArea([]r3.Vec{{}, {X: 1}}, [][3]int{{0, 1, 2}})
	assert.ErrorIs(t, err, ErrInvalidFace)

	_, err = SurfaceArea([]r3.Vec{{}, {X: 1}, {Y: 1}}, [][3]int{{0, -1, 2}})
	assert.ErrorIs(t, err, ErrInvalidFace)
}

func TestValidate(t *testing.T) {
	m := tetrahedron()
	require.NoError(t, m.Validate())

	m.Normals = make([]r3.Vec, 3)
	assert.ErrorIs(t, m.Validate(), ErrAttributeLength)

	m.Normals = nil
	m.Values = make([]float64, 5)
	assert.ErrorIs(t, m.Validate(), ErrAttributeLength)

	m.Values = nil
	m.Faces = append(m.Faces, [3]int{0, 1, 4})
	assert.ErrorIs(t, m.Validate(), ErrInvalidFace)
}

func TestTopology(t *testing.T) {
	m := tetrahedron()
	topo := m.Topology()
	assert.True(t, topo.Watertight())
	assert.True(t, topo.Oriented())
	assert.Equal(t, 6, topo.Edges)
	assert.Equal(t, 1, topo.Components)
	assert.Equal(t, 2, m.EulerCharacteristic())

	// Flipping a single face breaks orientation but not closure
	m.Faces[0] = [3]int{0, 1, 2}
	topo = m.Topology()
	assert.True(t, topo.Watertight())
	assert.False(t, topo.Oriented())

	// Removing a face opens three boundary edges
	open := tetrahedron()
	open.Faces = open.Faces[1:]
	topo = open.Topology()
	assert.False(t, topo.Watertight())
	assert.Equal(t, 3, topo.Boundary)
}

func TestCompact(t *testing.T) {
	m := &Mesh{
		Vertices: []r3.Vec{{X: 9}, {X: 0}, {X: 1}, {X: 9}, {Y: 1}},
		Values:   []float64{9, 0, 1, 9, 2},
		Faces:    [][3]int{{1, 2, 4}},
	}
	m.Compact()
	assert.Equal(t, []r3.Vec{{X: 0}, {X: 1}, {Y: 1}}, m.Vertices)
	assert.Equal(t, []float64{0, 1, 2}, m.Values)
	assert.Equal(t, [][3]int{{0, 1, 2}}, m.Faces)
}

func TestWeld(t *testing.T) {
	// Two triangles sharing an edge whose endpoints were duplicated
	m := &Mesh{
		Vertices: []r3.Vec{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
			{X: 1, Y: 0}, {X: 1e-9, Y: 1}, {X: 1, Y: 1},
		},
		Faces: [][3]int{{0, 1, 2}, {3, 5, 4}},
	}
	removed := m.Weld(1e-6)
	assert.Equal(t, 2, removed)
	assert.Len(t, m.Vertices, 4)
	require.Len(t, m.Faces, 2)
	assert.Equal(t, [3]int{1, 3, 2}, m.Faces[1])
	assert.Equal(t, 5, m.Topology().Edges)

	// Faces collapsing to a point disappear
	c := &Mesh{
		Vertices: []r3.Vec{{}, {X: 1e-9}, {Y: 1e-9}},
		Faces:    [][3]int{{0, 1, 2}},
	}
	c.Weld(1e-6)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.VertexCount())
}

func TestPrincipalAxes(t *testing.T) {
	m := &Mesh{Vertices: []r3.Vec{
		{X: -4, Y: 0, Z: 1}, {X: 4, Y: 0, Z: 1},
		{X: 0, Y: -1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}}
	axes, err := m.PrincipalAxes()
	require.NoError(t, err)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(axes.Centroid, r3.Vec{Z: 1})), 1e-12)
	assert.InDelta(t, 1, math.Abs(axes.Directions[0].X), 1e-9)
	assert.InDelta(t, 1, math.Abs(axes.Directions[1].Y), 1e-9)
	assert.InDelta(t, 1, math.Abs(axes.Directions[2].Z), 1e-9)
	assert.Greater(t, axes.Variances[0], axes.Variances[1])
	assert.InDelta(t, 0, axes.Variances[2], 1e-12)

	_, err = (&Mesh{}).PrincipalAxes()
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestEquivalent(t *testing.T) {
	a := tetrahedron()
	b := tetrahedron()
	b.FlipWinding()
	b.Faces[0], b.Faces[3] = b.Faces[3], b.Faces[0]
	assert.True(t, Equivalent(a, b, 1e-10))

	b.Vertices[3] = r3.Vec{Z: 1 + 1e-6}
	assert.False(t, Equivalent(a, b, 1e-10))
	assert.True(t, Equivalent(a, b, 1e-5))

	b.Faces = b.Faces[1:]
	assert.False(t, Equivalent(a, b, 1))
}

func TestBounds(t *testing.T) {
	lo, hi := tetrahedron().Bounds()
	assert.Equal(t, r3.Vec{}, lo)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, hi)
}
