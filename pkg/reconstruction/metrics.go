package reconstruction

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"volmesh/pkg/mesh"
)

// Metrics summarises an extracted mesh.
type Metrics struct {
	// Level is the isovalue the mesh was extracted at
	Level float64

	// Vertices and Triangles count the final mesh
	Vertices, Triangles int

	// Welded is the number of vertices merged by welding
	Welded int

	// Area is the total surface area
	Area float64

	// TriangleAreaMean and TriangleAreaStdDev describe the facet sizes
	TriangleAreaMean, TriangleAreaStdDev float64

	// EdgeLengthMean and EdgeLengthStdDev describe the facet edges, each
	// edge counted once per face using it
	EdgeLengthMean, EdgeLengthStdDev float64

	// Watertight and Oriented report the surface topology
	Watertight, Oriented bool

	// Components is the number of connected pieces
	Components int

	// EulerCharacteristic is V - E + F; 2 per closed sphere-like piece
	EulerCharacteristic int

	// Min and Max are the corners of the axis aligned bounding box
	Min, Max r3.Vec

	// Extent is the length of the mesh along its principal axes, largest
	// first
	Extent [3]float64
}

// ComputeMetrics measures m. An empty mesh yields zero metrics.
func ComputeMetrics(m *mesh.Mesh) (Metrics, error) {
	met := Metrics{Vertices: m.VertexCount(), Triangles: m.TriangleCount()}
	if m.IsEmpty() {
		return met, nil
	}

	areas, err := mesh.TriangleAreas(m.Vertices, m.Faces)
	if err != nil {
		return met, err
	}
	met.TriangleAreaMean, met.TriangleAreaStdDev = stat.MeanStdDev(areas, nil)
	met.Area = floats.Sum(areas)

	edges := make([]float64, 0, 3*len(m.Faces))
	for i := range m.Faces {
		t := m.Triangle(i)
		for k := 0; k < 3; k++ {
			edges = append(edges, r3.Norm(r3.Sub(t[(k+1)%3], t[k])))
		}
	}
	met.EdgeLengthMean, met.EdgeLengthStdDev = stat.MeanStdDev(edges, nil)

	topo := m.Topology()
	met.Watertight = topo.Watertight()
	met.Oriented = topo.Oriented()
	met.Components = topo.Components
	met.EulerCharacteristic = m.EulerCharacteristic()
	met.Min, met.Max = m.Bounds()

	axes, err := m.PrincipalAxes()
	if err != nil {
		return met, err
	}
	for k, dir := range axes.Directions {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range m.Vertices {
			d := r3.Dot(r3.Sub(v, axes.Centroid), dir)
			lo, hi = math.Min(lo, d), math.Max(hi, d)
		}
		met.Extent[k] = hi - lo
	}
	return met, nil
}
