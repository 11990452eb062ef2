package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyMesh is returned by measurements that need at least one vertex.
var ErrEmptyMesh = errors.New("empty mesh")

// Axes describes the spread of a vertex cloud: its centroid and the
// principal directions sorted by decreasing variance.
type Axes struct {
	Centroid   r3.Vec
	Directions [3]r3.Vec
	Variances  [3]float64
}

// PrincipalAxes computes the eigen decomposition of the vertex covariance.
func (m *Mesh) PrincipalAxes() (Axes, error) {
	n := len(m.Vertices)
	if n == 0 {
		return Axes{}, ErrEmptyMesh
	}
	data := mat.NewDense(n, 3, nil)
	for i, v := range m.Vertices {
		data.SetRow(i, []float64{v.X, v.Y, v.Z})
	}

	var axes Axes
	axes.Centroid = r3.Vec{
		X: stat.Mean(mat.Col(nil, 0, data), nil),
		Y: stat.Mean(mat.Col(nil, 1, data), nil),
		Z: stat.Mean(mat.Col(nil, 2, data), nil),
	}
	if n == 1 {
		axes.Directions = [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
		return axes, nil
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return Axes{}, fmt.Errorf("eigen decomposition of vertex covariance failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// EigenSym returns ascending eigenvalues
	for i := 0; i < 3; i++ {
		col := 2 - i
		axes.Variances[i] = values[col]
		axes.Directions[i] = r3.Vec{
			X: vectors.At(0, col),
			Y: vectors.At(1, col),
			Z: vectors.At(2, col),
		}
	}
	return axes, nil
}
