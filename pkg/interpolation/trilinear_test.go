package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

// grid is a dense test field evaluated from a closure.
type grid struct {
	nx, ny, nz int
	fn         func(i, j, k int) float64
}

func (g grid) Shape() (int, int, int) { return g.nx, g.ny, g.nz }
func (g grid) At(i, j, k int) float64 { return g.fn(i, j, k) }

func linearField() grid {
	return grid{nx: 4, ny: 5, nz: 6, fn: func(i, j, k int) float64 {
		return 2*float64(i) - 3*float64(j) + 0.5*float64(k) + 1
	}}
}

func TestTrilinearReproducesLinearField(t *testing.T) {
	f := linearField()
	points := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1.25, Y: 2.5, Z: 4.75},
		{X: 3, Y: 4, Z: 5},
		{X: 2.999, Y: 0.001, Z: 2},
	}
	for _, p := range points {
		want := 2*p.X - 3*p.Y + 0.5*p.Z + 1
		assert.InDelta(t, want, Trilinear(f, p), 1e-12, "at %v", p)
	}

	// Points outside the grid clamp onto its boundary
	assert.InDelta(t, f.At(0, 0, 0), Trilinear(f, r3.Vec{X: -1, Y: -1, Z: -1}), 1e-12)
	assert.InDelta(t, f.At(3, 4, 5), Trilinear(f, r3.Vec{X: 9, Y: 9, Z: 9}), 1e-12)
}

func TestGradientOfLinearField(t *testing.T) {
	f := linearField()
	want := r3.Vec{X: 2, Y: -3, Z: 0.5}

	for _, c := range [][3]int{{0, 0, 0}, {1, 2, 3}, {3, 4, 5}} {
		g := CornerGradient(f, c[0], c[1], c[2])
		assert.InDelta(t, 0, r3.Norm(r3.Sub(g, want)), 1e-12, "corner %v", c)
	}

	g := Gradient(f, r3.Vec{X: 1.5, Y: 0.25, Z: 4.5})
	assert.InDelta(t, 0, r3.Norm(r3.Sub(g, want)), 1e-12)
}

func TestGradientOfQuadratic(t *testing.T) {
	f := grid{nx: 9, ny: 9, nz: 9, fn: func(i, j, k int) float64 {
		x := float64(i) - 4
		return x * x
	}}
	// Central differences are exact for quadratics at interior samples
	g := CornerGradient(f, 6, 4, 4)
	assert.InDelta(t, 4.0, g.X, 1e-12)
	assert.InDelta(t, 0.0, g.Y, 1e-12)

	// Blending between samples 5 and 6 stays between their gradients
	b := Gradient(f, r3.Vec{X: 5.5, Y: 4, Z: 4})
	assert.InDelta(t, 3.0, b.X, 1e-12)
}
