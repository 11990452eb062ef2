// Package interpolation samples a regular scalar grid at arbitrary points
// in index space: trilinear values and central-difference gradients.
package interpolation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a regularly sampled scalar field. *volume.Volume satisfies it.
type Field interface {
	Shape() (nx, ny, nz int)
	At(i, j, k int) float64
}

// cell locates p in the grid: the lower corner of the containing cell and
// the fractional position inside it. Points outside the grid are clamped
// onto its boundary.
func cell(f Field, p r3.Vec) (i, j, k int, fx, fy, fz float64) {
	nx, ny, nz := f.Shape()
	i, fx = locate(p.X, nx)
	j, fy = locate(p.Y, ny)
	k, fz = locate(p.Z, nz)
	return
}

func locate(x float64, n int) (int, float64) {
	if math.IsNaN(x) || x <= 0 {
		return 0, 0
	}
	if x >= float64(n-1) {
		return n - 2, 1
	}
	i := int(x)
	if i > n-2 {
		i = n - 2
	}
	return i, x - float64(i)
}

// Trilinear returns the trilinearly interpolated field value at p.
func Trilinear(f Field, p r3.Vec) float64 {
	i, j, k, fx, fy, fz := cell(f, p)
	c000 := f.At(i, j, k)
	c100 := f.At(i+1, j, k)
	c010 := f.At(i, j+1, k)
	c110 := f.At(i+1, j+1, k)
	c001 := f.At(i, j, k+1)
	c101 := f.At(i+1, j, k+1)
	c011 := f.At(i, j+1, k+1)
	c111 := f.At(i+1, j+1, k+1)

	c00 := lerp(c000, c100, fx)
	c10 := lerp(c010, c110, fx)
	c01 := lerp(c001, c101, fx)
	c11 := lerp(c011, c111, fx)
	return lerp(lerp(c00, c10, fy), lerp(c01, c11, fy), fz)
}

// CornerGradient returns the gradient at sample (i, j, k) in index units:
// central differences inside the grid, one-sided differences on its faces.
func CornerGradient(f Field, i, j, k int) r3.Vec {
	nx, ny, nz := f.Shape()
	return r3.Vec{
		X: diff(i, nx, func(a int) float64 { return f.At(a, j, k) }),
		Y: diff(j, ny, func(a int) float64 { return f.At(i, a, k) }),
		Z: diff(k, nz, func(a int) float64 { return f.At(i, j, a) }),
	}
}

func diff(a, n int, at func(int) float64) float64 {
	switch {
	case a == 0:
		return at(1) - at(0)
	case a == n-1:
		return at(n-1) - at(n-2)
	default:
		return 0.5 * (at(a+1) - at(a-1))
	}
}

// Gradient returns the trilinear blend of the corner gradients of the cell
// containing p, in index units.
func Gradient(f Field, p r3.Vec) r3.Vec {
	i, j, k, fx, fy, fz := cell(f, p)
	var g r3.Vec
	for c := 0; c < 8; c++ {
		dx, dy, dz := c&1, (c>>1)&1, (c>>2)&1
		w := weight(fx, dx) * weight(fy, dy) * weight(fz, dz)
		if w == 0 {
			continue
		}
		g = r3.Add(g, r3.Scale(w, CornerGradient(f, i+dx, j+dy, k+dz)))
	}
	return g
}

func weight(f float64, upper int) float64 {
	if upper == 1 {
		return f
	}
	return 1 - f
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
