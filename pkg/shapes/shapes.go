// Package shapes generates synthetic scalar volumes with known
// isosurfaces, used to check extraction accuracy and to drive the CLI
// without input data.
package shapes

import (
	"errors"
	"fmt"
	"math"

	"volmesh/pkg/volume"
)

// ErrInvalidSize is returned for non-positive radii or grid sizes.
var ErrInvalidSize = errors.New("invalid shape size")

// FromFunc samples fn at every grid point of an nx*ny*nz volume.
func FromFunc(nx, ny, nz int, fn func(i, j, k int) float64) (*volume.Volume, error) {
	v, err := volume.Zeros(nx, ny, nz)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				v.Set(i, j, k, fn(i, j, k))
			}
		}
	}
	return v, nil
}

// axis returns the sample coordinates k*s for k in -K..K, with K chosen
// so at least one sample lies beyond the radius r on each side.
func axis(r, s float64) []float64 {
	k := int(math.Ceil(r/s)) + 1
	coords := make([]float64, 0, 2*k+1)
	for i := -k; i <= k; i++ {
		coords = append(coords, float64(i)*s)
	}
	return coords
}

// Ellipsoid returns the level set (x/a)^2 + (y/b)^2 + (z/c)^2 - 1 sampled
// on a grid centred on the origin with the given spacing (nil for unit
// spacing). The surface is the zero level; the inside is negative.
func Ellipsoid(a, b, c float64, spacing []float64) (*volume.Volume, error) {
	if !(a > 0 && b > 0 && c > 0) {
		return nil, fmt.Errorf("%w: semi-axes %v, %v, %v", ErrInvalidSize, a, b, c)
	}
	sp, err := volume.ParseSpacing(spacing)
	if err != nil {
		return nil, err
	}
	xs, ys, zs := axis(a, sp.X), axis(b, sp.Y), axis(c, sp.Z)
	return FromFunc(len(xs), len(ys), len(zs), func(i, j, k int) float64 {
		x, y, z := xs[i]/a, ys[j]/b, zs[k]/c
		return x*x + y*y + z*z - 1
	})
}

// Sphere returns the level set of a sphere of the given radius.
func Sphere(radius float64, spacing []float64) (*volume.Volume, error) {
	return Ellipsoid(radius, radius, radius, spacing)
}

// DoubleTorus returns the n*n*n sampling of two linked tori over the
// cube [-1.25, 1.25)^3, axis 0 running along z. The surface is the zero
// level; the tori hold the negative values. Many cubes on its surface have
// ambiguous faces, which makes it a test of topology handling.
func DoubleTorus(n int) (*volume.Volume, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: grid size %d", ErrInvalidSize, n)
	}
	const r = 16 - 1.85*1.85
	step, origin := 2.5/float64(n), -1.25
	return FromFunc(n, n, n, func(iz, iy, ix int) float64 {
		z := float64(iz)*step + origin
		y := float64(iy)*step + origin
		x := float64(ix)*step + origin

		xx, zz := 64*x*x, 64*z*z
		y1 := 8*y - 2
		y2 := y1 + 4
		t1 := xx + y1*y1 + zz + r
		t2 := xx + y2*y2 + zz + r
		return (t1*t1-64*(xx+y1*y1))*(t2*t2-64*(y2*y2+zz)) + 1025
	})
}
