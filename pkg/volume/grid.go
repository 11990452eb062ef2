package volume

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a volume together with the physical distance between samples
// along each axis.
type Grid struct {
	*Volume

	spacing r3.Vec
}

// NewGrid pairs v with spacing. A nil spacing means unit spacing.
func NewGrid(v *Volume, spacing []float64) (*Grid, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil volume", ErrInvalidShape)
	}
	sp, err := ParseSpacing(spacing)
	if err != nil {
		return nil, err
	}
	return &Grid{Volume: v, spacing: sp}, nil
}

// ParseSpacing validates a spacing triple. A nil slice yields (1, 1, 1).
func ParseSpacing(spacing []float64) (r3.Vec, error) {
	if spacing == nil {
		return r3.Vec{X: 1, Y: 1, Z: 1}, nil
	}
	if len(spacing) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: need 3 components, got %d", ErrInvalidSpacing, len(spacing))
	}
	for axis, s := range spacing {
		if !(s > 0) || math.IsInf(s, 0) {
			return r3.Vec{}, fmt.Errorf("%w: component %d is %v", ErrInvalidSpacing, axis, s)
		}
	}
	return r3.Vec{X: spacing[0], Y: spacing[1], Z: spacing[2]}, nil
}

// Spacing returns the per-axis sample spacing.
func (g *Grid) Spacing() r3.Vec { return g.spacing }

// Sample returns the value at (i, j, k).
func (g *Grid) Sample(i, j, k int) float64 { return g.At(i, j, k) }
