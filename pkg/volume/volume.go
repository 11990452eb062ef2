// Package volume provides the grid model consumed by the isosurface
// extractor: a dense 3D array of scalar samples plus per-axis spacing.
package volume

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidShape is returned when a volume is not 3-dimensional, has an
	// axis with fewer than 2 samples, or its data does not match its shape.
	ErrInvalidShape = errors.New("invalid volume shape")

	// ErrInvalidSpacing is returned when spacing does not have exactly three
	// positive, finite components.
	ErrInvalidSpacing = errors.New("invalid spacing")
)

// Volume is a 3D array of scalar samples stored in row-major order, axis 0
// varying slowest and axis 2 fastest.
type Volume struct {
	// data holds nx*ny*nz samples
	data []float64

	// shape is the number of samples along each axis
	shape [3]int
}

// New wraps data as a volume with the given shape. The data slice is used
// directly, not copied.
func New(data []float64, shape ...int) (*Volume, error) {
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: need 3 dimensions, got %d", ErrInvalidShape, len(shape))
	}
	n := 1
	for axis, size := range shape {
		if size < 2 {
			return nil, fmt.Errorf("%w: axis %d has %d samples, need at least 2", ErrInvalidShape, axis, size)
		}
		n *= size
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: shape %v needs %d samples, got %d", ErrInvalidShape, shape, n, len(data))
	}
	return &Volume{
		data:  data,
		shape: [3]int{shape[0], shape[1], shape[2]},
	}, nil
}

// Zeros returns a zero-filled volume of the given shape.
func Zeros(shape ...int) (*Volume, error) {
	n := 1
	for _, size := range shape {
		if size > 0 {
			n *= size
		}
	}
	return New(make([]float64, n), shape...)
}

// FromSlices copies a [i][j][k] nested slice into a new volume. All inner
// slices must have equal length.
func FromSlices(s [][][]float64) (*Volume, error) {
	if len(s) == 0 || len(s[0]) == 0 || len(s[0][0]) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidShape)
	}
	nx, ny, nz := len(s), len(s[0]), len(s[0][0])
	data := make([]float64, 0, nx*ny*nz)
	for i := range s {
		if len(s[i]) != ny {
			return nil, fmt.Errorf("%w: ragged axis 1 at i=%d", ErrInvalidShape, i)
		}
		for j := range s[i] {
			if len(s[i][j]) != nz {
				return nil, fmt.Errorf("%w: ragged axis 2 at i=%d j=%d", ErrInvalidShape, i, j)
			}
			data = append(data, s[i][j]...)
		}
	}
	return New(data, nx, ny, nz)
}

// Shape returns the number of samples along each axis.
func (v *Volume) Shape() (nx, ny, nz int) {
	return v.shape[0], v.shape[1], v.shape[2]
}

// Len returns the total number of samples.
func (v *Volume) Len() int { return len(v.data) }

// Index returns the linear index of sample (i, j, k).
func (v *Volume) Index(i, j, k int) int {
	return (i*v.shape[1]+j)*v.shape[2] + k
}

// InBounds reports whether (i, j, k) addresses a sample.
func (v *Volume) InBounds(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 &&
		i < v.shape[0] && j < v.shape[1] && k < v.shape[2]
}

// At returns the sample at (i, j, k). It panics when out of bounds.
func (v *Volume) At(i, j, k int) float64 {
	return v.data[v.Index(i, j, k)]
}

// Set stores a sample. Volumes must not be modified while an extraction
// that reads them is running.
func (v *Volume) Set(i, j, k int, value float64) {
	v.data[v.Index(i, j, k)] = value
}

// Data returns the underlying samples.
func (v *Volume) Data() []float64 { return v.data }

// MinMax returns the smallest and largest sample.
func (v *Volume) MinMax() (min, max float64) {
	return floats.Min(v.data), floats.Max(v.data)
}
