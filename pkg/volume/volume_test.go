package volume

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		shape []int
	}{
		{"flat axis", make([]float64, 4), []int{2, 2, 1}},
		{"two dimensional", make([]float64, 400), []int{20, 20}},
		{"four dimensional", make([]float64, 16), []int{2, 2, 2, 2}},
		{"data mismatch", make([]float64, 7), []int{2, 2, 2}},
		{"zero axis", nil, []int{0, 2, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.data, tc.shape...)
			assert.True(t, errors.Is(err, ErrInvalidShape), "got %v", err)
		})
	}
}

func TestIndexing(t *testing.T) {
	v, err := Zeros(2, 3, 4)
	require.NoError(t, err)

	nx, ny, nz := v.Shape()
	assert.Equal(t, [3]int{2, 3, 4}, [3]int{nx, ny, nz})
	assert.Equal(t, 24, v.Len())
	assert.Equal(t, 0, v.Index(0, 0, 0))
	assert.Equal(t, 1, v.Index(0, 0, 1))
	assert.Equal(t, 4, v.Index(0, 1, 0))
	assert.Equal(t, 12, v.Index(1, 0, 0))

	v.Set(1, 2, 3, 7)
	assert.Equal(t, 7.0, v.At(1, 2, 3))
	assert.Equal(t, 7.0, v.Data()[23])

	assert.True(t, v.InBounds(1, 2, 3))
	assert.False(t, v.InBounds(2, 0, 0))
	assert.False(t, v.InBounds(0, -1, 0))
}

func TestFromSlices(t *testing.T) {
	v, err := FromSlices([][][]float64{
		{{0, 1}, {2, 3}},
		{{4, 5}, {6, 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.At(1, 0, 1))

	lo, hi := v.MinMax()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 7.0, hi)

	_, err = FromSlices([][][]float64{{{0, 1}, {2}}, {{4, 5}, {6, 7}}})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestGridSpacing(t *testing.T) {
	v, err := Zeros(2, 2, 2)
	require.NoError(t, err)

	g, err := NewGrid(v, nil)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, g.Spacing())

	g, err = NewGrid(v, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, g.Spacing())
	assert.Equal(t, 0.0, g.Sample(1, 1, 1))

	for _, bad := range [][]float64{{1, 2}, {1, 2, 3, 4}, {1, 0, 1}, {1, -1, 1}, {1, math.NaN(), 1}, {math.Inf(1), 1, 1}} {
		_, err := NewGrid(v, bad)
		assert.ErrorIs(t, err, ErrInvalidSpacing, "spacing %v", bad)
	}
}
