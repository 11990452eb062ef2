package models

import (
	"image"
)

// Slice is one 2D image of a slice stack loaded from disk.
type Slice struct {
	// Image is the decoded slice
	Image image.Image

	// Index is the position of this slice in the stack
	Index int

	// Filename is the file the slice was read from
	Filename string
}

// Slab is a contiguous run of cube layers along axis 0 handled by one
// worker during a sweep.
type Slab struct {
	// Index orders slabs; output is merged in increasing Index
	Index int

	// Start and End are the first and one-past-last cube origins along
	// axis 0, in samples
	Start, End int
}

// Slabs splits the cube origins 0, step, 2*step, ... below limit into at
// most n contiguous slabs of near equal size.
func Slabs(limit, step, n int) []Slab {
	if step < 1 {
		step = 1
	}
	layers := 0
	if limit > 0 {
		layers = (limit + step - 1) / step
	}
	if n < 1 {
		n = 1
	}
	if n > layers {
		n = layers
	}
	slabs := make([]Slab, 0, n)
	for s := 0; s < n; s++ {
		lo := layers * s / n
		hi := layers * (s + 1) / n
		slabs = append(slabs, Slab{Index: s, Start: lo * step, End: hi * step})
	}
	return slabs
}
