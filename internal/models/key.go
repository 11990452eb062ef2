package models

// VertexKey identifies a mesh vertex produced by a sweep. Keys hold eight
// slots per linear sample index: edge crossings use slot axis (0..2) of
// the edge's lower corner, and the vertices a cube adds inside itself use
// slots 3..6 of the cube origin. Both cubes sharing a grid edge compute
// the same key.
type VertexKey uint64

const keySlots = 8

// EdgeKey returns the key for the grid edge starting at linear sample
// index lower and running along axis.
func EdgeKey(lower, axis int) VertexKey {
	return VertexKey(keySlots*lower + axis)
}

// CentreKey returns the key of the centre vertex of the cube whose origin
// has linear sample index origin.
func CentreKey(origin int) VertexKey {
	return VertexKey(keySlots*origin + 3)
}

// RingKey returns the key of interior ring vertex r (0..2) of the cube
// whose origin has linear sample index origin.
func RingKey(origin, r int) VertexKey {
	return VertexKey(keySlots*origin + 4 + r)
}

// KeyedTriangle is a triangle whose corners are vertex keys, emitted by a
// sweep before dense indices are assigned.
type KeyedTriangle [3]VertexKey
