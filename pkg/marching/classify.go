package marching

import "math/bits"

// Cube corners, as (axis 0, axis 1, axis 2) offsets from the cube origin.
//
//	c0 (0,0,0)  c1 (1,0,0)  c2 (1,1,0)  c3 (0,1,0)
//	c4 (0,0,1)  c5 (1,0,1)  c6 (1,1,1)  c7 (0,1,1)
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// Cube edges by corner pair. Edges 0-3 ring the bottom face, 4-7 the top
// face and 8-11 rise along axis 2.
var edgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Cube faces, corners listed counter-clockwise seen from outside the cube:
// axis 2 low, axis 2 high, axis 1 low, axis 1 high, axis 0 low, axis 0 high.
var faceCorners = [6][4]int{
	{0, 3, 2, 1},
	{4, 5, 6, 7},
	{0, 1, 5, 4},
	{3, 7, 6, 2},
	{0, 4, 7, 3},
	{1, 2, 6, 5},
}

var (
	// faceEdges[f][i] joins faceCorners[f][i] and faceCorners[f][i+1].
	faceEdges [6][4]int

	// edgeFaceMask has bit f set for both faces that contain the edge.
	edgeFaceMask [12]uint8

	// edgeLower and edgeUpper order the corners of an edge along its axis.
	edgeLower, edgeUpper, edgeAxis [12]int

	// caseOf maps a mask to its base case.
	caseOf [256]uint8
)

// Representatives of the 15 base cases, as sets of corners below the level.
// Every mask is a rotation of one of these or of its complement.
var caseRepresentatives = [15][]int{
	{},
	{0},
	{0, 1},
	{0, 2},
	{0, 6},
	{0, 1, 2},
	{0, 1, 6},
	{0, 2, 5},
	{0, 1, 2, 3},
	{3, 0, 2, 7},
	{0, 1, 6, 7},
	{0, 1, 2, 6},
	{0, 1, 2, 7},
	{0, 2, 5, 7},
	{0, 1, 3, 7},
}

func init() {
	edgeOf := make(map[[2]int]int, 24)
	for e, c := range edgeCorners {
		edgeOf[[2]int{c[0], c[1]}] = e
		edgeOf[[2]int{c[1], c[0]}] = e

		a, b := c[0], c[1]
		if offsetSum(a) > offsetSum(b) {
			a, b = b, a
		}
		edgeLower[e], edgeUpper[e] = a, b
		for axis := 0; axis < 3; axis++ {
			if cornerOffsets[a][axis] != cornerOffsets[b][axis] {
				edgeAxis[e] = axis
			}
		}
	}
	for f, q := range faceCorners {
		for i := range q {
			e := edgeOf[[2]int{q[i], q[(i+1)%4]}]
			faceEdges[f][i] = e
			edgeFaceMask[e] |= 1 << f
		}
	}
	initCases()
	initClassic()
}

func offsetSum(c int) int {
	o := cornerOffsets[c]
	return o[0] + o[1] + o[2]
}

// initCases labels every mask with its base case by closing the
// representatives under the cube rotation group and complement.
func initCases() {
	index := make(map[[3]int]int, 8)
	for c, o := range cornerOffsets {
		index[o] = c
	}
	permutation := func(f func(x, y, z int) (int, int, int)) [8]int {
		var p [8]int
		for c, o := range cornerOffsets {
			x, y, z := f(o[0], o[1], o[2])
			p[c] = index[[3]int{x, y, z}]
		}
		return p
	}
	generators := [2][8]int{
		permutation(func(x, y, z int) (int, int, int) { return 1 - y, x, z }),
		permutation(func(x, y, z int) (int, int, int) { return x, 1 - z, y }),
	}

	identity := [8]int{0, 1, 2, 3, 4, 5, 6, 7}
	rotations := map[[8]int]bool{identity: true}
	frontier := [][8]int{identity}
	for len(frontier) > 0 {
		p := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, g := range generators {
			var q [8]int
			for i := range q {
				q[i] = g[p[i]]
			}
			if !rotations[q] {
				rotations[q] = true
				frontier = append(frontier, q)
			}
		}
	}

	for cs, corners := range caseRepresentatives {
		for p := range rotations {
			var mask uint8
			for _, c := range corners {
				mask |= 1 << p[c]
			}
			caseOf[mask] = uint8(cs)
			caseOf[^mask] = uint8(cs)
		}
	}
}

// Config is the classification of one cube against the level.
type Config struct {
	// Mask has bit c set when corner c is at or below the level
	Mask uint8

	// Case is the base case 0..14 the mask reduces to under rotation and
	// complement
	Case int
}

// Classify computes the configuration of a cube from its corner values.
// A corner equal to the level counts as below it.
func Classify(values [8]float64, level float64) Config {
	var mask uint8
	for c, v := range values {
		if v <= level {
			mask |= 1 << c
		}
	}
	return Config{Mask: mask, Case: int(caseOf[mask])}
}

// Empty reports whether the cube lies entirely on one side of the level.
func (c Config) Empty() bool { return c.Mask == 0 || c.Mask == 0xff }

// Below reports whether corner is at or below the level.
func (c Config) Below(corner int) bool { return c.Mask&(1<<corner) != 0 }

// Ambiguous reports whether face has its below corners on one diagonal
// and its above corners on the other.
func (c Config) Ambiguous(face int) bool {
	q := faceCorners[face]
	b0, b1 := c.Below(q[0]), c.Below(q[1])
	return b0 == c.Below(q[2]) && b1 == c.Below(q[3]) && b0 != b1
}

// AmbiguousFaces returns a bit per ambiguous face.
func (c Config) AmbiguousFaces() uint8 {
	var faces uint8
	for f := range faceCorners {
		if c.Ambiguous(f) {
			faces |= 1 << f
		}
	}
	return faces
}

func (c Config) belowCount() int { return bits.OnesCount8(c.Mask) }
