package marching

// Point ids used by tilings: 0-11 are the crossings on cube edges, 12 is
// a vertex at the mean of a long loop and 13-15 are the interior ring of
// a tube.
const (
	centrePoint = 12
	ringPoint   = 13
)

// maxFanLoop is the longest loop triangulated as a fan from one of its own
// points. Longer loops, and loops no start point can fan cleanly, are
// fanned around a centre vertex.
const maxFanLoop = 6

// tiling is the triangulation of one cube configuration.
type tiling struct {
	// triangles over point ids, wound so the face normal points to the
	// below side
	triangles [][3]int8

	// loops is the number of boundary loops the surface has on the cube
	loops int

	// centre lists the edges averaged into the centre vertex, nil when no
	// triangle uses it
	centre []int8

	// ring holds, per ring point, the two edges it lies between; nil when
	// the tiling has no ring
	ring [][2]int8
}

// classicTable is the fixed triangulation of every mask. Ambiguous faces
// join the below corners when at least four corners are below, and join
// the above corners otherwise.
var classicTable [256]*tiling

func initClassic() {
	for m := 1; m < 255; m++ {
		cfg := Config{Mask: uint8(m), Case: int(caseOf[m])}
		var join uint8
		if cfg.belowCount() >= 4 {
			join = cfg.AmbiguousFaces()
		}
		classicTable[m] = newTiling(cfg, join, noJoin)
	}
}

// loops traces the closed polylines the surface draws on the cube faces.
// joinBelow has a bit per ambiguous face whose below corners are
// connected across the face.
//
// On every face, each crossing edge whose corners run from below to above
// in counter-clockwise order links to the crossing that ends its segment,
// so loops wind counter-clockwise seen from the below side. Loops start at
// their lowest edge and are returned ordered by it.
func loops(cfg Config, joinBelow uint8) [][]int8 {
	var next [12]int8
	for i := range next {
		next[i] = -1
	}
	for f, q := range faceCorners {
		var crossings [4]int
		n := 0
		for i := 0; i < 4; i++ {
			if cfg.Below(q[i]) != cfg.Below(q[(i+1)%4]) {
				crossings[n] = i
				n++
			}
		}
		for idx := 0; idx < n; idx++ {
			i := crossings[idx]
			if !cfg.Below(q[i]) {
				continue
			}
			var partner int
			switch {
			case n == 2:
				partner = crossings[1-idx]
			case joinBelow&(1<<f) != 0:
				partner = crossings[(idx+1)%4]
			default:
				partner = crossings[(idx+3)%4]
			}
			next[faceEdges[f][i]] = int8(faceEdges[f][partner])
		}
	}

	var out [][]int8
	var seen [12]bool
	for e := int8(0); e < 12; e++ {
		if next[e] < 0 || seen[e] {
			continue
		}
		var loop []int8
		for x := e; !seen[x]; x = next[x] {
			seen[x] = true
			loop = append(loop, x)
		}
		out = append(out, loop)
	}
	return out
}

// sharesFace reports whether edges a and b lie on a common cube face.
func sharesFace(a, b int8) bool {
	return edgeFaceMask[a]&edgeFaceMask[b] != 0
}

// fan triangulates a loop. It fans from the first point whose diagonals
// all cross the cube interior; a diagonal between two points of one face
// could coincide with a triangle edge of the neighbouring cube. When no
// such point exists, or the loop is long, it fans around the centre point
// and reports true.
func fan(loop []int8) ([][3]int8, bool) {
	n := len(loop)
	if n <= maxFanLoop {
	start:
		for s := 0; s < n; s++ {
			for i := 2; i < n-1; i++ {
				if sharesFace(loop[s], loop[(s+i)%n]) {
					continue start
				}
			}
			tris := make([][3]int8, 0, n-2)
			for i := 1; i < n-1; i++ {
				tris = append(tris, [3]int8{loop[s], loop[(s+i)%n], loop[(s+i+1)%n]})
			}
			return tris, false
		}
	}
	tris := make([][3]int8, 0, n)
	for i := range loop {
		tris = append(tris, [3]int8{centrePoint, loop[i], loop[(i+1)%n]})
	}
	return tris, true
}

// newTiling triangulates cfg given the face decisions and, optionally, an
// interior connection. Loops that are not replaced by a tube are capped.
func newTiling(cfg Config, joinBelow uint8, join interiorJoin) *tiling {
	ls := loops(cfg, joinBelow)
	t := &tiling{loops: len(ls)}

	capped := ls
	if join != noJoin && len(ls) >= 2 {
		if p, q, ok := tubeLoops(cfg, joinBelow, join, ls); ok {
			t.triangles, t.ring = tube(ls[p], ls[q])
			capped = make([][]int8, 0, len(ls)-2)
			for i, l := range ls {
				if i != p && i != q {
					capped = append(capped, l)
				}
			}
		}
	}

	for _, l := range capped {
		tris, centred := fan(l)
		if centred {
			t.centre = l
		}
		t.triangles = append(t.triangles, tris...)
	}
	return t
}
