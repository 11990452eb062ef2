package marching

import "sync"

// interiorJoin records an interior connection found by the interior test:
// zero for none, otherwise 1 + 4*axis + kind.
type interiorJoin uint8

const noJoin interiorJoin = 0

// Connection kinds of a cross-section. A and C, or B and D, are the
// diagonal corner pair that the surface region on the named side connects.
const (
	joinACBelow = iota
	joinACAbove
	joinBDBelow
	joinBDAbove
)

func makeJoin(axis, kind int) interiorJoin { return interiorJoin(1 + 4*axis + kind) }

func (j interiorJoin) axis() int { return int(j-1) / 4 }
func (j interiorJoin) kind() int { return int(j-1) % 4 }

// sweepCorners gives, for planes perpendicular to each axis, the cube edge
// each cross-section corner A, D, C, B slides along, as (low, high) corner
// pairs. A, D, C, B run around the cross-section.
var sweepCorners = [3][4][2]int{
	{{0, 1}, {3, 2}, {7, 6}, {4, 5}},
	{{0, 3}, {1, 2}, {5, 6}, {4, 7}},
	{{0, 4}, {1, 5}, {2, 6}, {3, 7}},
}

// faceJoins runs the asymptotic decider on every ambiguous face: the below
// corners are joined when the product of their offsets from the level is
// at least the product for the above corners. Both cubes sharing a face
// compute the same products and agree.
func faceJoins(cfg Config, d *[8]float64) uint8 {
	var joined uint8
	for f, q := range faceCorners {
		if !cfg.Ambiguous(f) {
			continue
		}
		below, above := d[q[0]]*d[q[2]], d[q[1]]*d[q[3]]
		if !cfg.Below(q[0]) {
			below, above = above, below
		}
		if below >= above {
			joined |= 1 << f
		}
	}
	return joined
}

// interiorTest looks for a connection through the cube interior that the
// faces do not show. Sweeping a plane along each axis, the cross-section
// corner values are linear in the plane position t and the bilinear
// saddle measure h(t) = A*C - B*D is quadratic. At its extremum inside the
// cube a cross-section whose diagonal pair shares a side and is joined
// there connects the regions holding that pair.
func interiorTest(d *[8]float64) interiorJoin {
	for axis := 0; axis < 3; axis++ {
		if kind, ok := crossSectionJoin(d, axis); ok {
			return makeJoin(axis, kind)
		}
	}
	return noJoin
}

func crossSectionJoin(d *[8]float64, axis int) (int, bool) {
	s := &sweepCorners[axis]
	a0, a1 := d[s[0][0]], d[s[0][1]]
	d0, d1 := d[s[1][0]], d[s[1][1]]
	c0, c1 := d[s[2][0]], d[s[2][1]]
	b0, b1 := d[s[3][0]], d[s[3][1]]

	qa := (a1-a0)*(c1-c0) - (b1-b0)*(d1-d0)
	if qa == 0 {
		return 0, false
	}
	qb := a0*(c1-c0) + c0*(a1-a0) - b0*(d1-d0) - d0*(b1-b0)
	t := -qb / (2 * qa)
	if !(t > 0 && t < 1) {
		return 0, false
	}

	a := a0 + t*(a1-a0)
	b := b0 + t*(b1-b0)
	c := c0 + t*(c1-c0)
	dd := d0 + t*(d1-d0)
	h := a*c - b*dd

	belowA, belowB := a <= 0, b <= 0
	if belowA != (c <= 0) || belowB != (dd <= 0) || belowA == belowB {
		return 0, false
	}
	switch {
	case qa < 0 && belowA && h >= 0:
		return joinACBelow, true
	case qa < 0 && !belowA && h > 0:
		return joinACAbove, true
	case qa > 0 && belowB && h <= 0:
		return joinBDBelow, true
	case qa > 0 && !belowB && h < 0:
		return joinBDAbove, true
	}
	return 0, false
}

// tubeLoops finds the loops an interior join connects. It reports false
// when the joined corners already share a region through the faces, or
// when either region is bounded by more than one loop.
func tubeLoops(cfg Config, joinBelow uint8, join interiorJoin, ls [][]int8) (p, q int, ok bool) {
	s := &sweepCorners[join.axis()]
	kind := join.kind()
	below := kind == joinACBelow || kind == joinBDBelow
	side := func(c int) bool { return cfg.Below(c) == below }
	pick := func(pair [2]int) int {
		if side(pair[0]) {
			return pair[0]
		}
		return pair[1]
	}
	first, second := s[0], s[2]
	if kind == joinBDBelow || kind == joinBDAbove {
		first, second = s[3], s[1]
	}

	var parent [8]int
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		if ra, rb := find(a), find(b); ra != rb {
			parent[ra] = rb
		}
	}
	for _, c := range edgeCorners {
		if side(c[0]) && side(c[1]) {
			union(c[0], c[1])
		}
	}
	for f, corners := range faceCorners {
		if !cfg.Ambiguous(f) || (joinBelow&(1<<f) != 0) != below {
			continue
		}
		if side(corners[0]) {
			union(corners[0], corners[2])
		} else {
			union(corners[1], corners[3])
		}
	}

	ra, rb := find(pick(first)), find(pick(second))
	if ra == rb {
		return 0, 0, false
	}
	p, q = -1, -1
	for i, l := range ls {
		c := edgeLower[l[0]]
		if !side(c) {
			c = edgeUpper[l[0]]
		}
		switch find(c) {
		case ra:
			if p >= 0 {
				return 0, 0, false
			}
			p = i
		case rb:
			if q >= 0 {
				return 0, 0, false
			}
			q = i
		}
	}
	return p, q, p >= 0 && q >= 0
}

// edgeMid2 is twice the midpoint of each cube edge.
func edgeMid2(e int8) [3]int {
	a, b := cornerOffsets[edgeCorners[e][0]], cornerOffsets[edgeCorners[e][1]]
	return [3]int{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// upperFaces has a bit for each face on the high side of its axis.
const upperFaces uint8 = 1<<1 | 1<<3 | 1<<5

// openChord reports whether a tube may lay a triangle edge between the
// points on edges a and b. The neighbour across an upper face sees it as
// a lower face, so allowing chords across lower faces only keeps the two
// cubes from laying the same chord.
func openChord(a, b int8) bool {
	return edgeFaceMask[a]&edgeFaceMask[b]&upperFaces == 0
}

// chordCost ranks a candidate tube edge: chords between points of one face
// come last, then longer chords.
func chordCost(a, b int8) int {
	pa, pb := edgeMid2(a), edgeMid2(b)
	cost := 0
	for i := range pa {
		cost += (pa[i] - pb[i]) * (pa[i] - pb[i])
	}
	if sharesFace(a, b) {
		cost += 1 << 10
	}
	return cost
}

// tube joins two loops with a band of triangles. The loops face each other
// across the tube, so q is walked backwards. When no band of open chords
// exists the loops are joined through a ring of interior points, returned
// as the edge pairs each ring point lies between.
func tube(p, q []int8) ([][3]int8, [][2]int8) {
	rq := make([]int8, len(q))
	for i := range q {
		rq[i] = q[len(q)-1-i]
	}
	if tris, ok := band(p, rq); ok {
		return tris, nil
	}
	return ringTube(p, rq)
}

// band stitches p to q with open chords only, choosing the start pair and
// step order of lowest total chord cost. A chord repeats when one loop is
// walked completely against a single point of the other, so runs stay
// shorter than the loop; the first and last steps differ so a run cannot
// wrap around the seam.
func band(p, q []int8) ([][3]int8, bool) {
	n, m := len(p), len(q)
	var (
		best      = -1
		bestStart [2]int
		bestSteps []bool
		steps     = make([]bool, 0, n+m)
	)
	for i0 := 0; i0 < n; i0++ {
		for k0 := 0; k0 < m; k0++ {
			if !openChord(p[i0], q[k0]) {
				continue
			}
			at := func(i, k int) (int8, int8) { return p[(i0+i)%n], q[(k0+k)%m] }

			var walk func(i, k, pRun, qRun, cost int)
			walk = func(i, k, pRun, qRun, cost int) {
				if best >= 0 && cost >= best {
					return
				}
				if i == n && k == m {
					if steps[0] != steps[len(steps)-1] {
						best, bestStart = cost, [2]int{i0, k0}
						bestSteps = append(bestSteps[:0], steps...)
					}
					return
				}
				if i < n && pRun+1 < n {
					if a, b := at(i+1, k); openChord(a, b) {
						steps = append(steps, true)
						walk(i+1, k, pRun+1, 0, cost+chordCost(a, b))
						steps = steps[:len(steps)-1]
					}
				}
				if k < m && qRun+1 < m {
					if a, b := at(i, k+1); openChord(a, b) {
						steps = append(steps, false)
						walk(i, k+1, 0, qRun+1, cost+chordCost(a, b))
						steps = steps[:len(steps)-1]
					}
				}
			}
			a, b := at(0, 0)
			walk(0, 0, 0, 0, chordCost(a, b))
		}
	}
	if best < 0 {
		return nil, false
	}

	i0, k0 := bestStart[0], bestStart[1]
	tris := make([][3]int8, 0, n+m)
	i, k := 0, 0
	for _, stepP := range bestSteps {
		if stepP {
			tris = append(tris, [3]int8{p[(i0+i)%n], p[(i0+i+1)%n], q[(k0+k)%m]})
			i++
		} else {
			tris = append(tris, [3]int8{q[(k0+k+1)%m], q[(k0+k)%m], p[(i0+i)%n]})
			k++
		}
	}
	return tris, true
}

// ringTube joins p and q through three interior points. Ring point j lies
// between p[is[j]] and q[ks[j]], spread evenly around both loops from
// their closest pair. p is banded to the ring and the ring to q; every
// chord ends inside the cube.
func ringTube(p, q []int8) ([][3]int8, [][2]int8) {
	n, m := len(p), len(q)
	bi, bk := 0, 0
	best := chordCost(p[0], q[0])
	for i := range p {
		for k := range q {
			if c := chordCost(p[i], q[k]); c < best {
				best, bi, bk = c, i, k
			}
		}
	}

	var is, ks [4]int
	for j := range is {
		is[j] = bi + j*n/3
		ks[j] = bk + j*m/3
	}
	ring := make([][2]int8, 3)
	for j := range ring {
		ring[j] = [2]int8{p[is[j]%n], q[ks[j]%m]}
	}

	tris := make([][3]int8, 0, n+m+6)
	for j := 0; j < 3; j++ {
		r, next := int8(ringPoint+j), int8(ringPoint+(j+1)%3)
		for i := is[j]; i < is[j+1]; i++ {
			tris = append(tris, [3]int8{p[i%n], p[(i+1)%n], r})
		}
		tris = append(tris, [3]int8{next, r, p[is[j+1]%n]})
		for k := ks[j]; k < ks[j+1]; k++ {
			tris = append(tris, [3]int8{q[(k+1)%m], q[k%m], r})
		}
		tris = append(tris, [3]int8{r, next, q[ks[j+1]%m]})
	}
	return tris, ring
}

// tilingCache lazily fills the corrected tilings, keyed by mask, face
// decisions and interior join.
type tilingCache struct {
	mu sync.RWMutex
	m  map[uint32]*tiling
}

var correctedTilings = &tilingCache{m: make(map[uint32]*tiling)}

func (c *tilingCache) get(cfg Config, joinBelow uint8, join interiorJoin) *tiling {
	key := uint32(cfg.Mask) | uint32(joinBelow)<<8 | uint32(join)<<14
	c.mu.RLock()
	t, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return t
	}

	t = newTiling(cfg, joinBelow, join)
	c.mu.Lock()
	if existing, ok := c.m[key]; ok {
		t = existing
	} else {
		c.m[key] = t
	}
	c.mu.Unlock()
	return t
}

// correctedTiling resolves the face and interior ambiguities of a cube
// from its corner offsets d = value - level.
func correctedTiling(cfg Config, d *[8]float64) *tiling {
	faces := faceJoins(cfg, d)
	t := correctedTilings.get(cfg, faces, noJoin)
	if t.loops >= 2 {
		if join := interiorTest(d); join != noJoin {
			t = correctedTilings.get(cfg, faces, join)
		}
	}
	return t
}

// classicTiling returns the fixed table entry for cfg.
func classicTiling(cfg Config) *tiling {
	return classicTable[cfg.Mask]
}
