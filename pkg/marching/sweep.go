package marching

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/internal/models"
	"volmesh/pkg/volume"
)

// sweep holds the state shared by the workers of one extraction.
type sweep struct {
	grid   *volume.Grid
	level  float64
	step   int
	method Method
	cache  *vertexCache
}

func newSweep(g *volume.Grid, level float64, step int, method Method) *sweep {
	return &sweep{
		grid:   g,
		level:  level,
		step:   step,
		method: method,
		cache:  newVertexCache(),
	}
}

// limits returns the exclusive upper bound of cube origins along each axis.
func (s *sweep) limits() [3]int {
	nx, ny, nz := s.grid.Shape()
	return [3]int{nx - s.step, ny - s.step, nz - s.step}
}

// run sweeps every slab on its own goroutine and returns the keyed
// triangles of each slab, indexed by slab.
func (s *sweep) run(workers int) [][]models.KeyedTriangle {
	slabs := models.Slabs(s.limits()[0], s.step, workers)
	out := make([][]models.KeyedTriangle, len(slabs))

	var wg sync.WaitGroup
	for _, slab := range slabs {
		wg.Add(1)
		go func(slab models.Slab) {
			defer wg.Done()
			out[slab.Index] = s.slab(slab)
		}(slab)
	}
	wg.Wait()
	return out
}

// slab triangulates the cubes whose axis 0 origin lies in [Start, End).
func (s *sweep) slab(slab models.Slab) []models.KeyedTriangle {
	lim := s.limits()
	var tris []models.KeyedTriangle
	for i := slab.Start; i < slab.End; i += s.step {
		for j := 0; j < lim[1]; j += s.step {
			for k := 0; k < lim[2]; k += s.step {
				tris = s.cube(i, j, k, tris)
			}
		}
	}
	return tris
}

// cube appends the triangles of the cube with origin (i, j, k).
func (s *sweep) cube(i, j, k int, tris []models.KeyedTriangle) []models.KeyedTriangle {
	var (
		values  [8]float64
		samples [8]int
	)
	for c, o := range cornerOffsets {
		ci, cj, ck := i+s.step*o[0], j+s.step*o[1], k+s.step*o[2]
		samples[c] = s.grid.Index(ci, cj, ck)
		values[c] = s.grid.Sample(ci, cj, ck)
	}
	cfg := Classify(values, s.level)
	if cfg.Empty() {
		return tris
	}

	var t *tiling
	if s.method == Classic {
		t = classicTiling(cfg)
	} else {
		var d [8]float64
		for c, v := range values {
			d[c] = v - s.level
		}
		t = correctedTiling(cfg, &d)
	}

	var keys [16]models.VertexKey
	var resolved uint16
	edge := func(e int8) models.VertexKey {
		if resolved&(1<<e) != 0 {
			return keys[e]
		}
		lo, hi := edgeLower[e], edgeUpper[e]
		key := models.EdgeKey(samples[lo], edgeAxis[e])
		s.cache.getOrCompute(key, func() r3.Vec {
			return interpolate(s.corner(i, j, k, lo), s.corner(i, j, k, hi), values[lo], values[hi], s.level)
		})
		keys[e] = key
		resolved |= 1 << e
		return key
	}

	if t.centre != nil {
		// Edge points are resolved before the centre so no shard lock is
		// held while another is taken.
		var sum r3.Vec
		for _, e := range t.centre {
			p, _ := s.cache.get(edge(e))
			sum = r3.Add(sum, p)
		}
		key := models.CentreKey(samples[0])
		s.cache.getOrCompute(key, func() r3.Vec {
			return r3.Scale(1/float64(len(t.centre)), sum)
		})
		keys[centrePoint] = key
		resolved |= 1 << centrePoint
	}

	if t.ring != nil {
		// Ring points lie halfway between the cube centre and the midpoint
		// of their two edge points.
		centre := r3.Scale(0.5, r3.Add(s.corner(i, j, k, 0), s.corner(i, j, k, 6)))
		for r, pair := range t.ring {
			a, _ := s.cache.get(edge(pair[0]))
			b, _ := s.cache.get(edge(pair[1]))
			key := models.RingKey(samples[0], r)
			s.cache.getOrCompute(key, func() r3.Vec {
				return r3.Add(r3.Scale(0.25, r3.Add(a, b)), r3.Scale(0.5, centre))
			})
			keys[ringPoint+r] = key
			resolved |= 1 << (ringPoint + r)
		}
	}

	for _, tri := range t.triangles {
		var kt models.KeyedTriangle
		for n, id := range tri {
			kt[n] = edge(id)
		}
		tris = append(tris, kt)
	}
	return tris
}

// corner returns the index space position of corner c of the cube at
// (i, j, k).
func (s *sweep) corner(i, j, k, c int) r3.Vec {
	o := cornerOffsets[c]
	return r3.Vec{
		X: float64(i + s.step*o[0]),
		Y: float64(j + s.step*o[1]),
		Z: float64(k + s.step*o[2]),
	}
}
