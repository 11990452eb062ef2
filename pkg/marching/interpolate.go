package marching

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/internal/models"
)

// crossing returns the fraction along an edge from v0 to v1 where the
// field reaches level, clamped to [0, 1]. When the fraction is undefined
// the corner closest to the level wins.
func crossing(v0, v1, level float64) float64 {
	t := (level - v0) / (v1 - v0)
	if math.IsNaN(t) || math.IsInf(t, 0) {
		if math.Abs(v0-level) <= math.Abs(v1-level) {
			return 0
		}
		return 1
	}
	return math.Max(0, math.Min(1, t))
}

// interpolate returns the level crossing between p0 and p1.
func interpolate(p0, p1 r3.Vec, v0, v1, level float64) r3.Vec {
	t := crossing(v0, v1, level)
	return r3.Add(p0, r3.Scale(t, r3.Sub(p1, p0)))
}

const cacheShards = 64

// vertexCache maps vertex keys to index space positions for one sweep.
// Each key is computed at most once; concurrent callers asking for the
// same key wait for the first and share its result.
type vertexCache struct {
	shards [cacheShards]cacheShard
}

type cacheShard struct {
	mu sync.Mutex
	m  map[models.VertexKey]r3.Vec
}

func newVertexCache() *vertexCache {
	c := &vertexCache{}
	for i := range c.shards {
		c.shards[i].m = make(map[models.VertexKey]r3.Vec)
	}
	return c
}

func (c *vertexCache) shard(key models.VertexKey) *cacheShard {
	// Neighbouring keys differ in the low bits; mix so they spread out.
	h := uint64(key) * 0x9e3779b97f4a7c15
	return &c.shards[h>>58]
}

// getOrCompute returns the position stored for key, calling compute to
// create it on first use.
func (c *vertexCache) getOrCompute(key models.VertexKey, compute func() r3.Vec) r3.Vec {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.m[key]; ok {
		return p
	}
	p := compute()
	s.m[key] = p
	return p
}

// get returns a stored position.
func (c *vertexCache) get(key models.VertexKey) (r3.Vec, bool) {
	s := c.shard(key)
	s.mu.Lock()
	p, ok := s.m[key]
	s.mu.Unlock()
	return p, ok
}

// Len returns the number of stored positions.
func (c *vertexCache) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.m)
		s.mu.Unlock()
	}
	return n
}
