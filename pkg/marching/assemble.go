package marching

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/internal/d3"
	"volmesh/internal/models"
	"volmesh/pkg/interpolation"
	"volmesh/pkg/mesh"
	"volmesh/pkg/volume"
)

// assemble merges slab output in slab order, giving each vertex key a
// dense index the first time a triangle uses it. Vertices stay in index
// space.
func assemble(slabs [][]models.KeyedTriangle, cache *vertexCache) *mesh.Mesh {
	total := 0
	for _, tris := range slabs {
		total += len(tris)
	}
	m := &mesh.Mesh{Faces: make([][3]int, 0, total)}
	index := make(map[models.VertexKey]int, cache.Len())
	for _, tris := range slabs {
		for _, kt := range tris {
			var f [3]int
			for n, key := range kt {
				idx, ok := index[key]
				if !ok {
					p, _ := cache.get(key)
					idx = len(m.Vertices)
					index[key] = idx
					m.Vertices = append(m.Vertices, p)
				}
				f[n] = idx
			}
			m.Faces = append(m.Faces, f)
		}
	}
	return m
}

// parallelFor calls fn on contiguous chunks of [0, n) from up to workers
// goroutines.
func parallelFor(n, workers int, fn func(lo, hi int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := n*w/workers, n*(w+1)/workers
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(lo, hi)
		}()
	}
	wg.Wait()
}

// attributes fills per-vertex normals and values from the grid. Vertices
// must still be in index space. Normals are unit gradients of the field
// in physical space pointing to increasing values; a vanishing gradient
// gives a zero normal.
func attributes(m *mesh.Mesh, g *volume.Grid, normals, values bool, workers int) {
	if !normals && !values {
		return
	}
	if normals {
		m.Normals = make([]r3.Vec, len(m.Vertices))
	}
	if values {
		m.Values = make([]float64, len(m.Vertices))
	}
	spacing := g.Spacing()
	parallelFor(len(m.Vertices), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := m.Vertices[i]
			if values {
				m.Values[i] = interpolation.Trilinear(g, p)
			}
			if normals {
				grad := d3.DivElem(interpolation.Gradient(g, p), spacing)
				if n := r3.Norm(grad); n > 0 {
					m.Normals[i] = r3.Scale(1/n, grad)
				}
			}
		}
	})
}
