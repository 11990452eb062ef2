// Package marching extracts triangulated isosurfaces from regularly
// sampled scalar volumes.
//
// Every cube of eight neighbouring samples is classified against the
// level, its surface is triangulated from a case table, and the edge
// crossings shared by neighbouring cubes are merged into single vertices.
// Two triangulators are provided: Classic, the fixed Lorensen table, and
// Corrected, which resolves face and interior ambiguities from the sample
// values so the surface of a closed object has no cracks or holes.
package marching

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"volmesh/pkg/mesh"
	"volmesh/pkg/volume"
)

// MarchingCubes extracts the isosurface of g at opts.Level. A nil opts is
// DefaultOptions. Vertices are in the physical units of the grid spacing;
// opts.Spacing is ignored.
func MarchingCubes(g *volume.Grid, opts *Options) (*mesh.Mesh, error) {
	if g == nil || g.Volume == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidShape)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.validate(g); err != nil {
		return nil, err
	}
	level, err := opts.resolveLevel(g)
	if err != nil {
		return nil, err
	}

	log := opts.logger()
	nx, ny, nz := g.Shape()
	step := opts.step()
	workers := opts.workers()
	log.WithFields(logrus.Fields{
		"shape":   [3]int{nx, ny, nz},
		"level":   level,
		"method":  opts.Method,
		"step":    step,
		"workers": workers,
	}).Debug("Sweeping cubes")

	start := time.Now()
	sw := newSweep(g, level, step, opts.Method)
	slabs := sw.run(workers)
	m := assemble(slabs, sw.cache)
	log.WithFields(logrus.Fields{
		"slabs":     len(slabs),
		"vertices":  m.VertexCount(),
		"triangles": m.TriangleCount(),
		"elapsed":   time.Since(start),
	}).Debug("Assembled mesh")

	if !opts.AllowDegenerate {
		removed := dropDegenerate(m)
		log.WithField("removed", removed).Debug("Dropped degenerate triangles")
	}
	attributes(m, g, opts.Normals, opts.Values, workers)
	transform(m, g.Spacing(), opts.GradientDirection)

	log.WithFields(logrus.Fields{
		"vertices":  m.VertexCount(),
		"triangles": m.TriangleCount(),
		"elapsed":   time.Since(start),
	}).Debug("Extraction complete")
	return m, nil
}

// Extract is MarchingCubes with the spacing taken from opts.Spacing.
func Extract(v *volume.Volume, opts *Options) (*mesh.Mesh, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil volume", ErrInvalidShape)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	g, err := volume.NewGrid(v, opts.Spacing)
	if err != nil {
		return nil, err
	}
	return MarchingCubes(g, opts)
}
