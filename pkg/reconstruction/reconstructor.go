// Package reconstruction runs the volume to mesh pipeline: it obtains a
// volume from a generator or from disk, extracts the isosurface, measures
// the mesh and writes it out.
package reconstruction

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"volmesh/pkg/config"
	"volmesh/pkg/marching"
	"volmesh/pkg/mesh"
	"volmesh/pkg/shapes"
	"volmesh/pkg/stl"
	"volmesh/pkg/visualization"
	"volmesh/pkg/volume"
)

// Params holds the pipeline configuration.
type Params struct {
	// Source is one of the config.Source* names
	Source string

	// Axes are the ellipsoid semi-axes, or the sphere radius first
	Axes []float64

	// GridSize is the double torus resolution
	GridSize int

	// InputDir is the directory of slice images for the slices source
	InputDir string

	// RawPath and RawShape describe the raw source
	RawPath  string
	RawShape []int

	// Options configures the extraction; nil means marching.DefaultOptions
	Options *marching.Options

	// OutputFile is where the STL is written; empty skips writing
	OutputFile string

	// WeldTolerance merges vertices closer than this after extraction;
	// zero disables welding
	WeldTolerance float64

	// PreviewDir receives contour slice previews; empty skips them
	PreviewDir string

	// Logger receives progress; nil discards it
	Logger logrus.FieldLogger
}

// ParamsFromConfig builds pipeline parameters from a validated config.
func ParamsFromConfig(cfg *config.Config, logger logrus.FieldLogger) (*Params, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.ExtractionOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	return &Params{
		Source:        cfg.Input.Source,
		Axes:          cfg.Input.Axes,
		GridSize:      cfg.Input.GridSize,
		InputDir:      cfg.Input.SliceDir,
		RawPath:       cfg.Input.RawPath,
		RawShape:      cfg.Input.RawShape,
		Options:       opts,
		OutputFile:    cfg.Output.STLPath,
		WeldTolerance: cfg.Output.WeldTolerance,
		PreviewDir:    cfg.Output.PreviewDir,
		Logger:        logger,
	}, nil
}

// Reconstructor runs the pipeline once.
//
// The process consists of several steps:
// 1. Loading or generating the volume
// 2. Saving contour previews of the input
// 3. Extracting the isosurface
// 4. Welding near-duplicate vertices
// 5. Measuring the mesh
// 6. Writing the STL file
type Reconstructor struct {
	// params stores the pipeline configuration
	params *Params

	// log receives progress messages
	log logrus.FieldLogger

	// vol is the input volume once loaded
	vol *volume.Volume

	// mesh is the extraction result
	mesh *mesh.Mesh

	// metrics stores the mesh measurements after processing
	metrics Metrics
}

// NewReconstructor creates a new reconstructor instance with the provided parameters.
func NewReconstructor(params *Params) *Reconstructor {
	log := params.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Reconstructor{params: params, log: log}
}

// Process runs the complete pipeline
func (r *Reconstructor) Process() error {
	start := time.Now()
	opts := r.params.Options
	if opts == nil {
		opts = marching.DefaultOptions()
	}

	r.log.WithField("source", r.params.Source).Info("Step 1: Loading volume")
	vol, err := r.loadVolume(opts)
	if err != nil {
		return fmt.Errorf("failed to load volume: %w", err)
	}
	r.vol = vol
	nx, ny, nz := vol.Shape()
	lo, hi := vol.MinMax()
	r.log.WithFields(logrus.Fields{"shape": [3]int{nx, ny, nz}, "min": lo, "max": hi}).Info("Loaded volume")

	level := (lo + hi) / 2
	if opts.Level != nil {
		level = *opts.Level
	}

	if r.params.PreviewDir != "" {
		r.log.WithField("dir", r.params.PreviewDir).Info("Step 2: Saving contour previews")
		viewer := visualization.NewViewer(vol, level)
		stride := max(1, nx/16)
		n, err := viewer.SaveSliceSequence("z", r.params.PreviewDir, stride)
		if err != nil {
			r.log.WithError(err).Warn("Failed to save previews")
		} else {
			r.log.WithField("count", n).Debug("Saved previews")
		}
	}

	r.log.WithFields(logrus.Fields{"level": level, "method": opts.Method}).Info("Step 3: Extracting isosurface")
	m, err := marching.Extract(vol, opts)
	if err != nil {
		return fmt.Errorf("failed to extract isosurface: %w", err)
	}
	r.mesh = m

	welded := 0
	if r.params.WeldTolerance > 0 {
		r.log.WithField("tolerance", r.params.WeldTolerance).Info("Step 4: Welding vertices")
		welded = m.Weld(r.params.WeldTolerance)
	}

	r.log.Info("Step 5: Measuring mesh")
	r.metrics, err = ComputeMetrics(m)
	if err != nil {
		return fmt.Errorf("failed to measure mesh: %w", err)
	}
	r.metrics.Level = level
	r.metrics.Welded = welded

	if r.params.OutputFile != "" {
		r.log.WithField("file", r.params.OutputFile).Info("Step 6: Writing STL")
		if m.IsEmpty() {
			r.log.Warn("Mesh is empty, no STL written")
		} else if err := stl.Save(r.params.OutputFile, m); err != nil {
			return fmt.Errorf("failed to write STL: %w", err)
		}
	}

	r.log.WithFields(logrus.Fields{
		"vertices":  r.metrics.Vertices,
		"triangles": r.metrics.Triangles,
		"area":      r.metrics.Area,
		"elapsed":   time.Since(start),
	}).Info("Reconstruction complete")
	return nil
}

func (r *Reconstructor) loadVolume(opts *marching.Options) (*volume.Volume, error) {
	p := r.params
	switch p.Source {
	case config.SourceEllipsoid:
		if len(p.Axes) != 3 {
			return nil, fmt.Errorf("ellipsoid needs 3 axes, got %d", len(p.Axes))
		}
		return shapes.Ellipsoid(p.Axes[0], p.Axes[1], p.Axes[2], opts.Spacing)
	case config.SourceSphere:
		if len(p.Axes) < 1 {
			return nil, fmt.Errorf("sphere needs a radius")
		}
		return shapes.Sphere(p.Axes[0], opts.Spacing)
	case config.SourceTorus:
		return shapes.DoubleTorus(p.GridSize)
	case config.SourceSlices:
		slices, err := LoadSlices(p.InputDir)
		if err != nil {
			return nil, err
		}
		r.log.WithField("slices", len(slices)).Debug("Loaded slice images")
		workers := opts.Workers
		if workers < 1 {
			workers = runtime.NumCPU()
		}
		return SlicesToVolume(slices, workers)
	case config.SourceRaw:
		return LoadRaw(p.RawPath, p.RawShape)
	}
	return nil, fmt.Errorf("unknown source %q", p.Source)
}

// GetMetrics returns the measurements of the last run.
func (r *Reconstructor) GetMetrics() Metrics { return r.metrics }

// Mesh returns the mesh of the last run.
func (r *Reconstructor) Mesh() *mesh.Mesh { return r.mesh }

// Volume returns the input volume of the last run.
func (r *Reconstructor) Volume() *volume.Volume { return r.vol }
