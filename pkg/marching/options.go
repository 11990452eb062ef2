package marching

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"volmesh/pkg/volume"
)

var (
	// ErrInvalidShape is volume.ErrInvalidShape, repeated here so callers
	// of this package can match every input error from one place.
	ErrInvalidShape = volume.ErrInvalidShape

	// ErrInvalidSpacing is volume.ErrInvalidSpacing.
	ErrInvalidSpacing = volume.ErrInvalidSpacing

	// ErrInvalidLevel is returned when the level does not lie strictly
	// between the volume minimum and maximum.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrInvalidMethod is returned for an unknown triangulation method.
	ErrInvalidMethod = errors.New("invalid method")

	// ErrInvalidStepSize is returned when the step is negative or leaves no
	// cube along some axis.
	ErrInvalidStepSize = errors.New("invalid step size")

	// ErrInvalidGradientDirection is returned for an unknown gradient
	// direction.
	ErrInvalidGradientDirection = errors.New("invalid gradient direction")
)

// Method selects the triangulation strategy.
type Method int

const (
	// Corrected resolves face and interior ambiguities so neighbouring
	// cubes agree and closed surfaces come out watertight.
	Corrected Method = iota

	// Classic uses the fixed 256 entry case table. It is faster but may
	// leave cracks where ambiguous faces are split differently by the two
	// cubes sharing them.
	Classic
)

func (m Method) String() string {
	switch m {
	case Corrected:
		return "corrected"
	case Classic:
		return "classic"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts "corrected" (alias "lewiner") and "classic" (alias
// "lorensen"), ignoring case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corrected", "lewiner":
		return Corrected, nil
	case "classic", "lorensen":
		return Classic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

// GradientDirection tells which side of the surface the object is on.
type GradientDirection int

const (
	// Descent means the object holds values above the level: normals point
	// to decreasing values, out of the object.
	Descent GradientDirection = iota

	// Ascent means the object holds values below the level: normals point
	// to increasing values.
	Ascent
)

func (g GradientDirection) String() string {
	switch g {
	case Descent:
		return "descent"
	case Ascent:
		return "ascent"
	default:
		return fmt.Sprintf("GradientDirection(%d)", int(g))
	}
}

// ParseGradientDirection accepts "descent" and "ascent", ignoring case.
func ParseGradientDirection(s string) (GradientDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "descent":
		return Descent, nil
	case "ascent":
		return Ascent, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGradientDirection, s)
}

// Options configures an extraction. The zero value extracts at the mid
// level with the corrected method, drops degenerate triangles and skips
// normals and values. DefaultOptions keeps degenerate triangles and
// computes normals and values.
type Options struct {
	// Level is the isovalue; nil selects (min+max)/2 of the volume
	Level *float64

	// Spacing is the sample distance per axis used by Extract; nil means
	// unit spacing
	Spacing []float64

	// GradientDirection orients faces and normals
	GradientDirection GradientDirection

	// StepSize samples every StepSize-th grid point; 0 means 1
	StepSize int

	// AllowDegenerate keeps zero area triangles; when false they are
	// removed after assembly
	AllowDegenerate bool

	// Method selects the triangulation strategy
	Method Method

	// Normals requests per-vertex unit normals from the field gradient
	Normals bool

	// Values requests the trilinearly sampled field at each vertex
	Values bool

	// Workers bounds the goroutines used; 0 means runtime.NumCPU()
	Workers int

	// Logger receives debug output; nil discards it
	Logger logrus.FieldLogger
}

// DefaultOptions returns options matching the usual call: corrected
// method, descent, unit step, degenerate triangles kept, normals and values
// computed on all CPUs.
func DefaultOptions() *Options {
	return &Options{
		GradientDirection: Descent,
		StepSize:          1,
		AllowDegenerate:   true,
		Method:            Corrected,
		Normals:           true,
		Values:            true,
		Workers:           runtime.NumCPU(),
	}
}

// Level returns a pointer to v for Options.Level.
func Level(v float64) *float64 { return &v }

func (o *Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o *Options) step() int {
	if o.StepSize == 0 {
		return 1
	}
	return o.StepSize
}

func (o *Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// validate checks the options that do not depend on the volume values, in
// the order method, gradient direction, step size.
func (o *Options) validate(g *volume.Grid) error {
	switch o.Method {
	case Corrected, Classic:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidMethod, o.Method)
	}
	switch o.GradientDirection {
	case Descent, Ascent:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidGradientDirection, o.GradientDirection)
	}
	step := o.step()
	if step < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidStepSize, o.StepSize)
	}
	nx, ny, nz := g.Shape()
	for axis, n := range [3]int{nx, ny, nz} {
		if step > n-1 {
			return fmt.Errorf("%w: step %d leaves no cube along axis %d of size %d", ErrInvalidStepSize, step, axis, n)
		}
	}
	return nil
}

// resolveLevel picks the default level and checks it against the volume
// extrema.
func (o *Options) resolveLevel(g *volume.Grid) (float64, error) {
	lo, hi := g.MinMax()
	level := (lo + hi) / 2
	if o.Level != nil {
		level = *o.Level
	}
	if !(level > lo && level < hi) {
		return 0, fmt.Errorf("%w: %v is not strictly between the volume minimum %v and maximum %v", ErrInvalidLevel, level, lo, hi)
	}
	return level, nil
}
