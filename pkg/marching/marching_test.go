package marching

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/pkg/mesh"
	"volmesh/pkg/shapes"
	"volmesh/pkg/volume"
)

// cubeVolume builds a single cube from its corner values.
func cubeVolume(t *testing.T, values [8]float64) *volume.Volume {
	t.Helper()
	v, err := volume.Zeros(2, 2, 2)
	require.NoError(t, err)
	for c, o := range cornerOffsets {
		v.Set(o[0], o[1], o[2], values[c])
	}
	return v
}

func extract(t testing.TB, v *volume.Volume, method Method, mutate ...func(*Options)) *mesh.Mesh {
	t.Helper()
	opts := DefaultOptions()
	opts.Level = Level(0)
	opts.Method = method
	for _, fn := range mutate {
		fn(opts)
	}
	m, err := Extract(v, opts)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	return m
}

// signedVolume is positive when faces wind outwards.
func signedVolume(m *mesh.Mesh) float64 {
	var sum float64
	for i := range m.Faces {
		tri := m.Triangle(i)
		sum += r3.Dot(tri[0], r3.Cross(tri[1], tri[2])) / 6
	}
	return sum
}

func TestSingleCubeFaceAmbiguity(t *testing.T) {
	v := cubeVolume(t, [8]float64{-1, 0.2, -1, 0.2, 1, 1, 1, 1})

	classic := extract(t, v, Classic)
	assert.Equal(t, 6, classic.VertexCount())
	assert.Equal(t, 2, classic.TriangleCount())

	// The below corners are joined across the bottom face: one hexagon.
	corrected := extract(t, v, Corrected)
	assert.Equal(t, 6, corrected.VertexCount())
	assert.Equal(t, 4, corrected.TriangleCount())
	assert.Equal(t, 1, corrected.Topology().Components)
}

func TestSingleCubeInteriorTube(t *testing.T) {
	v := cubeVolume(t, [8]float64{-1, 0.1, 0.1, 0.1, 0.1, 0.1, -1, 0.1})

	classic := extract(t, v, Classic)
	assert.Equal(t, 2, classic.TriangleCount())
	assert.Equal(t, 2, classic.Topology().Components)

	corrected := extract(t, v, Corrected)
	assert.Equal(t, 6, corrected.VertexCount())
	assert.Equal(t, 6, corrected.TriangleCount())
	assert.Equal(t, 1, corrected.Topology().Components)

	// Far from the level the two corners stay apart in both methods.
	v = cubeVolume(t, [8]float64{-1, 1, 1, 1, 1, 1, -1, 1})
	assert.Equal(t, 2, extract(t, v, Corrected).TriangleCount())
}

func TestEllipsoidIsotropic(t *testing.T) {
	v, err := shapes.Ellipsoid(6, 10, 16, nil)
	require.NoError(t, err)
	_, surf, err := shapes.EllipsoidStats(6, 10, 16)
	require.NoError(t, err)

	for _, method := range []Method{Classic, Corrected} {
		t.Run(method.String(), func(t *testing.T) {
			m := extract(t, v, method)
			area, err := m.Area()
			require.NoError(t, err)
			assert.Less(t, area, surf)
			assert.Greater(t, area, 0.99*surf)

			topo := m.Topology()
			assert.True(t, topo.Watertight())
			assert.True(t, topo.Oriented())
		})
	}
}

func TestEllipsoidAnisotropic(t *testing.T) {
	spacing := []float64{1, 10.0 / 6, 16.0 / 6}
	v, err := shapes.Ellipsoid(6, 10, 16, spacing)
	require.NoError(t, err)
	_, surf, err := shapes.EllipsoidStats(6, 10, 16)
	require.NoError(t, err)

	for _, method := range []Method{Classic, Corrected} {
		for _, degenerate := range []bool{true, false} {
			m := extract(t, v, method, func(o *Options) {
				o.Spacing = spacing
				o.AllowDegenerate = degenerate
			})
			area, err := m.Area()
			require.NoError(t, err)
			assert.Less(t, area, surf, "%v degenerate=%v", method, degenerate)
			assert.Greater(t, area, 0.985*surf, "%v degenerate=%v", method, degenerate)
		}
	}
}

func TestDegenerateFilter(t *testing.T) {
	v, err := shapes.Ellipsoid(6, 10, 16, []float64{1, 10.0 / 6, 16.0 / 6})
	require.NoError(t, err)

	kept := extract(t, v, Corrected)
	dropped := extract(t, v, Corrected, func(o *Options) { o.AllowDegenerate = false })
	assert.Less(t, dropped.TriangleCount(), kept.TriangleCount())
	assert.Less(t, dropped.VertexCount(), kept.VertexCount())
	for i := range dropped.Faces {
		assert.False(t, dropped.Triangle(i).Degenerate(degenerateTol), "face %d", i)
	}
	assert.Len(t, dropped.Normals, dropped.VertexCount())
	assert.Len(t, dropped.Values, dropped.VertexCount())

	a, err := kept.Area()
	require.NoError(t, err)
	b, err := dropped.Area()
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-6)
}

func TestSmallSphereSameMesh(t *testing.T) {
	v, err := shapes.Ellipsoid(1, 1, 1, nil)
	require.NoError(t, err)

	classic := extract(t, v, Classic)
	corrected := extract(t, v, Corrected)
	assert.Equal(t, 30, classic.VertexCount())
	assert.Equal(t, 56, classic.TriangleCount())
	assert.True(t, mesh.Equivalent(classic, corrected, 1e-10))

	noDegenerate := func(o *Options) { o.AllowDegenerate = false }
	classic = extract(t, v, Classic, noDegenerate)
	corrected = extract(t, v, Corrected, noDegenerate)
	assert.Equal(t, 8, corrected.TriangleCount())
	assert.Equal(t, 17, corrected.VertexCount())
	assert.True(t, mesh.Equivalent(classic, corrected, 1e-10))

	area, err := corrected.Area()
	require.NoError(t, err)
	assert.InDelta(t, 4*math.Sqrt(3), area, 1e-9)
}

func TestDoubleTorus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 48^3 double torus in short mode")
	}
	v, err := shapes.DoubleTorus(48)
	require.NoError(t, err)

	classic := extract(t, v, Classic)
	corrected := extract(t, v, Corrected)
	assert.False(t, mesh.Equivalent(classic, corrected, 1e-10))
	assert.False(t, classic.Topology().Watertight())

	topo := corrected.Topology()
	assert.True(t, topo.Watertight())
	assert.True(t, topo.Oriented())
	assert.Equal(t, 2, topo.Components)
	assert.Equal(t, 0, corrected.EulerCharacteristic())
}

func TestRandomVolumesAreClosed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sizes := []int{4, 6, 9}
	ties := []float64{-1, 0, 1, 0.5}
	for seed := 0; seed < 200; seed++ {
		n := sizes[rng.Intn(len(sizes))]
		mode := seed % 3
		v, err := shapes.FromFunc(n, n, n, func(i, j, k int) float64 {
			if min(i, j, k) == 0 || max(i, j, k) == n-1 {
				return 1
			}
			switch mode {
			case 0:
				return ties[rng.Intn(len(ties))]
			case 1:
				return rng.Float64()*2 - 1
			default:
				return rng.NormFloat64() + 0.3
			}
		})
		require.NoError(t, err)
		if lo, _ := v.MinMax(); lo >= 0 {
			continue
		}

		m := extract(t, v, Corrected, func(o *Options) { o.Normals, o.Values = false, false })
		topo := m.Topology()
		assert.True(t, topo.Watertight(), "seed %d", seed)
		assert.True(t, topo.Oriented(), "seed %d", seed)
	}
}

func TestAdjacentCubesShareTubeEdges(t *testing.T) {
	tests := []struct {
		name      string
		shape     []int
		data      []float64
		triangles int
	}{
		{
			name:      "band",
			shape:     []int{2, 2, 3},
			data:      []float64{0.5, -0.5, 0.7, -0.2, 0.7, -0.5, 0.3, 0.1, 0.1, -0.9, -0.1, -0.5},
			triangles: 16,
		},
		{
			name:      "ring",
			shape:     []int{2, 3, 2},
			data:      []float64{0.3, 0.2, -0.2, 0.2, -0.1, -0.9, -0.5, 0.5, 0.2, -0.2, 0.7, 0.7},
			triangles: 23,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := volume.New(tt.data, tt.shape...)
			require.NoError(t, err)

			m := extract(t, v, Corrected)
			assert.Equal(t, tt.triangles, m.TriangleCount())
			topo := m.Topology()
			assert.Zero(t, topo.NonManifold)
			assert.Zero(t, topo.Misoriented)
		})
	}
}

func TestZeroOptions(t *testing.T) {
	v, err := shapes.Ellipsoid(1, 1, 1, nil)
	require.NoError(t, err)

	m, err := Extract(v, &Options{Level: Level(0)})
	require.NoError(t, err)
	assert.Equal(t, 8, m.TriangleCount())
	assert.Nil(t, m.Normals)
	assert.Nil(t, m.Values)

	full := extract(t, v, Corrected)
	assert.Equal(t, 56, full.TriangleCount())
	assert.NotNil(t, full.Normals)
}

func TestWorkerCountDoesNotChangeOutput(t *testing.T) {
	v, err := shapes.DoubleTorus(24)
	require.NoError(t, err)

	want := extract(t, v, Corrected, func(o *Options) { o.Workers = 1 })
	require.False(t, want.IsEmpty())
	for _, workers := range []int{2, 5, 64} {
		got := extract(t, v, Corrected, func(o *Options) { o.Workers = workers })
		assert.Equal(t, want.Vertices, got.Vertices, "workers %d", workers)
		assert.Equal(t, want.Faces, got.Faces, "workers %d", workers)
		assert.Equal(t, want.Normals, got.Normals, "workers %d", workers)
	}
}

func TestGradientDirection(t *testing.T) {
	v, err := shapes.Sphere(6, nil)
	require.NoError(t, err)
	centre := r3.Vec{X: 7, Y: 7, Z: 7}

	descent := extract(t, v, Corrected)
	assert.Less(t, signedVolume(descent), 0.0)
	for i, n := range descent.Normals {
		assert.InDelta(t, 1, r3.Norm(n), 1e-9)
		assert.Less(t, r3.Dot(n, r3.Sub(descent.Vertices[i], centre)), 0.0, "vertex %d", i)
	}

	ascent := extract(t, v, Corrected, func(o *Options) { o.GradientDirection = Ascent })
	assert.Greater(t, signedVolume(ascent), 0.0)
	assert.InDelta(t, -signedVolume(descent), signedVolume(ascent), 1e-9)
	for i, n := range ascent.Normals {
		assert.Greater(t, r3.Dot(n, r3.Sub(ascent.Vertices[i], centre)), 0.0, "vertex %d", i)
	}
	for i, val := range descent.Values {
		assert.InDelta(t, 0, val, 0.05, "vertex %d", i)
	}
}

func TestSpacingScalesVertices(t *testing.T) {
	v, err := shapes.Sphere(3, nil)
	require.NoError(t, err)

	unit := extract(t, v, Corrected)
	scaled := extract(t, v, Corrected, func(o *Options) { o.Spacing = []float64{2, 1, 0.5} })
	require.Equal(t, unit.Faces, scaled.Faces)
	for i, p := range unit.Vertices {
		q := scaled.Vertices[i]
		assert.Equal(t, r3.Vec{X: 2 * p.X, Y: p.Y, Z: 0.5 * p.Z}, q)
	}
}

func TestStepSize(t *testing.T) {
	v, err := shapes.Ellipsoid(6, 10, 16, nil)
	require.NoError(t, err)
	_, surf, err := shapes.EllipsoidStats(6, 10, 16)
	require.NoError(t, err)

	fine := extract(t, v, Corrected)
	coarse := extract(t, v, Corrected, func(o *Options) { o.StepSize = 2 })
	assert.Less(t, coarse.TriangleCount(), fine.TriangleCount()/2)

	area, err := coarse.Area()
	require.NoError(t, err)
	assert.Greater(t, area, 0.95*surf)
	assert.Less(t, area, surf)
	assert.True(t, coarse.Topology().Watertight())
}

func TestInvalidInput(t *testing.T) {
	_, err := volume.New(make([]float64, 4), 2, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = volume.New(make([]float64, 400), 20, 20)
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = MarchingCubes(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = Extract(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidShape)

	zeros, err := volume.Zeros(3, 3, 3)
	require.NoError(t, err)
	ones, err := volume.New([]float64{1, 1, 1, 1, 1, 1, 1, 1}, 2, 2, 2)
	require.NoError(t, err)
	ramp, err := shapes.FromFunc(4, 4, 4, func(i, j, k int) float64 { return float64(i + j + k) })
	require.NoError(t, err)

	tests := []struct {
		name   string
		v      *volume.Volume
		mutate func(*Options)
		want   error
	}{
		{"two component spacing", ones, func(o *Options) { o.Spacing = []float64{1, 2} }, ErrInvalidSpacing},
		{"zero spacing", ramp, func(o *Options) { o.Spacing = []float64{1, 0, 1} }, ErrInvalidSpacing},
		{"zeros at level 0", zeros, func(o *Options) { o.Level = Level(0) }, ErrInvalidLevel},
		{"ones at level 1", ones, func(o *Options) { o.Level = Level(1) }, ErrInvalidLevel},
		{"constant default level", zeros, nil, ErrInvalidLevel},
		{"level at maximum", ramp, func(o *Options) { o.Level = Level(9) }, ErrInvalidLevel},
		{"nan level", ramp, func(o *Options) { o.Level = Level(math.NaN()) }, ErrInvalidLevel},
		{"unknown method", ramp, func(o *Options) { o.Method = Method(7) }, ErrInvalidMethod},
		{"unknown direction", ramp, func(o *Options) { o.GradientDirection = GradientDirection(3) }, ErrInvalidGradientDirection},
		{"negative step", ramp, func(o *Options) { o.StepSize = -1 }, ErrInvalidStepSize},
		{"step past the grid", ramp, func(o *Options) { o.StepSize = 4 }, ErrInvalidStepSize},
		// Method is checked before level.
		{"method before level", zeros, func(o *Options) { o.Method = Method(7) }, ErrInvalidMethod},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tc.mutate != nil {
				tc.mutate(opts)
			}
			_, err := Extract(tc.v, opts)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	// The largest step that still leaves one cube is fine.
	m, err := Extract(ramp, &Options{StepSize: 3, Level: Level(4.5)})
	require.NoError(t, err)
	assert.False(t, m.IsEmpty())
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Method{"corrected": Corrected, "Lewiner": Corrected, "classic": Classic, " lorensen ": Classic} {
		got, err := ParseMethod(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMethod("_lorensen")
	assert.ErrorIs(t, err, ErrInvalidMethod)

	d, err := ParseGradientDirection("ASCENT")
	require.NoError(t, err)
	assert.Equal(t, Ascent, d)
	_, err = ParseGradientDirection("up")
	assert.ErrorIs(t, err, ErrInvalidGradientDirection)

	assert.Equal(t, "classic", Classic.String())
	assert.Equal(t, "descent", Descent.String())
}

func TestCrossing(t *testing.T) {
	assert.Equal(t, 0.25, crossing(0, 4, 1))
	assert.Equal(t, 0.0, crossing(1, 1, 1))
	assert.Equal(t, 1.0, crossing(3, 1, 1))
	assert.Equal(t, 0.0, crossing(2, 2, 5))
	assert.Equal(t, 1.0, crossing(0, 2, 7))

	p := interpolate(r3.Vec{}, r3.Vec{X: 2}, -1, 1, 0)
	assert.Equal(t, r3.Vec{X: 1}, p)
}

func TestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	v, err := shapes.Sphere(2, nil)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Level, opts.Logger = Level(0), logger
	_, err = Extract(v, opts)
	require.NoError(t, err)

	require.NotEmpty(t, hook.AllEntries())
	last := hook.LastEntry()
	assert.Equal(t, "Extraction complete", last.Message)
	assert.Contains(t, last.Data, "triangles")
}

func BenchmarkMarchingCubes(b *testing.B) {
	v, err := shapes.DoubleTorus(48)
	require.NoError(b, err)
	for _, method := range []Method{Classic, Corrected} {
		b.Run(method.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				extract(b, v, method)
			}
		})
	}
}
