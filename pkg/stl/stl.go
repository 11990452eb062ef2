// Package stl reads and writes meshes as binary STL files.
package stl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"

	"volmesh/internal/d3"
	"volmesh/pkg/mesh"
)

var (
	// ErrEmpty is returned when writing or reading a file with no triangles.
	ErrEmpty = errors.New("stl: no triangles")

	// ErrBadTriangle is returned when a triangle written or read back holds
	// NaN or infinite components.
	ErrBadTriangle = errors.New("stl: inf/NaN triangle component")
)

const (
	headerSize   = 80
	triangleSize = 50
)

// Triangle is one facet as stored in the file.
type Triangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
}

// FromMesh converts faces to facets. Facet normals follow the winding of
// each face; degenerate faces get a zero normal.
func FromMesh(m *mesh.Mesh) []Triangle {
	tris := make([]Triangle, len(m.Faces))
	for i := range m.Faces {
		t := m.Triangle(i)
		var n r3.Vec
		if c := t.Cross(); r3.Norm(c) > 0 {
			n = r3.Unit(c)
		}
		tris[i] = Triangle{
			Normal:  vec32(n),
			Vertex1: vec32(t[0]),
			Vertex2: vec32(t[1]),
			Vertex3: vec32(t[2]),
		}
	}
	return tris
}

// ToMesh converts facets to an indexed mesh, merging vertices with
// identical coordinates.
func ToMesh(tris []Triangle) *mesh.Mesh {
	m := &mesh.Mesh{Faces: make([][3]int, 0, len(tris))}
	index := make(map[[3]float32]int, len(tris)/2)
	vertex := func(p [3]float32) int {
		if i, ok := index[p]; ok {
			return i
		}
		i := len(m.Vertices)
		index[p] = i
		m.Vertices = append(m.Vertices, r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
		return i
	}
	for _, t := range tris {
		m.Faces = append(m.Faces, [3]int{vertex(t.Vertex1), vertex(t.Vertex2), vertex(t.Vertex3)})
	}
	return m
}

func vec32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Write encodes tris as a binary STL stream.
func Write(w io.Writer, tris []Triangle) error {
	if len(tris) == 0 {
		return ErrEmpty
	}
	bw := bufio.NewWriter(w)
	var header [headerSize + 4]byte
	copy(header[:], "volmesh binary STL")
	binary.LittleEndian.PutUint32(header[headerSize:], uint32(len(tris)))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	var b [triangleSize]byte
	for _, t := range tris {
		t.put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read decodes a binary STL stream.
func Read(r io.Reader) ([]Triangle, error) {
	var header [headerSize + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(header[headerSize:])
	if count == 0 {
		return nil, ErrEmpty
	}

	br := bufio.NewReader(r)
	tris := make([]Triangle, 0, count)
	var b [triangleSize]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		var t Triangle
		t.get(b[:])
		if bad3F32(t.Normal) || bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
			return nil, fmt.Errorf("triangle %d: %w", i, ErrBadTriangle)
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// SaveToSTL writes tris to a file at path.
func SaveToSTL(path string, tris []Triangle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}
	if err := Write(f, tris); err != nil {
		f.Close()
		return fmt.Errorf("failed to write STL file: %w", err)
	}
	return f.Close()
}

// Save writes the faces of m to a file at path. Meshes with NaN or
// infinite vertices are rejected before the file is created.
func Save(path string, m *mesh.Mesh) error {
	for i, v := range m.Vertices {
		if !d3.IsFinite(v) {
			return fmt.Errorf("vertex %d: %w", i, ErrBadTriangle)
		}
	}
	return SaveToSTL(path, FromMesh(m))
}

// Load reads a binary STL file into an indexed mesh.
func Load(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open STL file: %w", err)
	}
	defer f.Close()
	tris, err := Read(f)
	if err != nil {
		return nil, err
	}
	return ToMesh(tris), nil
}

func (t Triangle) put(b []byte) {
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *Triangle) get(b []byte) {
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	for _, c := range f {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return true
		}
	}
	return false
}
