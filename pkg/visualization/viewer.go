// Package visualization renders axis-aligned slices of a volume as images
// with the isosurface contour marked, as a quick check of the level chosen
// for extraction.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"volmesh/pkg/volume"
)

// contourColor marks samples whose neighbour lies across the level.
var contourColor = color.RGBA{R: 255, A: 255}

// Viewer extracts slices from a volume. Axis names follow the sample
// layout: "z" is axis 0, "y" axis 1 and "x" axis 2.
type Viewer struct {
	// vol holds the samples
	vol *volume.Volume

	// level is the isovalue the contour is drawn at
	level float64

	// lo and hi map sample values onto the gray range
	lo, hi float64
}

// NewViewer creates a viewer for vol with the contour at level.
func NewViewer(vol *volume.Volume, level float64) *Viewer {
	lo, hi := vol.MinMax()
	return &Viewer{vol: vol, level: level, lo: lo, hi: hi}
}

// plane describes a slice: the fixed axis and the two axes along the
// image columns and rows.
type plane struct {
	fixed, col, row int
}

func parseAxis(axis string) (plane, error) {
	switch axis {
	case "z", "Z":
		return plane{fixed: 0, col: 2, row: 1}, nil
	case "y", "Y":
		return plane{fixed: 1, col: 2, row: 0}, nil
	case "x", "X":
		return plane{fixed: 2, col: 0, row: 1}, nil
	}
	return plane{}, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
}

func (v *Viewer) shape() [3]int {
	nx, ny, nz := v.vol.Shape()
	return [3]int{nx, ny, nz}
}

// at returns the sample at column c and row r of the slice.
func (v *Viewer) at(p plane, position, c, r int) float64 {
	var idx [3]int
	idx[p.fixed], idx[p.col], idx[p.row] = position, c, r
	return v.vol.At(idx[0], idx[1], idx[2])
}

func (v *Viewer) bounds(axis string, position int) (plane, image.Rectangle, error) {
	p, err := parseAxis(axis)
	if err != nil {
		return p, image.Rectangle{}, err
	}
	shape := v.shape()
	if position < 0 || position >= shape[p.fixed] {
		return p, image.Rectangle{}, fmt.Errorf("position %d outside axis %s of size %d", position, axis, shape[p.fixed])
	}
	return p, image.Rect(0, 0, shape[p.col], shape[p.row]), nil
}

func (v *Viewer) gray(value float64) uint16 {
	if v.hi <= v.lo {
		return 0
	}
	return uint16(math.Max(0, math.Min(65535, (value-v.lo)/(v.hi-v.lo)*65535)))
}

// ExtractSlice returns the slice at position along axis as a grayscale
// image scaled from the volume minimum to maximum.
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	p, rect, err := v.bounds(axis, position)
	if err != nil {
		return nil, err
	}
	img := image.NewGray16(rect)
	for r := 0; r < rect.Dy(); r++ {
		for c := 0; c < rect.Dx(); c++ {
			img.SetGray16(c, r, color.Gray16{Y: v.gray(v.at(p, position, c, r))})
		}
	}
	return img, nil
}

// ContourSlice is ExtractSlice with every sample at or below the level
// that has a neighbour above it painted red.
func (v *Viewer) ContourSlice(axis string, position int) (*image.RGBA, error) {
	p, rect, err := v.bounds(axis, position)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(rect)
	below := func(c, r int) bool { return v.at(p, position, c, r) <= v.level }
	for r := 0; r < rect.Dy(); r++ {
		for c := 0; c < rect.Dx(); c++ {
			edge := false
			if below(c, r) {
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nc, nr := c+d[0], r+d[1]
					if image.Pt(nc, nr).In(rect) && !below(nc, nr) {
						edge = true
						break
					}
				}
			}
			if edge {
				img.SetRGBA(c, r, contourColor)
				continue
			}
			g := uint8(v.gray(v.at(p, position, c, r)) >> 8)
			img.SetRGBA(c, r, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img, nil
}

// ExtractRegion copies the box starting at (startX, startY, startZ) with
// the given size into a new volume. Every size must be at least 2.
func (v *Viewer) ExtractRegion(startX, startY, startZ, sizeX, sizeY, sizeZ int) (*volume.Volume, error) {
	if startX < 0 || startY < 0 || startZ < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	shape := v.shape()
	if startZ+sizeZ > shape[0] || startY+sizeY > shape[1] || startX+sizeX > shape[2] {
		return nil, fmt.Errorf("region extends beyond volume boundaries")
	}
	region, err := volume.Zeros(sizeZ, sizeY, sizeX)
	if err != nil {
		return nil, err
	}
	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			for x := 0; x < sizeX; x++ {
				region.Set(z, y, x, v.vol.At(startZ+z, startY+y, startX+x))
			}
		}
	}
	return region, nil
}

// SaveSlice saves an image as PNG
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSliceSequence saves every stride-th contour slice along axis into
// outputDir and returns the number written.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string, stride int) (int, error) {
	p, err := parseAxis(axis)
	if err != nil {
		return 0, err
	}
	if stride < 1 {
		stride = 1
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	n := 0
	for pos := 0; pos < v.shape()[p.fixed]; pos += stride {
		img, err := v.ContourSlice(axis, pos)
		if err != nil {
			return n, err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
