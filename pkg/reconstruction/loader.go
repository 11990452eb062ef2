package reconstruction

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"volmesh/internal/models"
	"volmesh/pkg/volume"
)

// ErrNoSlices is returned when a slice directory holds no images.
var ErrNoSlices = errors.New("no slice images found")

// LoadSlices reads the JPEG and PNG images in dir, ordered by the number in
// their file names.
func LoadSlices(dir string) ([]models.Slice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var imageFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			imageFiles = append(imageFiles, entry.Name())
		}
	}
	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSlices, dir)
	}

	sort.SliceStable(imageFiles, func(i, j int) bool {
		return extractNumber(imageFiles[i]) < extractNumber(imageFiles[j])
	})

	slices := make([]models.Slice, 0, len(imageFiles))
	for i, filename := range imageFiles {
		img, err := loadImage(filepath.Join(dir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", filename, err)
		}
		if len(slices) > 0 && img.Bounds().Size() != slices[0].Image.Bounds().Size() {
			return nil, fmt.Errorf("image %s is %v, first slice is %v", filename, img.Bounds().Size(), slices[0].Image.Bounds().Size())
		}
		slices = append(slices, models.Slice{Image: img, Index: i, Filename: filename})
	}
	return slices, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}
	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

// SlicesToVolume stacks slices along axis 0, rows along axis 1 and
// columns along axis 2, with intensities scaled to [0, 1]. Slices are
// converted on up to workers goroutines.
func SlicesToVolume(slices []models.Slice, workers int) (*volume.Volume, error) {
	if len(slices) == 0 {
		return nil, ErrNoSlices
	}
	bounds := slices[0].Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	v, err := volume.Zeros(len(slices), height, width)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	perCore := (len(slices) + workers - 1) / workers
	for c := 0; c < workers; c++ {
		start, end := c*perCore, min((c+1)*perCore, len(slices))
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				img := slices[i].Image
				b := img.Bounds()
				for y := 0; y < height; y++ {
					for x := 0; x < width; x++ {
						r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
						// Convert 16-bit color to float64 (0-1 range)
						v.Set(i, y, x, float64(r)/65535.0)
					}
				}
			}
		}(start, end)
	}
	wg.Wait()
	return v, nil
}
