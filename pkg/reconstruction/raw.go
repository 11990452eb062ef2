package reconstruction

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/chewxy/math32"

	"volmesh/pkg/volume"
)

// LoadRaw reads a headerless volume of little-endian float32 samples in
// row-major order, axis 0 slowest.
func LoadRaw(path string, shape []int) (*volume.Volume, error) {
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: need 3 dimensions, got %d", volume.ErrInvalidShape, len(shape))
	}
	n := 1
	for _, s := range shape {
		if s < 2 {
			return nil, fmt.Errorf("%w: shape %v", volume.ErrInvalidShape, shape)
		}
		n *= s
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() != int64(4*n) {
		return nil, fmt.Errorf("%w: %s holds %d bytes, shape %v needs %d", volume.ErrInvalidShape, path, info.Size(), shape, 4*n)
	}

	samples := make([]float32, n)
	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data := make([]float64, n)
	for i, s := range samples {
		if math32.IsNaN(s) || math32.IsInf(s, 0) {
			return nil, fmt.Errorf("sample %d of %s is %v", i, path, s)
		}
		data[i] = float64(s)
	}
	return volume.New(data, shape...)
}

// SaveRaw writes v in the format LoadRaw reads.
func SaveRaw(path string, v *volume.Volume) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	samples := make([]float32, v.Len())
	for i, s := range v.Data() {
		samples[i] = float32(s)
	}
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
