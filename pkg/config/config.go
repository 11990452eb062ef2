// Package config provides configuration loading and management for volmesh.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"volmesh/pkg/marching"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Volume sources understood by the input section.
const (
	SourceEllipsoid = "ellipsoid"
	SourceSphere    = "sphere"
	SourceTorus     = "torus"
	SourceSlices    = "slices"
	SourceRaw       = "raw"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Extraction parameters
	Extraction struct {
		// Level is the isovalue; nil extracts at the middle of the value range
		Level *float64 `yaml:"level,omitempty"`

		// Spacing is the physical sample distance along each axis
		Spacing []float64 `yaml:"spacing"`

		// GradientDirection is "descent" or "ascent"
		GradientDirection string `yaml:"gradientDirection"`

		// StepSize samples every n-th grid point
		StepSize int `yaml:"stepSize"`

		// AllowDegenerate keeps zero area triangles
		AllowDegenerate bool `yaml:"allowDegenerate"`

		// Method is "corrected" or "classic"
		Method string `yaml:"method"`

		// Normals and Values request per-vertex attributes
		Normals bool `yaml:"normals"`
		Values  bool `yaml:"values"`

		// Workers specifies how many CPU cores to use for parallel processing
		Workers int `yaml:"workers"`
	} `yaml:"extraction"`

	// Input parameters
	Input struct {
		// Source selects where the volume comes from
		Source string `yaml:"source"`

		// Axes are the ellipsoid semi-axes; the sphere uses the first
		Axes []float64 `yaml:"axes"`

		// GridSize is the torus resolution
		GridSize int `yaml:"gridSize"`

		// SliceDir is the directory of numbered grayscale slice images
		SliceDir string `yaml:"sliceDir,omitempty"`

		// RawPath is a little-endian float32 volume file
		RawPath string `yaml:"rawPath,omitempty"`

		// RawShape is the shape of the raw volume
		RawShape []int `yaml:"rawShape,omitempty"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// STLPath is where the mesh is written; empty skips writing
		STLPath string `yaml:"stlPath"`

		// WeldTolerance merges vertices closer than this; zero disables welding
		WeldTolerance float64 `yaml:"weldTolerance"`

		// PreviewDir receives PNG slices with the contour marked; empty skips them
		PreviewDir string `yaml:"previewDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default extraction parameters
	cfg.Extraction.Spacing = []float64{1, 1, 1}
	cfg.Extraction.GradientDirection = marching.Descent.String()
	cfg.Extraction.StepSize = 1
	cfg.Extraction.AllowDegenerate = true
	cfg.Extraction.Method = marching.Corrected.String()
	cfg.Extraction.Normals = true
	cfg.Extraction.Values = true
	cfg.Extraction.Workers = runtime.NumCPU() // Use all available cores by default

	// Set default input parameters
	cfg.Input.Source = SourceEllipsoid
	cfg.Input.Axes = []float64{6, 10, 16}
	cfg.Input.GridSize = 48

	// Set default output parameters
	cfg.Output.STLPath = "output.stl"
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the input and output sections. Extraction settings are
// checked by ExtractionOptions and by the extractor itself.
func (c *Config) Validate() error {
	switch c.Input.Source {
	case SourceEllipsoid:
		if len(c.Input.Axes) != 3 {
			return fmt.Errorf("%w: ellipsoid needs 3 axes, got %d", ErrInvalidConfig, len(c.Input.Axes))
		}
	case SourceSphere:
		if len(c.Input.Axes) < 1 {
			return fmt.Errorf("%w: sphere needs a radius in axes", ErrInvalidConfig)
		}
	case SourceTorus:
		if c.Input.GridSize < 2 {
			return fmt.Errorf("%w: torus grid size %d", ErrInvalidConfig, c.Input.GridSize)
		}
	case SourceSlices:
		if c.Input.SliceDir == "" {
			return fmt.Errorf("%w: slices source needs sliceDir", ErrInvalidConfig)
		}
	case SourceRaw:
		if c.Input.RawPath == "" || len(c.Input.RawShape) != 3 {
			return fmt.Errorf("%w: raw source needs rawPath and a 3 axis rawShape", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Input.Source)
	}
	if c.Output.WeldTolerance < 0 {
		return fmt.Errorf("%w: negative weld tolerance", ErrInvalidConfig)
	}
	return nil
}

// ExtractionOptions converts the extraction section into extractor options.
func (c *Config) ExtractionOptions() (*marching.Options, error) {
	e := &c.Extraction
	method, err := marching.ParseMethod(e.Method)
	if err != nil {
		return nil, err
	}
	dir, err := marching.ParseGradientDirection(e.GradientDirection)
	if err != nil {
		return nil, err
	}
	opts := &marching.Options{
		Spacing:           e.Spacing,
		GradientDirection: dir,
		StepSize:          e.StepSize,
		AllowDegenerate:   e.AllowDegenerate,
		Method:            method,
		Normals:           e.Normals,
		Values:            e.Values,
		Workers:           e.Workers,
	}
	if e.Level != nil {
		opts.Level = marching.Level(*e.Level)
	}
	return opts, nil
}
