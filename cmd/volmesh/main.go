package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"volmesh/pkg/config"
	"volmesh/pkg/reconstruction"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "volmesh.yaml", "Configuration file")
	createConfig := flag.Bool("create-config", false, "Write the default configuration to -config and exit")
	source := flag.String("source", "", "Volume source: ellipsoid, sphere, torus, slices or raw")
	axes := flag.String("axes", "", "Comma separated ellipsoid semi-axes or sphere radius")
	gridSize := flag.Int("grid", 0, "Double torus resolution")
	inputDir := flag.String("input", "", "Directory containing numbered slice images")
	rawPath := flag.String("raw", "", "Little-endian float32 volume file")
	rawShape := flag.String("shape", "", "Comma separated shape of the raw volume")
	level := flag.String("level", "", "Isovalue (default: middle of the value range)")
	method := flag.String("method", "", "Extraction method: corrected or classic")
	spacing := flag.String("spacing", "", "Comma separated sample spacing")
	step := flag.Int("step", 0, "Sample every n-th grid point")
	workers := flag.Int("cores", 0, "Number of CPU cores to use")
	outputName := flag.String("out", "", "Output STL filename")
	weld := flag.Float64("weld", -1, "Weld vertices closer than this distance")
	previewDir := flag.String("preview", "", "Directory to save contour previews")
	verbose := flag.Bool("verbose", false, "Verbose mode")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *createConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.WithError(err).Fatal("Failed to create config file")
		}
		log.WithField("file", *configPath).Info("Default configuration written")
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	// Flags override the file
	if *source != "" {
		cfg.Input.Source = *source
	}
	if *axes != "" {
		if cfg.Input.Axes, err = parseFloats(*axes); err != nil {
			log.WithError(err).Fatal("Invalid -axes")
		}
	}
	if *gridSize > 0 {
		cfg.Input.GridSize = *gridSize
	}
	if *inputDir != "" {
		cfg.Input.SliceDir = *inputDir
	}
	if *rawPath != "" {
		cfg.Input.RawPath = *rawPath
	}
	if *rawShape != "" {
		if cfg.Input.RawShape, err = parseInts(*rawShape); err != nil {
			log.WithError(err).Fatal("Invalid -shape")
		}
	}
	if *level != "" {
		v, err := strconv.ParseFloat(*level, 64)
		if err != nil {
			log.WithError(err).Fatal("Invalid -level")
		}
		cfg.Extraction.Level = &v
	}
	if *method != "" {
		cfg.Extraction.Method = *method
	}
	if *spacing != "" {
		if cfg.Extraction.Spacing, err = parseFloats(*spacing); err != nil {
			log.WithError(err).Fatal("Invalid -spacing")
		}
	}
	if *step > 0 {
		cfg.Extraction.StepSize = *step
	}
	if *workers > 0 {
		cfg.Extraction.Workers = *workers
	}
	if *outputName != "" {
		cfg.Output.STLPath = *outputName
	}
	if *weld >= 0 {
		cfg.Output.WeldTolerance = *weld
	}
	if *previewDir != "" {
		cfg.Output.PreviewDir = *previewDir
	}
	if *verbose {
		cfg.Output.Verbose = true
	}
	if cfg.Output.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	params, err := reconstruction.ParamsFromConfig(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	startTime := time.Now()
	reconstructor := reconstruction.NewReconstructor(params)
	if err := reconstructor.Process(); err != nil {
		log.WithError(err).Fatal("Reconstruction failed")
	}
	processingTime := time.Since(startTime)

	metrics := reconstructor.GetMetrics()
	fmt.Printf("\nExtraction completed in %.2f seconds\n", processingTime.Seconds())
	if cfg.Output.STLPath != "" {
		fmt.Printf("Mesh saved to: %s\n", cfg.Output.STLPath)
	}
	fmt.Printf("\nMesh metrics:\n")
	fmt.Printf("=============\n")
	fmt.Printf("Level:                %g\n", metrics.Level)
	fmt.Printf("Vertices:             %d\n", metrics.Vertices)
	fmt.Printf("Triangles:            %d\n", metrics.Triangles)
	fmt.Printf("Welded vertices:      %d\n", metrics.Welded)
	fmt.Printf("Surface area:         %.4f\n", metrics.Area)
	fmt.Printf("Triangle area:        %.4f ± %.4f\n", metrics.TriangleAreaMean, metrics.TriangleAreaStdDev)
	fmt.Printf("Edge length:          %.4f ± %.4f\n", metrics.EdgeLengthMean, metrics.EdgeLengthStdDev)
	fmt.Printf("Watertight:           %t\n", metrics.Watertight)
	fmt.Printf("Consistently wound:   %t\n", metrics.Oriented)
	fmt.Printf("Components:           %d\n", metrics.Components)
	fmt.Printf("Euler characteristic: %d\n", metrics.EulerCharacteristic)
	fmt.Printf("Bounds:               (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		metrics.Min.X, metrics.Min.Y, metrics.Min.Z, metrics.Max.X, metrics.Max.Y, metrics.Max.Z)
	fmt.Printf("Principal extents:    %.3f x %.3f x %.3f\n", metrics.Extent[0], metrics.Extent[1], metrics.Extent[2])
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
