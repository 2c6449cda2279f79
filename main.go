package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/composite"
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/loaders"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// compositeOptions holds the optional post-processing flags
type compositeOptions struct {
	blendPath   string
	blendAlpha  float64
	overlayPath string
	overlayAt   string
	edits       string
}

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Scene type: 'default', 'grid' or 'single'")
	width := flag.Int("width", 0, "Image width in pixels (0 = scene default)")
	samples := flag.Int("samples", 0, "Samples per pixel (0 = scene default)")
	depth := flag.Int("depth", 0, "Maximum ray bounce depth (0 = scene default)")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = CPU count)")
	outputBase := flag.String("output", "output", "Base directory for rendered images")
	blendPath := flag.String("blend", "", "Reference image to blend with the render")
	blendAlpha := flag.Float64("blend-alpha", 0.5, "Blend weight for the reference image")
	overlayPath := flag.String("overlay", "", "Image to draw on top of the render")
	overlayAt := flag.String("overlay-at", "0,0", "Overlay position as 'x,y'")
	edits := flag.String("edits", "", "Manual pixel edits, e.g. '10,20=#FF0000;30,40=#00FF00'")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Weekend Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		fmt.Println("  default - Five-sphere scene with diffuse, metal and hollow glass spheres")
		fmt.Println("  grid    - 20x20 sphere grid cycling through material types")
		fmt.Println("  single  - One diffuse sphere, renders quickly")
		fmt.Println()
		fmt.Println("Output will be saved to <output>/<scene>/render_<timestamp>.png")
		return
	}

	fmt.Println("Starting raytracer...")

	// Create scene based on command line arguments
	selectedScene, err := createScene(*sceneType, *width)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Create output directory for this scene type
	outputDir := createOutputDir(*outputBase, *sceneType)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	// Create raytracer with optional sampling overrides
	raytracer := renderer.NewScanlineRaytracer(selectedScene,
		renderer.ScanlineConfig{NumWorkers: *workers}, renderer.NewDefaultLogger())
	raytracer.MergeSamplingConfig(core.SamplingConfig{
		SamplesPerPixel: *samples,
		MaxDepth:        *depth,
	})

	// Render, reporting progress every 50 rows
	startTime := time.Now()
	img, stats, err := raytracer.Render(func(row renderer.RowCompletionResult) {
		if row.RowNumber%50 == 0 || row.RowNumber == row.TotalRows {
			fmt.Printf("  %d/%d rows\n", row.RowNumber, row.TotalRows)
		}
	})
	if err != nil {
		fmt.Printf("Error rendering: %v\n", err)
		os.Exit(1)
	}
	renderTime := time.Since(startTime)

	fmt.Printf("Render completed in %v (%.0f samples/pixel)\n", renderTime, stats.AverageSamples)

	// Optional post-processing
	img, err = applyCompositing(img, compositeOptions{
		blendPath:   *blendPath,
		blendAlpha:  *blendAlpha,
		overlayPath: *overlayPath,
		overlayAt:   *overlayAt,
		edits:       *edits,
	})
	if err != nil {
		fmt.Printf("Error compositing: %v\n", err)
		os.Exit(1)
	}

	// Create timestamped filename
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))

	if err := savePNG(filename, img); err != nil {
		fmt.Printf("Error saving PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render saved as %s\n", filename)
}

// createScene creates a scene based on the scene name, with an optional
// width override
func createScene(sceneType string, width int) (*scene.Scene, error) {
	overrides := renderer.CameraConfig{Width: width}

	switch sceneType {
	case "default":
		return scene.NewDefaultScene(overrides), nil
	case "grid":
		return scene.NewSphereGridScene(overrides), nil
	case "single":
		return scene.NewSingleSphereScene(overrides), nil
	default:
		return nil, fmt.Errorf("unknown scene type: %s", sceneType)
	}
}

// createOutputDir returns the output directory for a scene type
func createOutputDir(base, sceneType string) string {
	return filepath.Join(base, sceneType)
}

// applyCompositing runs the optional post-processing pipeline: blend a
// reference image, draw an overlay, then apply manual pixel edits
func applyCompositing(img *image.RGBA, opts compositeOptions) (*image.RGBA, error) {
	if opts.blendPath != "" {
		reference, err := loaders.LoadImage(opts.blendPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load blend image: %w", err)
		}

		// Match the render size before blending
		overlay := reference.ToRGBA()
		bounds := img.Bounds()
		if overlay.Bounds() != bounds {
			overlay = composite.Resize(overlay, bounds.Dx(), bounds.Dy())
		}

		blended, err := composite.Blend(img, overlay, opts.blendAlpha)
		if err != nil {
			return nil, err
		}
		img = blended
		fmt.Printf("Blended %s at alpha %.2f\n", opts.blendPath, opts.blendAlpha)
	}

	if opts.overlayPath != "" {
		stamp, err := loaders.LoadImage(opts.overlayPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load overlay image: %w", err)
		}
		x, y, err := parseOverlayPosition(opts.overlayAt)
		if err != nil {
			return nil, err
		}
		img = composite.Overlay(img, stamp.ToRGBA(), x, y)
		fmt.Printf("Overlaid %s at (%d,%d)\n", opts.overlayPath, x, y)
	}

	if opts.edits != "" {
		pixelEdits, err := composite.ParseEdits(opts.edits)
		if err != nil {
			return nil, err
		}
		edited, err := composite.ApplyEdits(img, pixelEdits)
		if err != nil {
			return nil, err
		}
		img = edited
		fmt.Printf("Applied %d pixel edits\n", len(pixelEdits))
	}

	return img, nil
}

// parseOverlayPosition parses an 'x,y' position string
func parseOverlayPosition(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid overlay position '%s': expected x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid overlay x coordinate '%s': %v", parts[0], err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid overlay y coordinate '%s': %v", parts[1], err)
	}
	return x, y, nil
}

// savePNG writes the image to a PNG file
func savePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
