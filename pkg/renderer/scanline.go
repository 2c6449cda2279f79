package renderer

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ScanlineConfig contains configuration for scanline rendering
type ScanlineConfig struct {
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// Row represents one camera-space scanline of the image
type Row struct {
	J      int        // Row index, counting up from the bottom of the frame
	Random *rand.Rand // Row-specific random generator for deterministic results
}

// NewRow creates a row with its own deterministic random generator
func NewRow(j int) *Row {
	// Seed from the row index so output does not depend on worker count
	random := rand.New(rand.NewSource(int64(j + 42))) // +42 to avoid seed 0

	return &Row{
		J:      j,
		Random: random,
	}
}

// NewRows creates one row per scanline of the image
func NewRows(height int) []*Row {
	rows := make([]*Row, height)
	for j := 0; j < height; j++ {
		rows[j] = NewRow(j)
	}
	return rows
}

// ScanlineRaytracer renders whole scanlines in parallel across a worker pool
type ScanlineRaytracer struct {
	scene         Scene
	width, height int
	config        ScanlineConfig
	rows          []*Row
	pixelStats    [][]PixelStats // Shared pixel statistics array (camera-space rows)
	raytracer     *Raytracer     // Base raytracer for color conversion and config
	workerPool    *WorkerPool    // Worker pool for parallel processing
	logger        core.Logger    // Logger for rendering output
}

// NewScanlineRaytracer creates a new scanline raytracer
func NewScanlineRaytracer(scene Scene, config ScanlineConfig, logger core.Logger) *ScanlineRaytracer {
	// Base raytracer, also the source of image dimensions
	raytracer := NewRaytracer(scene)
	width, height := raytracer.width, raytracer.height

	// One row per scanline, each with its own seeded generator
	rows := NewRows(height)

	// Shared pixel statistics array indexed [row][column]
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	workerPool := NewWorkerPool(scene, height, config.NumWorkers)

	return &ScanlineRaytracer{
		scene:      scene,
		width:      width,
		height:     height,
		config:     config,
		rows:       rows,
		pixelStats: pixelStats,
		raytracer:  raytracer,
		workerPool: workerPool,
		logger:     logger,
	}
}

// MergeSamplingConfig overrides only the sampling fields set in the given config
func (sr *ScanlineRaytracer) MergeSamplingConfig(config core.SamplingConfig) {
	sr.raytracer.MergeSamplingConfig(config)
}

// Width returns the image width in pixels
func (sr *ScanlineRaytracer) Width() int {
	return sr.width
}

// Height returns the image height in pixels
func (sr *ScanlineRaytracer) Height() int {
	return sr.height
}

// RowCompletionResult contains information about a completed row for callbacks
type RowCompletionResult struct {
	RowJ     int         // Camera-space row index (0 = bottom scanline)
	ImageY   int         // Image-space y of this strip (0 = top scanline)
	RowImage *image.RGBA // One-pixel-high strip for just this row

	// Progress information
	RowNumber int // Completion order in this render (1-based)
	TotalRows int // Total number of rows in the image
}

// RenderResult contains the final image and stats of a completed render
type RenderResult struct {
	Image *image.RGBA
	Stats RenderStats
}

// RenderOptions configures streaming render behavior
type RenderOptions struct {
	RowUpdates bool // Whether to generate row completion events
}

// Render renders the image, dispatching rows across the worker pool.
// The optional callback is invoked once per completed row from the
// collecting goroutine, so callers never need their own locking.
func (sr *ScanlineRaytracer) Render(rowCallback func(RowCompletionResult)) (*image.RGBA, RenderStats, error) {
	config := sr.raytracer.config

	sr.logger.Printf("Rendering %dx%d at %d samples per pixel (using %d workers)...\n",
		sr.width, sr.height, config.SamplesPerPixel, sr.workerPool.GetNumWorkers())

	sr.workerPool.Start()
	defer sr.workerPool.Stop()

	// Submit all rows as tasks
	for taskID, row := range sr.rows {
		sr.workerPool.SubmitTask(RowTask{
			Row:            row,
			TaskID:         taskID,
			SamplingConfig: config,
			PixelStats:     sr.pixelStats,
		})
	}

	// Wait for all rows to complete, dispatching callbacks as they arrive
	for i := 0; i < len(sr.rows); i++ {
		result, ok := sr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			return nil, RenderStats{}, result.Error
		}

		if rowCallback != nil {
			row := sr.rows[result.TaskID]
			rowCallback(RowCompletionResult{
				RowJ:      row.J,
				ImageY:    sr.height - 1 - row.J,
				RowImage:  sr.extractRowImage(row.J),
				RowNumber: i + 1,
				TotalRows: len(sr.rows),
			})
		}
	}

	// Assemble the image and calculate final stats from actual pixel data
	img, stats := sr.assembleImage()

	return img, stats, nil
}

// RenderStream renders with channel-based communication.
// Returns channels for events. The caller should read from these channels
// in separate goroutines. If options.RowUpdates is false, the row channel
// is closed immediately and no row events are generated.
func (sr *ScanlineRaytracer) RenderStream(ctx context.Context, options RenderOptions) (<-chan RowCompletionResult, <-chan RenderResult, <-chan error) {
	rowChan := make(chan RowCompletionResult, 100) // Buffer for rows
	resultChan := make(chan RenderResult, 1)
	errChan := make(chan error, 1)

	// If row updates are disabled, close the channel immediately
	if !options.RowUpdates {
		close(rowChan)
	}

	go func() {
		defer close(resultChan)
		if options.RowUpdates {
			defer close(rowChan)
		}
		defer close(errChan)

		// Check if the client disconnected before starting
		select {
		case <-ctx.Done():
			errChan <- ctx.Err()
			return
		default:
		}

		startTime := time.Now()

		// Create a row callback only if row updates are enabled
		var rowCallback func(RowCompletionResult)
		if options.RowUpdates {
			rowCallback = func(result RowCompletionResult) {
				select {
				case rowChan <- result:
				case <-ctx.Done():
					return
				default:
					// Channel full, drop the update
				}
			}
		}

		img, stats, err := sr.Render(rowCallback)
		if err != nil {
			errChan <- err
			return
		}

		sr.logger.Printf("Render completed in %v (%.0f samples/pixel)\n",
			time.Since(startTime), stats.AverageSamples)

		select {
		case resultChan <- RenderResult{Image: img, Stats: stats}:
		case <-ctx.Done():
		}
	}()

	return rowChan, resultChan, errChan
}

// extractRowImage builds a one-pixel-high strip for a completed camera row
func (sr *ScanlineRaytracer) extractRowImage(j int) *image.RGBA {
	strip := image.NewRGBA(image.Rect(0, 0, sr.width, 1))

	for i := 0; i < sr.width; i++ {
		pixel := &sr.pixelStats[j][i]
		strip.SetRGBA(i, 0, sr.raytracer.vec3ToColor(pixel.GetColor()))
	}

	return strip
}

// assembleImage creates the final image from the shared pixel stats and
// calculates render statistics in a single pass
func (sr *ScanlineRaytracer) assembleImage() (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, sr.width, sr.height))

	stats := RenderStats{
		TotalPixels: sr.width * sr.height,
	}

	for j := 0; j < sr.height; j++ {
		for i := 0; i < sr.width; i++ {
			pixel := &sr.pixelStats[j][i]

			// Camera rows count up from the bottom, image rows from the top
			img.SetRGBA(i, sr.height-1-j, sr.raytracer.vec3ToColor(pixel.GetColor()))

			stats.TotalSamples += pixel.SampleCount
		}
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)

	return img, stats
}
