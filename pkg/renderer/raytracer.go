package renderer

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() core.SamplingConfig {
	return core.SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
	GetShapes() []core.Shape
	GetSamplingConfig() core.SamplingConfig
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene  Scene
	width  int
	height int
	config core.SamplingConfig
	random *rand.Rand
}

// NewRaytracer creates a new raytracer sized from the scene's camera
func NewRaytracer(scene Scene) *Raytracer {
	camera := scene.GetCamera()
	return &Raytracer{
		scene:  scene,
		width:  camera.Width(),
		height: camera.Height(),
		config: DefaultSamplingConfig().Merge(scene.GetSamplingConfig()),
		random: rand.New(rand.NewSource(42)), // Deterministic for testing
	}
}

// MergeSamplingConfig overrides only the sampling fields set in the given config
func (rt *Raytracer) MergeSamplingConfig(config core.SamplingConfig) {
	rt.config = rt.config.Merge(config)
}

// hitWorld checks if a ray hits any object in the scene
func (rt *Raytracer) hitWorld(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	var closestHit *core.HitRecord
	closestSoFar := tMax
	hitAnything := false

	for _, shape := range rt.scene.GetShapes() {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, hitAnything
}

// backgroundGradient returns a gradient color based on ray direction
func (rt *Raytracer) backgroundGradient(r core.Ray) core.Vec3 {
	// Get colors from the scene
	topColor, bottomColor := rt.scene.GetBackgroundColors()

	// Normalize the ray direction to get consistent results
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}

// rayColorRecursive returns the color for a given ray with material support
func (rt *Raytracer) rayColorRecursive(r core.Ray, depth int, random *rand.Rand) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	// Check for intersections with objects, starting slightly off the
	// surface to avoid shadow acne
	hit, isHit := rt.hitWorld(r, 0.001, math.Inf(1))
	if !isHit {
		return rt.backgroundGradient(r)
	}

	// Try to scatter the ray
	scatter, didScatter := hit.Material.Scatter(r, *hit, random)
	if !didScatter {
		return core.Vec3{X: 0, Y: 0, Z: 0} // Material absorbed the ray
	}

	// Attenuate whatever light the scattered ray gathers
	return scatter.Attenuation.MultiplyVec(
		rt.rayColorRecursive(scatter.Scattered, depth-1, random))
}

// vec3ToColor converts a Vec3 color to RGBA with gamma correction and clamping
func (rt *Raytracer) vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = colorVec.GammaCorrect(2.0)

	// Clamp below 1.0 so the 256 scale never overflows a byte
	colorVec = colorVec.Clamp(0.0, 0.999)

	return color.RGBA{
		R: uint8(256 * colorVec.X),
		G: uint8(256 * colorVec.Y),
		B: uint8(256 * colorVec.Z),
		A: 255,
	}
}

// RenderPixel renders a single pixel with the given sample count and
// returns the averaged linear color before gamma correction
func (rt *Raytracer) RenderPixel(pixelI, pixelJ, samples int, random *rand.Rand) core.Vec3 {
	camera := rt.scene.GetCamera()

	colorAccum := core.Vec3{X: 0, Y: 0, Z: 0}
	for sample := 0; sample < samples; sample++ {
		ray := camera.GetRay(pixelI, pixelJ, random)
		colorAccum = colorAccum.Add(rt.rayColorRecursive(ray, rt.config.MaxDepth, random))
	}

	return colorAccum.Multiply(1.0 / float64(samples))
}

// RenderRow renders one camera-space scanline into the shared pixel stats
// array. Rows are disjoint, so concurrent calls on different rows are safe.
func (rt *Raytracer) RenderRow(j int, pixelStats [][]PixelStats, random *rand.Rand) RenderStats {
	camera := rt.scene.GetCamera()

	for i := 0; i < rt.width; i++ {
		ps := &pixelStats[j][i]
		for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
			ray := camera.GetRay(i, j, random)
			ps.AddSample(rt.rayColorRecursive(ray, rt.config.MaxDepth, random))
		}
	}

	totalSamples := rt.width * rt.config.SamplesPerPixel
	return RenderStats{
		TotalPixels:    rt.width,
		TotalSamples:   totalSamples,
		AverageSamples: float64(rt.config.SamplesPerPixel),
	}
}

// RenderPass renders the whole frame on the calling goroutine and returns
// an image. The scanline raytracer is the parallel path; this one is used
// for single-shot rendering and tests.
func (rt *Raytracer) RenderPass() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	camera := rt.scene.GetCamera()

	for j := rt.height - 1; j >= 0; j-- {
		for i := 0; i < rt.width; i++ {
			// Accumulate color from multiple samples
			colorAccum := core.Vec3{X: 0, Y: 0, Z: 0}

			for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
				ray := camera.GetRay(i, j, rt.random)
				colorAccum = colorAccum.Add(rt.rayColorRecursive(ray, rt.config.MaxDepth, rt.random))
			}

			// Average the accumulated colors
			colorVec := colorAccum.Multiply(1.0 / float64(rt.config.SamplesPerPixel))
			pixelColor := rt.vec3ToColor(colorVec)

			// Camera rows count up from the bottom, image rows from the top
			img.SetRGBA(i, rt.height-1-j, pixelColor)
		}
	}

	return img
}
