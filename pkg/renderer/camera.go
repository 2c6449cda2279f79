package renderer

import (
	"math"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// CameraConfig contains the parameters that position and shape the camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is aimed at
	Up            core.Vec3 // World up vector
	Width         int       // Image width in pixels
	AspectRatio   float64   // Width / height
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter (0 = pinhole, no defocus blur)
	FocusDistance float64   // Distance to the plane in focus (0 = distance to LookAt)
}

// Camera generates rays for rendering using a thin lens model
type Camera struct {
	config          CameraConfig
	width           int
	height          int
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Orthonormal camera basis
	lensRadius      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	height := int(float64(config.Width) / config.AspectRatio)

	// Focus on the look-at point unless an explicit distance is given
	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	// Convert the vertical field of view to viewport dimensions
	theta := config.VFov * math.Pi / 180.0
	h := math.Tan(theta / 2)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	// Camera basis: w points backward, u right, v up
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	// Scale the viewport by the focus distance so the lens samples converge
	// on the focus plane
	horizontal := u.Multiply(viewportWidth * focusDistance)
	vertical := v.Multiply(viewportHeight * focusDistance)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		config:          config,
		width:           config.Width,
		height:          height,
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}
}

// GetRay generates a jittered ray through the given pixel
func (c *Camera) GetRay(pixelI, pixelJ int, random *rand.Rand) core.Ray {
	s := (float64(pixelI) + random.Float64()) / float64(c.width-1)
	t := (float64(pixelJ) + random.Float64()) / float64(c.height-1)

	origin := c.origin
	if c.lensRadius > 0 {
		// Defocus blur: offset the ray origin within the lens disk
		rd := core.RandomInUnitDisk(random).Multiply(c.lensRadius)
		offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
		origin = origin.Add(offset)
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// GetCameraForward returns the direction the camera is looking
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.width
}

// Height returns the image height in pixels, derived from width and aspect ratio
func (c *Camera) Height() int {
	return c.height
}

// MergeCameraConfig merges an override config into a base config,
// replacing only the fields the override sets to non-zero values
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	merged := base
	if override.Center != (core.Vec3{}) {
		merged.Center = override.Center
	}
	if override.LookAt != (core.Vec3{}) {
		merged.LookAt = override.LookAt
	}
	if override.Up != (core.Vec3{}) {
		merged.Up = override.Up
	}
	if override.Width > 0 {
		merged.Width = override.Width
	}
	if override.AspectRatio > 0 {
		merged.AspectRatio = override.AspectRatio
	}
	if override.VFov > 0 {
		merged.VFov = override.VFov
	}
	if override.Aperture > 0 {
		merged.Aperture = override.Aperture
	}
	if override.FocusDistance > 0 {
		merged.FocusDistance = override.FocusDistance
	}
	return merged
}
