package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// NewDefaultScene creates the classic five-sphere scene: ground, a diffuse
// sphere, a metal sphere, and a hollow glass sphere.
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	// Default camera configuration
	defaultCameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(3, 3, 2),    // Position camera up and to the right
		LookAt:        core.NewVec3(0, 0, -1),   // Look at the center sphere
		Up:            core.NewVec3(0, 1, 0),    // Standard up direction
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          20.0, // Narrow field of view for focus effect
		Aperture:      2.0,  // Strong depth of field blur
		FocusDistance: 0.0,  // Auto-calculate focus distance to the look-at point
	}

	// Apply any overrides using the reusable merge function
	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	camera := renderer.NewCamera(cameraConfig)

	samplingConfig := core.SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	s := &Scene{
		Camera:         camera,
		CameraConfig:   cameraConfig,
		TopColor:       core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0), // White horizon
		Shapes:         make([]core.Shape, 0),
		SamplingConfig: samplingConfig,
	}

	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	materialGlass := material.NewDielectric(1.5)
	materialMetal := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.AddShape(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, materialGround))
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, materialCenter))
	// Hollow glass sphere: a negative-radius inner shell flips the normals
	// so the inside surface refracts correctly.
	s.AddShape(geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, materialGlass))
	s.AddShape(geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, materialGlass))
	s.AddShape(geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, materialMetal))

	return s
}
