package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// NewSingleSphereScene creates a minimal scene with one diffuse sphere,
// useful for quick renders and debugging.
func NewSingleSphereScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),  // Camera at the origin
		LookAt:        core.NewVec3(0, 0, -1), // Look straight down the -Z axis
		Up:            core.NewVec3(0, 1, 0),
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          90.0, // Wide field of view
		Aperture:      0.0,  // Pinhole camera, no depth of field
		FocusDistance: 0.0,  // Auto-calculate focus distance
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

	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, gray))

	return s
}
