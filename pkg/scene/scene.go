package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera      // Camera built from CameraConfig
	CameraConfig   renderer.CameraConfig // Configuration the camera was built from
	TopColor       core.Vec3             // Sky gradient top color
	BottomColor    core.Vec3             // Sky gradient bottom color
	Shapes         []core.Shape          // Objects in the scene
	SamplingConfig core.SamplingConfig
}

// GetCamera returns the camera for rendering
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetBackgroundColors returns the sky gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetShapes returns the objects in the scene
func (s *Scene) GetShapes() []core.Shape {
	return s.Shapes
}

// GetSamplingConfig returns the sampling configuration
func (s *Scene) GetSamplingConfig() core.SamplingConfig {
	return s.SamplingConfig
}

// AddShape adds an object to the scene
func (s *Scene) AddShape(shape core.Shape) {
	s.Shapes = append(s.Shapes, shape)
}
