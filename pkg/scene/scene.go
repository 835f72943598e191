package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	Shapes       []geometry.Shape // Objects in the scene
	CameraConfig renderer.CameraConfig
}

// NewScene creates an empty scene viewed through cameraConfig
func NewScene(name string, cameraConfig renderer.CameraConfig) *Scene {
	return &Scene{
		Name:         name,
		Shapes:       make([]geometry.Shape, 0),
		CameraConfig: cameraConfig,
	}
}

// Add appends a shape to the scene
func (s *Scene) Add(shape geometry.Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// Hit returns the closest intersection among all shapes.
// Each accepted hit shrinks the search interval, so later shapes must be nearer to win.
func (s *Scene) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	var closest *material.HitRecord
	closestSoFar := rayT.Max

	for _, shape := range s.Shapes {
		if hit, ok := shape.Hit(ray, core.NewInterval(rayT.Min, closestSoFar)); ok {
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, closest != nil
}

// NewCamera creates a camera for this scene using the given sampler
func (s *Scene) NewCamera(sampler core.Sampler) *renderer.Camera {
	return renderer.NewCamera(s.CameraConfig, sampler)
}

// applyOverrides merges the first override, if any, on top of base
func applyOverrides(base renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) > 0 {
		return renderer.MergeCameraConfig(base, overrides[0])
	}
	return base
}
