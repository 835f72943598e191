package scene

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

var defaultRange = core.NewInterval(0.001, math.Inf(1))

func TestScene_EmptyReportsNoHit(t *testing.T) {
	s := NewScene("empty", renderer.DefaultCameraConfig())
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if hit, ok := s.Hit(ray, defaultRange); ok || hit != nil {
		t.Errorf("Expected no hit in an empty scene, got %+v", hit)
	}
}

func TestScene_ReturnsNearestOfOverlappingSpheres(t *testing.T) {
	nearMaterial := material.NewLambertian(core.NewColor(1, 0, 0))
	farMaterial := material.NewLambertian(core.NewColor(0, 0, 1))
	near := geometry.NewSphere(core.NewVec3(0, 0, -2), 1, nearMaterial)
	far := geometry.NewSphere(core.NewVec3(0, 0, -3), 1, farMaterial)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	orders := map[string][]geometry.Shape{
		"near first": {near, far},
		"far first":  {far, near},
	}

	for name, shapes := range orders {
		t.Run(name, func(t *testing.T) {
			s := NewScene(name, renderer.DefaultCameraConfig())
			for _, shape := range shapes {
				s.Add(shape)
			}

			hit, ok := s.Hit(ray, defaultRange)
			if !ok {
				t.Fatal("Expected a hit")
			}
			if math.Abs(hit.T-1.0) > 1e-9 {
				t.Errorf("Expected nearest hit at t=1, got t=%f", hit.T)
			}
			if hit.Material != material.Material(nearMaterial) {
				t.Error("Expected the nearer sphere's material")
			}
		})
	}
}

func TestScene_RespectsInterval(t *testing.T) {
	s := NewScene("bounded", renderer.DefaultCameraConfig())
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -2), 0.5, nil))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -6), 0.5, nil))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, ok := s.Hit(ray, core.NewInterval(0.001, 1.0)); ok {
		t.Error("Expected no hit before both spheres")
	}

	hit, ok := s.Hit(ray, core.NewInterval(3.0, 100))
	if !ok || math.Abs(hit.T-5.5) > 1e-9 {
		t.Errorf("Expected the far sphere at t=5.5, got %v %v", hit, ok)
	}
}

func TestScene_RendersThroughCamera(t *testing.T) {
	s := NewGroundScene(renderer.CameraConfig{Width: 8, SamplesPerPixel: 2})
	camera := s.NewCamera(core.NewSeededSampler(1))

	stats, err := camera.RenderTo(s, renderer.NewImageWriter())
	if err != nil {
		t.Fatalf("RenderTo failed: %v", err)
	}
	// 8 / (16/9) = 4.5 floors to 4 rows
	if stats.TotalPixels != 8*4 || stats.TotalSamples != 8*4*2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
