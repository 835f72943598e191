package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewGroundScene creates a single material-less ground sphere lit by the sky.
// Without a material the ground shows its surface normals.
func NewGroundScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		Width:           400,
		SamplesPerPixel: 100,
		MaxDepth:        10,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		Up:              core.NewVec3(0, 1, 0),
		FocusDistance:   1,
	}

	s := NewScene("ground", applyOverrides(defaultCameraConfig, cameraOverrides))
	s.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, nil))
	return s
}

// NewFourSpheresScene creates the diffuse, fuzzy metal and hollow glass spheres on a ground sphere
func NewFourSpheresScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		Width:           400,
		SamplesPerPixel: 20,
		MaxDepth:        50,
		VFov:            20,
		LookFrom:        core.NewVec3(10, 10, 1),
		LookAt:          core.NewVec3(0, 0, -1),
		Up:              core.NewVec3(0, 1, 0),
		DefocusAngle:    10,
		FocusDistance:   3.4,
	}

	s := NewScene("four-spheres", applyOverrides(defaultCameraConfig, cameraOverrides))

	materialGround := material.NewLambertian(core.NewColor(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewColor(0.1, 0.2, 0.5))
	materialLeft := material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 1.0)
	materialRight := material.NewDielectric(1.5)

	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, materialCenter))
	s.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, materialGround))
	s.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, materialLeft))
	// Negative radius turns the glass sphere into a bubble
	s.Add(geometry.NewSphere(core.NewVec3(1, 0, -1), -0.5, materialRight))

	return s
}

// NewRandomSpheresScene creates a field of small random spheres around three large ones.
// Every random choice is drawn from sampler, so a seeded sampler gives a reproducible scene.
func NewRandomSpheresScene(sampler core.Sampler, cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		Width:           1200,
		SamplesPerPixel: 1000,
		MaxDepth:        50,
		VFov:            20,
		LookFrom:        core.NewVec3(15, 2, 6),
		LookAt:          core.NewVec3(0, 0, 0),
		Up:              core.NewVec3(0, 1, 0),
		DefocusAngle:    0.6,
		FocusDistance:   10,
	}

	s := NewScene("random-spheres", applyOverrides(defaultCameraConfig, cameraOverrides))

	groundMaterial := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, groundMaterial))

	// Small spheres share one glass instance
	glass := material.NewDielectric(1.5)
	keepClear := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(
				float64(a)+0.9*sampler.Get1D(),
				0.2,
				float64(b)+0.9*sampler.Get1D(),
			)
			if center.Subtract(keepClear).Length() <= 0.9 {
				continue
			}

			var sphereMaterial material.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(sampler).MultiplyVec(core.RandomVec3(sampler))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.RandomVec3InRange(sampler, 0.5, 1)
				fuzz := core.RandomFloat(sampler, 0, 0.5)
				sphereMaterial = material.NewMetal(albedo, fuzz)
			default:
				sphereMaterial = glass
			}
			s.Add(geometry.NewSphere(center, 0.2, sphereMaterial))
		}
	}

	s.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.9)))
	s.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewColor(0.4, 0.2, 0.1))))
	s.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewColor(0.7, 0.6, 0.5), 0.0)))

	return s
}
