package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// FromFile builds a scene from a parsed scene file.
// Each named material is created once and shared by every sphere that references it.
func FromFile(sf *loaders.SceneFile, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	if err := sf.Validate(); err != nil {
		return nil, err
	}

	s := NewScene(sf.Name, applyOverrides(cameraFromSpec(sf.Camera), cameraOverrides))

	materials := make(map[string]material.Material, len(sf.Materials))
	for _, name := range sf.MaterialNames() {
		mat, err := materialFromSpec(sf.Materials[name])
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	for _, sphere := range sf.Spheres {
		var mat material.Material
		if sphere.Material != "" {
			mat = materials[sphere.Material]
		}
		s.Add(geometry.NewSphere(vec3FromArray(sphere.Center), sphere.Radius, mat))
	}

	return s, nil
}

// ToFile describes a scene as a scene file. Materials are named by type in
// order of first use, and a material instance shared by several spheres keeps
// a single entry.
func ToFile(s *Scene, description string) (*loaders.SceneFile, error) {
	sf := &loaders.SceneFile{
		Name:        s.Name,
		Description: description,
		Camera:      cameraToSpec(s.CameraConfig),
		Materials:   make(map[string]loaders.MaterialSpec),
		Spheres:     make([]loaders.SphereSpec, 0, len(s.Shapes)),
	}

	names := make(map[material.Material]string)
	counts := make(map[string]int)
	for i, shape := range s.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			return nil, fmt.Errorf("%w: shape %d is a %T", loaders.ErrInvalidSceneFile, i, shape)
		}

		var name string
		if sphere.Material != nil {
			var seen bool
			if name, seen = names[sphere.Material]; !seen {
				spec, err := materialToSpec(sphere.Material)
				if err != nil {
					return nil, fmt.Errorf("shape %d: %w", i, err)
				}
				counts[spec.Type]++
				name = fmt.Sprintf("%s-%d", spec.Type, counts[spec.Type])
				names[sphere.Material] = name
				sf.Materials[name] = spec
			}
		}

		sf.Spheres = append(sf.Spheres, loaders.SphereSpec{
			Center:   arrayFromVec3(sphere.Center),
			Radius:   sphere.Radius,
			Material: name,
		})
	}

	return sf, nil
}

func materialToSpec(mat material.Material) (loaders.MaterialSpec, error) {
	switch m := mat.(type) {
	case *material.Lambertian:
		return loaders.MaterialSpec{Type: loaders.MaterialLambertian, Albedo: arrayFromVec3(m.Albedo)}, nil
	case *material.Metal:
		return loaders.MaterialSpec{Type: loaders.MaterialMetal, Albedo: arrayFromVec3(m.Albedo), Fuzz: m.Fuzzness}, nil
	case *material.Dielectric:
		return loaders.MaterialSpec{Type: loaders.MaterialDielectric, RefractiveIndex: m.RefractiveIndex}, nil
	default:
		return loaders.MaterialSpec{}, fmt.Errorf("%w: material %T", loaders.ErrInvalidSceneFile, mat)
	}
}

func materialFromSpec(spec loaders.MaterialSpec) (material.Material, error) {
	switch spec.Type {
	case loaders.MaterialLambertian:
		return material.NewLambertian(vec3FromArray(spec.Albedo)), nil
	case loaders.MaterialMetal:
		return material.NewMetal(vec3FromArray(spec.Albedo), spec.Fuzz), nil
	case loaders.MaterialDielectric:
		return material.NewDielectric(spec.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("%w: type %q", loaders.ErrInvalidSceneFile, spec.Type)
	}
}

// cameraFromSpec merges the file camera onto the renderer defaults
func cameraFromSpec(spec loaders.CameraSpec) renderer.CameraConfig {
	config := renderer.MergeCameraConfig(renderer.DefaultCameraConfig(), renderer.CameraConfig{
		AspectRatio:     spec.AspectRatio,
		Width:           spec.Width,
		SamplesPerPixel: spec.SamplesPerPixel,
		MaxDepth:        spec.MaxDepth,
		VFov:            spec.VFov,
		DefocusAngle:    spec.DefocusAngle,
		FocusDistance:   spec.FocusDistance,
	})
	if spec.LookFrom != nil {
		config.LookFrom = vec3FromArray(*spec.LookFrom)
	}
	if spec.LookAt != nil {
		config.LookAt = vec3FromArray(*spec.LookAt)
	}
	if spec.Up != nil {
		config.Up = vec3FromArray(*spec.Up)
	}
	return config
}

func cameraToSpec(c renderer.CameraConfig) loaders.CameraSpec {
	lookFrom, lookAt, up := arrayFromVec3(c.LookFrom), arrayFromVec3(c.LookAt), arrayFromVec3(c.Up)
	return loaders.CameraSpec{
		AspectRatio:     c.AspectRatio,
		Width:           c.Width,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
		VFov:            c.VFov,
		LookFrom:        &lookFrom,
		LookAt:          &lookAt,
		Up:              &up,
		DefocusAngle:    c.DefocusAngle,
		FocusDistance:   c.FocusDistance,
	}
}

func arrayFromVec3(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func vec3FromArray(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
