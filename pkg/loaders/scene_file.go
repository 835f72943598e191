package loaders

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Material types understood by scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

var (
	// ErrUnknownMaterial is returned when a sphere names a material the file does not define
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrInvalidSceneFile is returned for structurally invalid scene files
	ErrInvalidSceneFile = errors.New("invalid scene file")
)

// SceneFile is the on-disk YAML description of a scene
type SceneFile struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description,omitempty"`
	Camera      CameraSpec              `yaml:"camera"`
	Materials   map[string]MaterialSpec `yaml:"materials"`
	Spheres     []SphereSpec            `yaml:"spheres"`
}

// CameraSpec holds camera settings. Zero scalars and omitted vectors keep the
// renderer defaults; a vector that is present is used as written, origin included.
type CameraSpec struct {
	AspectRatio     float64     `yaml:"aspect_ratio,omitempty"`
	Width           int         `yaml:"width,omitempty"`
	SamplesPerPixel int         `yaml:"samples_per_pixel,omitempty"`
	MaxDepth        int         `yaml:"max_depth,omitempty"`
	VFov            float64     `yaml:"vfov,omitempty"`
	LookFrom        *[3]float64 `yaml:"look_from,flow,omitempty"`
	LookAt          *[3]float64 `yaml:"look_at,flow,omitempty"`
	Up              *[3]float64 `yaml:"up,flow,omitempty"`
	DefocusAngle    float64     `yaml:"defocus_angle,omitempty"`
	FocusDistance   float64     `yaml:"focus_distance,omitempty"`
}

// MaterialSpec describes one named, shareable material
type MaterialSpec struct {
	Type            string     `yaml:"type"`
	Albedo          [3]float64 `yaml:"albedo,flow,omitempty"`
	Fuzz            float64    `yaml:"fuzz,omitempty"`
	RefractiveIndex float64    `yaml:"refractive_index,omitempty"`
}

// SphereSpec places one sphere; an empty material renders its normals
type SphereSpec struct {
	Center   [3]float64 `yaml:"center,flow"`
	Radius   float64    `yaml:"radius"`
	Material string     `yaml:"material,omitempty"`
}

// LoadSceneFile reads and validates a scene file from disk
func LoadSceneFile(path string) (*SceneFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene file: %w", err)
	}
	defer f.Close()

	sf, err := ParseSceneFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sf, nil
}

// ParseSceneFile decodes and validates a scene file
func ParseSceneFile(r io.Reader) (*SceneFile, error) {
	var sf SceneFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidSceneFile, err)
	}
	if err := sf.Validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

// SaveSceneFile writes a scene file to disk as YAML
func SaveSceneFile(path string, sf *SceneFile) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close scene file: %w", cerr)
		}
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(sf); err != nil {
		return fmt.Errorf("encode scene file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode scene file: %w", err)
	}
	return nil
}

// Validate checks material types and sphere references
func (sf *SceneFile) Validate() error {
	for _, name := range sf.MaterialNames() {
		spec := sf.Materials[name]
		switch spec.Type {
		case MaterialLambertian, MaterialMetal:
		case MaterialDielectric:
			if spec.RefractiveIndex <= 0 {
				return fmt.Errorf("%w: material %q needs a positive refractive_index", ErrInvalidSceneFile, name)
			}
		default:
			return fmt.Errorf("%w: material %q has unsupported type %q", ErrInvalidSceneFile, name, spec.Type)
		}
	}

	for i, sphere := range sf.Spheres {
		if sphere.Radius == 0 {
			return fmt.Errorf("%w: sphere %d has zero radius", ErrInvalidSceneFile, i)
		}
		if sphere.Material == "" {
			continue
		}
		if _, ok := sf.Materials[sphere.Material]; !ok {
			return fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, sphere.Material)
		}
	}
	return nil
}

// MaterialNames returns the defined material names in sorted order
func (sf *SceneFile) MaterialNames() []string {
	names := make([]string, 0, len(sf.Materials))
	for name := range sf.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
