package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// pixelCenterSampler returns 0.5 in every dimension, which puts camera rays
// through pixel centers and starts them at the lens center
type pixelCenterSampler struct{}

func (pixelCenterSampler) Get1D() float64 { return 0.5 }
func (pixelCenterSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }
func (pixelCenterSampler) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case nil:
		return "normals", properties

	case *material.Lambertian:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of pixel (x, y) and describes the first surface it hits
func inspectPixel(sceneObj *scene.Scene, x, y int) (InspectResponse, error) {
	if err := sceneObj.CameraConfig.Validate(); err != nil {
		return InspectResponse{}, err
	}

	camera := sceneObj.NewCamera(pixelCenterSampler{})
	camera.Initialize()

	width, height := camera.Config().Width, camera.ImageHeight()
	if x < 0 || x >= width || y < 0 || y >= height {
		return InspectResponse{}, fmt.Errorf("pixel (%d, %d) outside %dx%d image", x, y, width, height)
	}

	ray := camera.GetRay(x, y)
	hit, ok := sceneObj.Hit(ray, core.NewInterval(0.001, math.Inf(1)))
	if !ok {
		return InspectResponse{Hit: false, Properties: map[string]interface{}{}}, nil
	}

	materialType, properties := extractMaterialInfo(hit.Material)
	return InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.T * ray.Direction.Length(),
		FrontFace:    hit.FrontFace,
		Properties:   properties,
	}, nil
}

// handleInspect reports the surface seen through one pixel of a scene
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("x") == "" || query.Get("y") == "" {
		s.writeJSONError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	x, err := parseIntParam(query, "x", 0, 0, 10000)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseIntParam(query, "y", 0, 0, 10000)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	width, err := parseIntParam(query, "width", 0, 1, 2000)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	seed, err := parseSeedParam(query)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &RenderRequest{Scene: mux.Vars(r)["scene"], Width: width, Seed: seed}
	sceneObj, err := s.createScene(req.Scene, core.NewSeededSampler(seed), req.cameraOverrides())
	if err != nil {
		s.writeJSONError(w, sceneErrorStatus(err), err.Error())
		return
	}

	result, err := inspectPixel(sceneObj, x, y)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, renderer.ErrInvalidCamera) {
			status = sceneErrorStatus(err)
		}
		s.writeJSONError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Color) string {
	clamp := core.NewInterval(0, 1)
	return fmt.Sprintf("#%02x%02x%02x",
		int(clamp.Clamp(c.X)*255), int(clamp.Clamp(c.Y)*255), int(clamp.Clamp(c.Z)*255))
}
