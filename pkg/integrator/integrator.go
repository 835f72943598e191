package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance carried back along ray with at most depth bounces
	RayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Color
}

// SkyGradient is a vertical blend used as the only light source
type SkyGradient struct {
	Bottom core.Color // Color when looking straight down
	Top    core.Color // Color when looking straight up
}

// DefaultSkyGradient returns the white to sky-blue gradient
func DefaultSkyGradient() SkyGradient {
	return SkyGradient{
		Bottom: core.NewColor(1.0, 1.0, 1.0),
		Top:    core.NewColor(0.5, 0.7, 1.0),
	}
}

// Color returns the sky color seen along direction
func (g SkyGradient) Color(direction core.Vec3) core.Color {
	unitDirection := direction.Normalize()
	a := 0.5 * (unitDirection.Y + 1.0)
	return g.Bottom.Multiply(1.0 - a).Add(g.Top.Multiply(a))
}
