package renderer

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// Camera generates rays for rendering and drives the image loop
type Camera struct {
	config     CameraConfig
	integrator integrator.Integrator
	sampler    core.Sampler
	logger     core.Logger

	// Derived by Initialize
	imageHeight  int
	center       core.Point3
	pixel00      core.Point3
	pixelDeltaU  core.Vec3
	pixelDeltaV  core.Vec3
	u, v, w      core.Vec3
	defocusDiskU core.Vec3
	defocusDiskV core.Vec3
}

// NewCamera creates a camera that path traces with the given sampler.
// Derived state is invalid until Initialize or Render is called.
func NewCamera(config CameraConfig, sampler core.Sampler) *Camera {
	return &Camera{
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(),
		sampler:    sampler,
	}
}

// SetLogger sets the progress logger; nil disables progress output
func (c *Camera) SetLogger(logger core.Logger) {
	c.logger = logger
}

// SetIntegrator replaces the light transport algorithm
func (c *Camera) SetIntegrator(integrator integrator.Integrator) {
	c.integrator = integrator
}

// Config returns the camera configuration
func (c *Camera) Config() CameraConfig {
	return c.config
}

// ImageHeight returns the derived image height
func (c *Camera) ImageHeight() int {
	return c.imageHeight
}

// Initialize derives the viewport geometry from the configuration
func (c *Camera) Initialize() {
	c.imageHeight = int(float64(c.config.Width) / c.config.AspectRatio)
	if c.imageHeight < 1 {
		c.imageHeight = 1
	}

	c.center = c.config.LookFrom

	// Determine viewport dimensions
	theta := core.DegreesToRadians(c.config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * c.config.FocusDistance
	viewportWidth := viewportHeight * (float64(c.config.Width) / float64(c.imageHeight))

	// Camera coordinate frame
	c.w = c.config.LookFrom.Subtract(c.config.LookAt).Normalize()
	c.u = c.w.Cross(c.config.Up).Normalize()
	c.v = c.w.Cross(c.u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Multiply(viewportHeight)

	c.pixelDeltaU = viewportU.Divide(float64(c.config.Width))
	c.pixelDeltaV = viewportV.Divide(float64(c.imageHeight))

	viewportUpperLeft := c.center.
		Subtract(c.w.Multiply(c.config.FocusDistance)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))
	c.pixel00 = viewportUpperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	// Defocus disk basis
	defocusRadius := c.config.FocusDistance * math.Tan(core.DegreesToRadians(c.config.DefocusAngle/2))
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)
}

// GetRay returns a randomly sampled camera ray through pixel (i, j),
// originating from the defocus disk when depth of field is enabled
func (c *Camera) GetRay(i, j int) core.Ray {
	pixelCenter := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
	pixelSample := pixelCenter.Add(c.pixelSampleSquare())

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample()
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// pixelSampleSquare returns a random offset in the square surrounding a pixel
func (c *Camera) pixelSampleSquare() core.Vec3 {
	offset := c.sampler.Get2D()
	px := offset.X - 0.5
	py := offset.Y - 0.5
	return c.pixelDeltaU.Multiply(px).Add(c.pixelDeltaV.Multiply(py))
}

func (c *Camera) defocusDiskSample() core.Point3 {
	p := core.RandomInUnitDisk(c.sampler)
	return c.center.
		Add(c.defocusDiskU.Multiply(p.X)).
		Add(c.defocusDiskV.Multiply(p.Y))
}

// Render writes the world as a plain-text PPM image to w
func (c *Camera) Render(world geometry.Shape, w io.Writer) error {
	_, err := c.RenderTo(world, NewPPMWriter(w))
	return err
}

// RenderTo renders the world scanline by scanline into sink.
// The first sink error aborts the render.
func (c *Camera) RenderTo(world geometry.Shape, sink PixelSink) (RenderStats, error) {
	if err := c.config.Validate(); err != nil {
		return RenderStats{}, err
	}
	c.Initialize()

	start := time.Now()
	width, height := c.config.Width, c.imageHeight
	spp := c.config.SamplesPerPixel
	collector := newStatsCollector(width, height)

	if err := sink.WriteHeader(width, height); err != nil {
		return RenderStats{}, fmt.Errorf("write header: %w", err)
	}

	for j := 0; j < height; j++ {
		c.logf("Scanlines remaining: %d", height-j)
		for i := 0; i < width; i++ {
			var pixel PixelStats
			for s := 0; s < spp; s++ {
				ray := c.GetRay(i, j)
				pixel.AddSample(c.integrator.RayColor(ray, world, c.config.MaxDepth, c.sampler))
			}
			if err := sink.WritePixel(pixel.ColorAccum, spp); err != nil {
				return RenderStats{}, fmt.Errorf("write pixel (%d, %d): %w", i, j, err)
			}
			collector.add(pixel)
		}
	}

	if err := sink.Flush(); err != nil {
		return RenderStats{}, fmt.Errorf("flush image: %w", err)
	}

	stats := collector.finish(time.Since(start))
	c.logf("Done")
	c.logf("Rendered %dx%d with %d samples in %v (mean luminance %.4f, std dev %.4f, mean pixel variance %.4f)",
		width, height, stats.TotalSamples, stats.Elapsed, stats.MeanLuminance, stats.StdDevLuminance, stats.MeanVariance)

	return stats, nil
}

func (c *Camera) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format+"\n", args...)
	}
}
