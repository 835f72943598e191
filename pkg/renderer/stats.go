package renderer

import (
	"image"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width           int           // Image width
	Height          int           // Image height
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	Elapsed         time.Duration // Wall time spent rendering
	MeanLuminance   float64       // Mean of per-pixel average luminance
	StdDevLuminance float64       // Standard deviation of per-pixel average luminance
	MeanVariance    float64       // Mean of per-pixel sample luminance variance
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum       core.Color // RGB accumulator for final result
	LuminanceAccum   float64    // Luminance accumulator
	LuminanceSqAccum float64    // Luminance squared for variance
	SampleCount      int        // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Color) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Color {
	if ps.SampleCount == 0 {
		return core.Color{}
	}
	return ps.ColorAccum.Divide(float64(ps.SampleCount))
}

// Variance returns the sample variance of the luminance seen by this pixel
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	return math.Max(0, (ps.LuminanceSqAccum-n*mean*mean)/(n-1))
}

// statsCollector gathers per-pixel results for a RenderStats summary
type statsCollector struct {
	luminance    []float64
	variance     []float64
	totalSamples int
	width        int
	height       int
}

func newStatsCollector(width, height int) *statsCollector {
	return &statsCollector{
		luminance: make([]float64, 0, width*height),
		variance:  make([]float64, 0, width*height),
		width:     width,
		height:    height,
	}
}

func (sc *statsCollector) add(pixel PixelStats) {
	sc.luminance = append(sc.luminance, pixel.GetColor().Luminance())
	sc.variance = append(sc.variance, pixel.Variance())
	sc.totalSamples += pixel.SampleCount
}

func (sc *statsCollector) finish(elapsed time.Duration) RenderStats {
	stats := RenderStats{
		Width:        sc.width,
		Height:       sc.height,
		TotalPixels:  len(sc.luminance),
		TotalSamples: sc.totalSamples,
		Elapsed:      elapsed,
	}
	switch {
	case len(sc.luminance) == 1:
		stats.MeanLuminance = sc.luminance[0]
	case len(sc.luminance) > 1:
		stats.MeanLuminance, stats.StdDevLuminance = stat.MeanStdDev(sc.luminance, nil)
	}
	if len(sc.variance) > 0 {
		stats.MeanVariance = stat.Mean(sc.variance, nil)
	}
	return stats
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an 8-bit image in [0, 1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	values := make([]float64, 0, bounds.Dx()*bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels
			values = append(values,
				(0.2126*float64(r)+0.7152*float64(g)+0.0722*float64(b))/65535.0)
		}
	}

	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
