package core

import (
	"fmt"
	"io"
	"math"
)

// intensity is the output range for a tone-mapped channel. The upper bound
// stays below 1 so that 256*x truncates to at most 255.
var intensity = NewInterval(0.000, 0.999)

// LinearToGamma applies gamma-2 correction to a linear channel value
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// ColorToRGB averages an accumulated color over samplesPerPixel, gamma
// corrects and clamps each channel, and quantizes it to [0, 255]
func ColorToRGB(pixelColor Color, samplesPerPixel int) (r, g, b int) {
	scale := 1.0 / float64(samplesPerPixel)

	return quantize(pixelColor.X * scale),
		quantize(pixelColor.Y * scale),
		quantize(pixelColor.Z * scale)
}

func quantize(linear float64) int {
	return int(256 * intensity.Clamp(LinearToGamma(linear)))
}

// WriteColor writes one "r g b " text record for an accumulated pixel color
func WriteColor(w io.Writer, pixelColor Color, samplesPerPixel int) error {
	r, g, b := ColorToRGB(pixelColor, samplesPerPixel)
	if _, err := fmt.Fprintf(w, "%d %d %d \n", r, g, b); err != nil {
		return fmt.Errorf("write color: %w", err)
	}
	return nil
}
