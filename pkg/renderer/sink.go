package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/df07/go-pathtracer/pkg/core"
)

// PixelSink receives an image one pixel at a time in scanline order,
// top row first and left pixel first
type PixelSink interface {
	WriteHeader(width, height int) error
	// WritePixel receives the accumulated color of samplesPerPixel samples
	WritePixel(pixelColor core.Color, samplesPerPixel int) error
	Flush() error
}

// PPMWriter streams a plain-text P3 image, flushing after the header and every scanline
type PPMWriter struct {
	out     *bufio.Writer
	width   int
	written int
}

// NewPPMWriter creates a PPM sink writing to w
func NewPPMWriter(w io.Writer) *PPMWriter {
	return &PPMWriter{out: bufio.NewWriter(w)}
}

// WriteHeader writes the format tag, the dimensions and the maximum channel value
func (p *PPMWriter) WriteHeader(width, height int) error {
	p.width = width
	p.written = 0
	if _, err := fmt.Fprintf(p.out, "P3\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	return p.out.Flush()
}

// WritePixel writes one tone-mapped "r g b " record
func (p *PPMWriter) WritePixel(pixelColor core.Color, samplesPerPixel int) error {
	if err := core.WriteColor(p.out, pixelColor, samplesPerPixel); err != nil {
		return err
	}
	p.written++
	if p.width > 0 && p.written%p.width == 0 {
		return p.out.Flush()
	}
	return nil
}

// Flush writes any buffered records
func (p *PPMWriter) Flush() error {
	return p.out.Flush()
}

// ImageWriter collects tone-mapped pixels into an in-memory RGBA image
type ImageWriter struct {
	img   *image.RGBA
	width int
	next  int
}

// NewImageWriter creates an empty image sink
func NewImageWriter() *ImageWriter {
	return &ImageWriter{}
}

// WriteHeader allocates the image
func (iw *ImageWriter) WriteHeader(width, height int) error {
	iw.img = image.NewRGBA(image.Rect(0, 0, width, height))
	iw.width = width
	iw.next = 0
	return nil
}

// WritePixel stores the next pixel with the same quantization as the PPM stream
func (iw *ImageWriter) WritePixel(pixelColor core.Color, samplesPerPixel int) error {
	if iw.img == nil {
		return fmt.Errorf("image writer: pixel written before header")
	}
	if iw.next >= iw.width*iw.img.Rect.Dy() {
		return fmt.Errorf("image writer: pixel %d outside %v", iw.next, iw.img.Rect)
	}

	r, g, b := core.ColorToRGB(pixelColor, samplesPerPixel)
	iw.img.SetRGBA(iw.next%iw.width, iw.next/iw.width, color.RGBA{
		R: uint8(r),
		G: uint8(g),
		B: uint8(b),
		A: 255,
	})
	iw.next++
	return nil
}

// Flush is a no-op; the image is complete once every pixel is written
func (iw *ImageWriter) Flush() error {
	return nil
}

// Image returns the collected image, nil before WriteHeader
func (iw *ImageWriter) Image() *image.RGBA {
	return iw.img
}

// EncodePNG writes the collected image to w as PNG
func (iw *ImageWriter) EncodePNG(w io.Writer) error {
	if iw.img == nil {
		return fmt.Errorf("encode png: no image rendered")
	}
	if err := png.Encode(w, iw.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
