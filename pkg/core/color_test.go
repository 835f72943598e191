package core

import (
	"bytes"
	"errors"
	"testing"
)

func TestColorToRGB(t *testing.T) {
	tests := []struct {
		name            string
		color           Color
		samplesPerPixel int
		expected        [3]int
	}{
		{"black", NewColor(0, 0, 0), 1, [3]int{0, 0, 0}},
		// sqrt(1) = 1 clamps to 0.999, 256*0.999 truncates to 255
		{"white", NewColor(1, 1, 1), 1, [3]int{255, 255, 255}},
		{"white averaged over samples", NewColor(50, 50, 50), 50, [3]int{255, 255, 255}},
		{"overexposed", NewColor(4, 9, 100), 1, [3]int{255, 255, 255}},
		{"negative clamps to zero", NewColor(-1, -0.5, 0), 1, [3]int{0, 0, 0}},
		// gamma before quantization: sqrt(0.25) = 0.5 -> 128, not 64
		{"quarter intensity", NewColor(0.25, 0.25, 0.25), 1, [3]int{128, 128, 128}},
		{"averaging", NewColor(1, 0, 0.25), 4, [3]int{128, 0, 64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ColorToRGB(tt.color, tt.samplesPerPixel)
			got := [3]int{r, g, b}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLinearToGamma(t *testing.T) {
	if LinearToGamma(-0.5) != 0 {
		t.Error("Negative input should map to 0")
	}
	if LinearToGamma(0.25) != 0.5 {
		t.Errorf("Expected 0.5, got %f", LinearToGamma(0.25))
	}
}

func TestWriteColor(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteColor(&buf, NewColor(0, 0, 0), 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := WriteColor(&buf, NewColor(1, 1, 1), 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := "0 0 0 \n255 255 255 \n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

type failingWriter struct{}

var errClosed = errors.New("closed")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errClosed
}

func TestWriteColor_PropagatesWriteError(t *testing.T) {
	err := WriteColor(failingWriter{}, NewColor(1, 1, 1), 1)
	if !errors.Is(err, errClosed) {
		t.Errorf("Expected wrapped write error, got %v", err)
	}
}
