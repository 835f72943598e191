package renderer

import (
	"io"
	"log"

	"github.com/df07/go-pathtracer/pkg/core"
)

// DefaultLogger implements core.Logger on top of the standard logger
type DefaultLogger struct {
	out *log.Logger
}

// Printf writes one progress line
func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.out.Printf(format, args...)
}

// NewDefaultLogger creates a logger writing timestamped lines to w.
// The image stream owns stdout, so callers normally pass os.Stderr.
func NewDefaultLogger(w io.Writer) core.Logger {
	return &DefaultLogger{out: log.New(w, "", log.LstdFlags)}
}
