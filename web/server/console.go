package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger for a single render request.
// Lines go to the server log tagged with the render ID and, when a console
// channel is attached, to that channel as well.
type WebLogger struct {
	renderID    string
	out         *log.Logger
	consoleChan chan<- ConsoleMessage
}

// newRenderID returns a fresh identifier for a render request
func newRenderID() string {
	return uuid.NewString()
}

// NewWebLogger creates a new web logger for a specific render.
// A nil out discards server-side output; a nil channel disables forwarding.
func NewWebLogger(renderID string, out *log.Logger, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		out:         out,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.out != nil {
		wl.out.Printf("[%s] %s", shortID(wl.renderID), strings.TrimRight(message, "\n"))
	}

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			RenderID:  wl.renderID,
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// shortID trims a UUID to its first group for compact log lines
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// handleConsole streams render progress lines as server-sent events until the client disconnects.
// Lines logged while no client is connected wait in the console buffer; concurrent clients share one stream.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.console:
			data, err := json.Marshal(msg)
			if err != nil {
				s.logf("Failed to encode console message: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: console\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
