package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// RenderRequest represents a render request from the client.
// Zero numeric values keep the scene's own camera settings.
type RenderRequest struct {
	Scene    string `json:"scene"`    // Scene ID (e.g., "four-spheres" or "file:three-spheres")
	Width    int    `json:"width"`    // Image width
	Samples  int    `json:"samples"`  // Samples per pixel
	MaxDepth int    `json:"maxDepth"` // Maximum bounce depth
	Seed     int64  `json:"seed"`     // Random seed, 0 seeds from the clock
	Format   string `json:"format"`   // "ppm" or "png"
}

// cameraOverrides returns the request settings as camera overrides
func (req *RenderRequest) cameraOverrides() renderer.CameraConfig {
	return renderer.CameraConfig{
		Width:           req.Width,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.MaxDepth,
	}
}

// parseRenderRequest parses and validates render parameters from the URL
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: mux.Vars(r)["scene"]}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 1, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.Seed, err = parseSeedParam(query); err != nil {
		return nil, err
	}

	req.Format = query.Get("format")
	switch req.Format {
	case "":
		req.Format = "ppm"
	case "ppm", "png":
	default:
		return nil, fmt.Errorf("format must be ppm or png, got: %s", req.Format)
	}

	return req, nil
}

// handleRender renders a scene and returns the image.
// PPM output is streamed scanline by scanline; PNG is encoded once the render completes.
// A failed write, including a client that has gone away, aborts the render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sampler := core.NewSeededSampler(req.Seed)
	sceneObj, err := s.createScene(req.Scene, sampler, req.cameraOverrides())
	if err != nil {
		s.writeJSONError(w, sceneErrorStatus(err), err.Error())
		return
	}
	if err := sceneObj.CameraConfig.Validate(); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := sceneObj.CameraConfig
	if cfg.Width > 800 && cfg.SamplesPerPixel > 100 {
		s.logf("Render warning: Large image with high samples may render slowly")
	}

	renderID := newRenderID()
	logger := NewWebLogger(renderID, s.logger, s.console)
	camera := sceneObj.NewCamera(sampler)
	camera.SetLogger(logger)

	logger.Printf("Rendering %s as %s: width %d, %d samples, depth %d\n",
		sceneObj.Name, req.Format, cfg.Width, cfg.SamplesPerPixel, cfg.MaxDepth)
	w.Header().Set("X-Render-Id", renderID)

	if req.Format == "png" {
		img := renderer.NewImageWriter()
		stats, err := camera.RenderTo(sceneObj, img)
		if err != nil {
			logger.Printf("Render failed: %v\n", err)
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Mean-Luminance", fmt.Sprintf("%.4f", stats.MeanLuminance))
		w.Header().Set("X-Mean-Variance", fmt.Sprintf("%.4f", stats.MeanVariance))
		if err := img.EncodePNG(&streamWriter{ctx: r.Context(), w: w}); err != nil {
			logger.Printf("Render aborted: %v\n", err)
		}
		return
	}

	w.Header().Set("Content-Type", "image/x-portable-pixmap")
	if err := camera.Render(sceneObj, &streamWriter{ctx: r.Context(), w: w}); err != nil {
		logger.Printf("Render aborted: %v\n", err)
	}
}

// streamWriter forwards writes to the client and flushes them immediately.
// Writes fail once the request context is done.
type streamWriter struct {
	ctx context.Context
	w   http.ResponseWriter
}

func (sw *streamWriter) Write(p []byte) (int, error) {
	if err := sw.ctx.Err(); err != nil {
		return 0, fmt.Errorf("client disconnected: %w", err)
	}
	n, err := sw.w.Write(p)
	if err != nil {
		return n, err
	}
	if flusher, ok := sw.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return n, nil
}
