package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

var errInvalidSceneName = errors.New("invalid scene name")

// consoleBufferSize is how many progress lines wait for a console client before new ones are dropped
const consoleBufferSize = 100

// Server handles web requests for the path tracer
type Server struct {
	port      int
	scenesDir string
	logger    *log.Logger
	console   chan ConsoleMessage
}

// NewServer creates a new web server serving builtin scenes and the scene files in scenesDir
func NewServer(port int, scenesDir string) *Server {
	return &Server{
		port:      port,
		scenesDir: scenesDir,
		logger:    log.New(os.Stderr, "", log.LstdFlags),
		console:   make(chan ConsoleMessage, consoleBufferSize),
	}
}

// SetLogger replaces the server log; nil silences it
func (s *Server) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Router returns the HTTP routes served by Start
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/scenes", s.handleScenes).Methods(http.MethodGet)
	api.HandleFunc("/render/{scene}", s.handleRender).Methods(http.MethodGet)
	api.HandleFunc("/inspect/{scene}", s.handleInspect).Methods(http.MethodGet)
	api.HandleFunc("/console", s.handleConsole).Methods(http.MethodGet)

	r.Use(corsMiddleware)
	return r
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logf("Starting web server on http://localhost%s", addr)
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists builtin scenes and the scene files found in the scenes directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, scenes)
}

// createScene resolves a scene requested over HTTP. Only builtin IDs and
// "file:<name>" IDs inside the scenes directory are accepted, never raw paths.
func (s *Server) createScene(name string, sampler core.Sampler, overrides renderer.CameraConfig) (*scene.Scene, error) {
	if err := validateSceneName(name); err != nil {
		return nil, err
	}
	return scene.Create(name, scene.Options{
		ScenesDir: s.scenesDir,
		Sampler:   sampler,
		Camera:    overrides,
	})
}

func validateSceneName(name string) error {
	stem := strings.TrimPrefix(name, "file:")
	if stem == "" || strings.ContainsAny(stem, `/\`) || strings.Contains(stem, "..") {
		return fmt.Errorf("%w: %q", errInvalidSceneName, name)
	}
	if stem == name {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			return fmt.Errorf("%w: %q", errInvalidSceneName, name)
		}
	}
	return nil
}

// sceneErrorStatus maps scene creation errors to HTTP status codes
func sceneErrorStatus(err error) int {
	switch {
	case errors.Is(err, scene.ErrUnknownScene):
		return http.StatusNotFound
	case errors.Is(err, errInvalidSceneName),
		errors.Is(err, loaders.ErrInvalidSceneFile),
		errors.Is(err, loaders.ErrUnknownMaterial),
		errors.Is(err, renderer.ErrInvalidCamera):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseSeedParam parses the random seed; 0 seeds from the clock
func parseSeedParam(values url.Values) (int64, error) {
	if value := values.Get("seed"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seed: %s", value)
		}
		return parsed, nil
	}
	return 0, nil
}

// writeJSON writes v as the response body; a value that cannot be encoded produces a 500
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logf("Failed to encode JSON response: %v", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logf("Failed to write JSON response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
