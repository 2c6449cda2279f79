package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Server handles web requests for the raytracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client.
// Zero values for Samples and Depth mean "use the scene defaults".
type RenderRequest struct {
	Scene    string  `json:"scene"`    // Scene name (e.g., "default")
	Width    int     `json:"width"`    // Image width in pixels
	Samples  int     `json:"samples"`  // Samples per pixel (0 = scene default)
	Depth    int     `json:"depth"`    // Maximum ray bounce depth (0 = scene default)
	Workers  int     `json:"workers"`  // Parallel workers (0 = CPU count)
	Aperture float64 `json:"aperture"` // Camera aperture override (0 = scene default)
}

// routes builds the HTTP handler for all endpoints
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Serve the viewer page and assets
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	// WebSocket render stream
	mux.HandleFunc("/ws/render", s.handleRenderWS)

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.routes())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// parseCommonSceneParams parses parameters shared by render and inspect requests
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	if sceneName := r.URL.Query().Get("scene"); sceneName != "" {
		req.Scene = sceneName
	} else {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(r.URL.Query(), "width", 400, 50, 2000); err != nil {
		return err
	}
	if req.Aperture, err = parseFloatParam(r.URL.Query(), "aperture", 0, 0.001, 10.0); err != nil {
		return err
	}
	return nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	// Parse common scene parameters using shared function
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	// Parse and validate render-specific parameters using helper functions
	var err error
	if req.Samples, err = parseIntParam(r.URL.Query(), "samples", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(r.URL.Query(), "depth", 0, 1, 200); err != nil {
		return nil, err
	}
	if req.Workers, err = parseIntParam(r.URL.Query(), "workers", 0, 1, 256); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width > 1000 && req.Samples > 500 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
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

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene creates a scene based on the requested name and overrides
func (s *Server) createScene(req *RenderRequest) *scene.Scene {
	overrides := renderer.CameraConfig{
		Width:    req.Width,
		Aperture: req.Aperture,
	}

	switch req.Scene {
	case "default":
		return scene.NewDefaultScene(overrides)
	case "grid":
		return scene.NewSphereGridScene(overrides)
	case "single":
		return scene.NewSingleSphereScene(overrides)
	default:
		return nil
	}
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj := s.createScene(&RenderRequest{Scene: sceneName})
	if sceneObj == nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unknown scene: " + sceneName})
		return
	}

	// Return the scene's defaults along with validation limits
	config := sceneObj.GetSamplingConfig()
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"width":           sceneObj.CameraConfig.Width,
			"aspectRatio":     sceneObj.CameraConfig.AspectRatio,
			"vfov":            sceneObj.CameraConfig.VFov,
			"aperture":        sceneObj.CameraConfig.Aperture,
		},
		"limits": map[string]interface{}{
			"width": map[string]int{
				"min": 50,
				"max": 2000,
			},
			"samples": map[string]int{
				"min": 1,
				"max": 10000,
			},
			"depth": map[string]int{
				"min": 1,
				"max": 200,
			},
			"workers": map[string]int{
				"min": 1,
				"max": 256,
			},
			"aperture": map[string]float64{
				"min": 0.001,
				"max": 10.0,
			},
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
