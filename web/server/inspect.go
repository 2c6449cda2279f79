package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// InspectResponse reports the rendered color of a single pixel
type InspectResponse struct {
	X       int        `json:"x"`
	Y       int        `json:"y"`
	Samples int        `json:"samples"`
	Color   [3]float64 `json:"color"` // Linear color before gamma correction
	RGB     [3]int     `json:"rgb"`   // 8-bit channels after gamma correction
	Hex     string     `json:"hex"`
}

// handleInspect renders a single pixel and returns its color as JSON,
// useful for checking a scene without waiting for a full render
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Create request object for parameter parsing
	inspectReq := &RenderRequest{}

	// Parse common scene parameters using shared function
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	samples, err := parseIntParam(r.URL.Query(), "samples", 16, 1, 10000)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid x coordinate"})
		return
	}

	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid y coordinate"})
		return
	}

	sceneObj := s.createScene(inspectReq)
	if sceneObj == nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unknown scene: " + inspectReq.Scene})
		return
	}

	// Validate pixel coordinates against the actual image dimensions
	camera := sceneObj.GetCamera()
	width, height := camera.Width(), camera.Height()
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	raytracer := renderer.NewRaytracer(sceneObj)

	// Inspection coordinates are image-space, camera rows count from the bottom
	random := rand.New(rand.NewSource(0))
	pixelColor := raytracer.RenderPixel(pixelX, height-1-pixelY, samples, random)

	corrected := pixelColor.GammaCorrect(2.0).Clamp(0.0, 0.999)
	rgb := [3]int{
		int(256 * corrected.X),
		int(256 * corrected.Y),
		int(256 * corrected.Z),
	}

	response := InspectResponse{
		X:       pixelX,
		Y:       pixelY,
		Samples: samples,
		Color:   [3]float64{pixelColor.X, pixelColor.Y, pixelColor.Z},
		RGB:     rgb,
		Hex:     fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
