package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(0).routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", body["status"])
	}
}

func TestHandleSceneConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scene-config?scene=default")
	if err != nil {
		t.Fatalf("Scene config request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Scene    string `json:"scene"`
		Defaults struct {
			SamplesPerPixel int     `json:"samplesPerPixel"`
			MaxDepth        int     `json:"maxDepth"`
			Width           int     `json:"width"`
			VFov            float64 `json:"vfov"`
		} `json:"defaults"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body.Scene != "default" {
		t.Errorf("Expected scene 'default', got '%s'", body.Scene)
	}
	if body.Defaults.SamplesPerPixel != 100 {
		t.Errorf("Expected 100 samples per pixel, got %d", body.Defaults.SamplesPerPixel)
	}
	if body.Defaults.MaxDepth != 50 {
		t.Errorf("Expected max depth 50, got %d", body.Defaults.MaxDepth)
	}
	if body.Defaults.Width != 400 {
		t.Errorf("Expected width 400, got %d", body.Defaults.Width)
	}
	if body.Defaults.VFov != 20.0 {
		t.Errorf("Expected vfov 20, got %v", body.Defaults.VFov)
	}
}

func TestHandleSceneConfigUnknownScene(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scene-config?scene=bogus")
	if err != nil {
		t.Fatalf("Scene config request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestHandleInspect(t *testing.T) {
	srv := newTestServer(t)

	// Top of the single-sphere scene image is open sky
	resp, err := http.Get(srv.URL + "/api/inspect?scene=single&width=80&x=40&y=0&samples=4")
	if err != nil {
		t.Fatalf("Inspect request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body InspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body.X != 40 || body.Y != 0 {
		t.Errorf("Expected pixel (40,0), got (%d,%d)", body.X, body.Y)
	}
	if body.Samples != 4 {
		t.Errorf("Expected 4 samples, got %d", body.Samples)
	}
	if len(body.Hex) != 7 || body.Hex[0] != '#' {
		t.Errorf("Expected #RRGGBB hex color, got '%s'", body.Hex)
	}
	for i, channel := range body.RGB {
		if channel < 0 || channel > 255 {
			t.Errorf("RGB channel %d out of range: %d", i, channel)
		}
	}
	// Sky pixels are bright
	if body.Color[0] <= 0 || body.Color[1] <= 0 || body.Color[2] <= 0 {
		t.Errorf("Expected a bright sky color, got %v", body.Color)
	}
}

func TestHandleInspectInvalidParams(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing x", "scene=single&width=80&y=0"},
		{"non-numeric y", "scene=single&width=80&x=10&y=abc"},
		{"x out of bounds", "scene=single&width=80&x=80&y=0"},
		{"negative y", "scene=single&width=80&x=10&y=-1"},
		{"unknown scene", "scene=bogus&width=80&x=10&y=10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/inspect?" + tt.query)
			if err != nil {
				t.Fatalf("Inspect request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		expected  int
		expectErr bool
	}{
		{"missing uses default", "", 42, false},
		{"valid value", "key=7", 7, false},
		{"at minimum", "key=1", 1, false},
		{"at maximum", "key=100", 100, false},
		{"below minimum", "key=0", 0, true},
		{"above maximum", "key=101", 0, true},
		{"non-numeric", "key=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := parseIntParam(values, "key", 42, 1, 100)

			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error, got value %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestParseFloatParam(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		expected  float64
		expectErr bool
	}{
		{"missing uses default", "", 0.5, false},
		{"valid value", "key=0.25", 0.25, false},
		{"out of range", "key=2.0", 0, true},
		{"non-numeric", "key=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := parseFloatParam(values, "key", 0.5, 0.1, 1.0)

			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error, got value %f", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestCreateScene(t *testing.T) {
	s := NewServer(0)

	tests := []struct {
		name      string
		sceneName string
		expectNil bool
	}{
		{"default scene", "default", false},
		{"grid scene", "grid", false},
		{"single sphere scene", "single", false},
		{"unknown scene", "bogus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sceneObj := s.createScene(&RenderRequest{Scene: tt.sceneName, Width: 200})
			if tt.expectNil {
				if sceneObj != nil {
					t.Error("Expected nil for unknown scene")
				}
				return
			}
			if sceneObj == nil {
				t.Fatal("Expected scene, got nil")
			}
			if sceneObj.GetCamera().Width() != 200 {
				t.Errorf("Expected width override 200, got %d", sceneObj.GetCamera().Width())
			}
		})
	}
}

// wsURL converts an httptest server URL to a websocket URL
func wsURL(srv *httptest.Server, path string) string {
	return strings.Replace(srv.URL, "http", "ws", 1) + path
}

func TestRenderWebSocket(t *testing.T) {
	srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(
		wsURL(srv, "/ws/render?scene=single&width=80&samples=2&depth=4&workers=2"), nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var rowCount, consoleCount int
	var complete *CompleteUpdate

	for {
		var event WSEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			t.Fatalf("Read error before close: %v", err)
		}

		switch event.Type {
		case "console":
			var msg ConsoleMessage
			if err := json.Unmarshal([]byte(event.Data), &msg); err != nil {
				t.Fatalf("Bad console payload: %v", err)
			}
			consoleCount++

		case "row":
			var update RowUpdate
			if err := json.Unmarshal([]byte(event.Data), &update); err != nil {
				t.Fatalf("Bad row payload: %v", err)
			}
			if update.TotalRows != 45 {
				t.Errorf("Expected 45 total rows, got %d", update.TotalRows)
			}
			if update.RowY < 0 || update.RowY >= 45 {
				t.Errorf("Row y out of range: %d", update.RowY)
			}
			rowCount++

		case "complete":
			var update CompleteUpdate
			if err := json.Unmarshal([]byte(event.Data), &update); err != nil {
				t.Fatalf("Bad completion payload: %v", err)
			}
			complete = &update

		case "error":
			t.Fatalf("Unexpected error event: %s", event.Data)

		default:
			t.Fatalf("Unknown event type: %s", event.Type)
		}
	}

	if complete == nil {
		t.Fatal("Expected a complete event")
	}
	// Width 80 at 16:9 gives 45 rows
	if complete.Width != 80 || complete.Height != 45 {
		t.Errorf("Expected 80x45 image, got %dx%d", complete.Width, complete.Height)
	}
	if complete.Stats.TotalPixels != 80*45 {
		t.Errorf("Expected %d total pixels, got %d", 80*45, complete.Stats.TotalPixels)
	}
	if complete.Stats.TotalSamples != 80*45*2 {
		t.Errorf("Expected %d total samples, got %d", 80*45*2, complete.Stats.TotalSamples)
	}

	if rowCount != 45 {
		t.Errorf("Expected 45 row updates, got %d", rowCount)
	}
	if consoleCount == 0 {
		t.Error("Expected console output during render")
	}

	// Final image decodes to the advertised dimensions
	imgBytes, err := base64.StdEncoding.DecodeString(complete.ImageData)
	if err != nil {
		t.Fatalf("Failed to decode final image: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		t.Fatalf("Failed to decode final PNG: %v", err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 45 {
		t.Errorf("Expected 80x45 PNG, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRenderWebSocketUnknownScene(t *testing.T) {
	srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/render?scene=bogus"), nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	sawError := false
	for {
		var event WSEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			t.Fatalf("Read error before close: %v", err)
		}
		if event.Type == "error" {
			if !strings.Contains(event.Data, "bogus") {
				t.Errorf("Expected error naming the scene, got '%s'", event.Data)
			}
			sawError = true
		}
	}

	if !sawError {
		t.Error("Expected an error event for unknown scene")
	}
}

func TestRenderWebSocketInvalidParam(t *testing.T) {
	srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/render?width=5"), nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	sawError := false
	for {
		var event WSEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			t.Fatalf("Read error before close: %v", err)
		}
		if event.Type == "error" {
			sawError = true
		}
	}

	if !sawError {
		t.Error("Expected an error event for out-of-range width")
	}
}
