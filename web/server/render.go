package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

const (
	sendQueueSize = 100
	pingInterval  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, implement proper origin checking
	},
}

// WSEvent is the envelope for all websocket messages.
// Data holds a JSON-encoded payload for structured event types.
type WSEvent struct {
	Type string `json:"type"` // "console", "row", "complete", "error"
	Data string `json:"data"`
}

// RowUpdate is sent when a scanline finishes rendering
type RowUpdate struct {
	RowY      int    `json:"rowY"`      // Image-space y of the row (0 = top)
	ImageData string `json:"imageData"` // Base64 encoded PNG of just this row
	RowNumber int    `json:"rowNumber"` // Completion order (1-based)
	TotalRows int    `json:"totalRows"` // Total number of rows in the image
}

// CompleteUpdate carries the final image and render statistics
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG of the full image
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ElapsedMs int64  `json:"elapsedMs"`
	Stats     Stats  `json:"stats"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
}

// handleRenderWS streams a render over a websocket: console lines and row
// strips as they complete, then the final image with stats
func (s *Server) handleRenderWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Cancelled when the client goes away or the handler returns
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// All writes go through one queue so a single goroutine owns the connection
	sendQueue := make(chan WSEvent, sendQueueSize)
	writerDone := make(chan struct{})
	go s.writeEvents(conn, sendQueue, writerDone)
	defer func() {
		close(sendQueue)
		<-writerDone
	}()

	// The client never sends render data; reads only detect disconnection
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// Parse and validate request
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendError(ctx, sendQueue, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj := s.createScene(req)
	if sceneObj == nil {
		s.sendError(ctx, sendQueue, "Unknown scene: "+req.Scene)
		return
	}

	// Render log output is streamed to the client console
	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(consoleChan)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sendQueue)
	}()
	// The console forwarder must stop before the send queue closes
	defer func() {
		cancel()
		<-consoleDone
	}()

	raytracer := renderer.NewScanlineRaytracer(sceneObj, renderer.ScanlineConfig{NumWorkers: req.Workers}, webLogger)
	raytracer.MergeSamplingConfig(core.SamplingConfig{
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.Depth,
	})

	startTime := time.Now()
	rowChan, resultChan, errChan := raytracer.RenderStream(ctx, renderer.RenderOptions{RowUpdates: true})
	s.streamRenderEvents(ctx, sendQueue, rowChan, resultChan, errChan, startTime)
}

// writeEvents owns the websocket connection: it drains the send queue and
// keeps the connection alive with pings. It exits when the queue is closed
// or a write fails.
func (s *Server) writeEvents(conn *websocket.Conn, sendQueue <-chan WSEvent, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sendQueue:
			if !ok {
				// Handler finished, send a close frame
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// streamConsoleMessages forwards console messages to the send queue
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sendQueue chan<- WSEvent) {
	for {
		select {
		case consoleMsg, ok := <-consoleChan:
			if !ok {
				return
			}

			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			select {
			case sendQueue <- WSEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Queue full, drop the message rather than stall the render
			}

		case <-ctx.Done():
			return
		}
	}
}

// streamRenderEvents forwards render progress from the raytracer channels
// to the websocket send queue
func (s *Server) streamRenderEvents(ctx context.Context, sendQueue chan<- WSEvent,
	rowChan <-chan renderer.RowCompletionResult, resultChan <-chan renderer.RenderResult,
	errChan <-chan error, startTime time.Time) {

	for rowChan != nil || resultChan != nil || errChan != nil {
		select {
		case row, ok := <-rowChan:
			if !ok {
				rowChan = nil
				continue
			}
			s.sendRowUpdate(ctx, sendQueue, row)

		case result, ok := <-resultChan:
			if !ok {
				resultChan = nil
				continue
			}
			s.sendComplete(ctx, sendQueue, result, startTime)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err != nil {
				s.sendError(ctx, sendQueue, fmt.Sprintf("Rendering failed: %v", err))
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// sendRowUpdate encodes and sends a completed row strip
func (s *Server) sendRowUpdate(ctx context.Context, sendQueue chan<- WSEvent, row renderer.RowCompletionResult) {
	imageData, err := s.imageToBase64PNG(row.RowImage)
	if err != nil {
		log.Printf("Error encoding row %d: %v", row.ImageY, err)
		return
	}

	update := RowUpdate{
		RowY:      row.ImageY,
		ImageData: imageData,
		RowNumber: row.RowNumber,
		TotalRows: row.TotalRows,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling row update: %v", err)
		return
	}

	select {
	case sendQueue <- WSEvent{Type: "row", Data: string(data)}:
	case <-ctx.Done():
	}
}

// sendComplete encodes and sends the final image with stats
func (s *Server) sendComplete(ctx context.Context, sendQueue chan<- WSEvent, result renderer.RenderResult, startTime time.Time) {
	imageData, err := s.imageToBase64PNG(result.Image)
	if err != nil {
		s.sendError(ctx, sendQueue, fmt.Sprintf("Failed to encode final image: %v", err))
		return
	}

	bounds := result.Image.Bounds()
	update := CompleteUpdate{
		ImageData: imageData,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		ElapsedMs: time.Since(startTime).Milliseconds(),
		Stats: Stats{
			TotalPixels:    result.Stats.TotalPixels,
			TotalSamples:   result.Stats.TotalSamples,
			AverageSamples: result.Stats.AverageSamples,
		},
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling completion update: %v", err)
		return
	}

	select {
	case sendQueue <- WSEvent{Type: "complete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// sendError sends an error event to the client
func (s *Server) sendError(ctx context.Context, sendQueue chan<- WSEvent, message string) {
	select {
	case sendQueue <- WSEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
