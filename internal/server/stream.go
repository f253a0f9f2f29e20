package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/render"
)

// Stream rates.
const (
	StreamInterval = 66 * time.Millisecond // ~15 FPS
	CameraInterval = 66 * time.Millisecond
	streamQuality  = 80
	retryDelay     = 100 * time.Millisecond
)

// FrameFunc produces one JPEG frame.
type FrameFunc func() ([]byte, error)

// RenderedFrames renders the controller's current snapshot.
func RenderedFrames(c *engine.Controller, r *render.Renderer) FrameFunc {
	return func() ([]byte, error) {
		return r.JPEG(c.Snapshot(), streamQuality)
	}
}

// MJPEGHandler serves a multipart JPEG stream.
type MJPEGHandler struct {
	next     FrameFunc
	interval time.Duration
}

// NewMJPEGHandler creates an MJPEGHandler that pulls a frame every interval.
func NewMJPEGHandler(next FrameFunc, interval time.Duration) *MJPEGHandler {
	return &MJPEGHandler{next: next, interval: interval}
}

// ServeHTTP streams MJPEG frames until the client disconnects.
func (h *MJPEGHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		wait := h.interval
		if data, err := h.next(); err != nil {
			wait = retryDelay
		} else if err := writeMJPEGFrame(w, data); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-time.After(wait):
		}
	}
}

func writeMJPEGFrame(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// SnapshotHandler renders the current cloud as a PNG.
type SnapshotHandler struct {
	controller *engine.Controller
	renderer   *render.Renderer
}

// NewSnapshotHandler creates a SnapshotHandler.
func NewSnapshotHandler(c *engine.Controller, r *render.Renderer) *SnapshotHandler {
	return &SnapshotHandler{controller: c, renderer: r}
}

func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.EncodePNG(&buf, h.controller.Snapshot()); err != nil {
		http.Error(w, "Failed to render snapshot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}
