// Package server provides the HTTP and websocket surface of handcloud.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/handcloud/internal/detector"
	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/gesture"
	"github.com/ayusman/handcloud/internal/logging"
	"github.com/ayusman/handcloud/internal/render"
	"github.com/ayusman/handcloud/internal/server/api"
	"github.com/ayusman/handcloud/internal/store"
)

// HandSink receives hand frames from remote landmark sources.
type HandSink interface {
	HandleFrame(frame detector.HandFrame) gesture.Signals
}

// FrameSource supplies JPEG camera frames for preview.
type FrameSource interface {
	CameraJPEG(quality int) ([]byte, error)
}

// Config holds the server configuration. Every field is optional; routes
// whose dependencies are missing are not registered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller *engine.Controller
	Renderer   *render.Renderer
	Hands      HandSink
	Camera     FrameSource
	Logger     logging.Logger
}

// Server represents the HTTP server for the handcloud application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	hub    *Hub
	http   *http.Server
	log    logging.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    logging.OrNop(config.Logger),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if c := s.config.Controller; c != nil {
		stateHandler := api.NewStateHandler(c)
		s.mux.Handle("/api/state", stateHandler)
		s.mux.Handle("/api/state/", stateHandler)

		s.hub = NewHub(c, s.log)
		s.mux.Handle("/api/ws", s.hub)

		if r := s.config.Renderer; r != nil {
			s.mux.Handle("/api/snapshot.png", NewSnapshotHandler(c, r))
			s.mux.Handle("/api/stream", NewMJPEGHandler(RenderedFrames(c, r), StreamInterval))
		}
	}

	if s.config.Store != nil {
		history := api.NewHistoryHandler(s.config.Store)
		s.mux.Handle("/api/events", history)
		s.mux.Handle("/api/sessions", history)
		s.mux.Handle("/api/sessions/", history)
	}

	if s.config.Hands != nil {
		s.mux.Handle("/api/hands", NewHandsHandler(s.config.Hands, s.log))
	}

	if cam := s.config.Camera; cam != nil {
		s.mux.Handle("/api/camera", NewMJPEGHandler(func() ([]byte, error) {
			return cam.CameraJPEG(0)
		}, CameraInterval))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Hub returns the snapshot broadcaster, or nil without a controller.
func (s *Server) Hub() *Hub {
	return s.hub
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.hub != nil {
		response["clients"] = s.hub.ClientCount()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address. It returns
// nil after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the hub and gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
