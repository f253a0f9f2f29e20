package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gogpu/gg"

	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/shape"
)

// StateHandler serves and changes the particle cloud state.
//
//	GET  /api/state
//	PUT  /api/state/shape     {"shape":"galaxy"} or {"shape":"next"}
//	POST /api/state/firework
//	POST /api/state/color     {"color":"#33ff66"}, or no body for a random hue
type StateHandler struct {
	controller *engine.Controller
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(c *engine.Controller) *StateHandler {
	return &StateHandler{controller: c}
}

type stateResponse struct {
	engine.State
	Particles int `json:"particles"`
}

func (r stateResponse) MarshalJSON() ([]byte, error) {
	// State has its own MarshalJSON, which would hide Particles.
	base, err := json.Marshal(r.State)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	fields["particles"] = r.Particles
	return json.Marshal(fields)
}

type shapeRequest struct {
	Shape string `json:"shape"`
}

type colorRequest struct {
	Color string `json:"color"`
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/state")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.writeState(w, http.StatusOK)
	case "shape":
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.setShape(w, r)
	case "firework":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.controller.Firework()
		h.writeState(w, http.StatusOK)
	case "color":
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.setColor(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *StateHandler) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, stateResponse{
		State:     h.controller.State(),
		Particles: h.controller.ParticleCount(),
	})
}

func (h *StateHandler) setShape(w http.ResponseWriter, r *http.Request) {
	var req shapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.EqualFold(strings.TrimSpace(req.Shape), "next") {
		h.controller.NextShape()
		h.writeState(w, http.StatusOK)
		return
	}

	kind, err := shape.ParseKind(req.Shape)
	if err != nil {
		if errors.Is(err, shape.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, "Unknown shape")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.controller.SetShape(kind)
	h.writeState(w, http.StatusOK)
}

func (h *StateHandler) setColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Color == "" {
		h.controller.RandomizeColor()
		h.writeState(w, http.StatusOK)
		return
	}

	if !validHex(req.Color) {
		writeError(w, http.StatusBadRequest, "Color must be #rrggbb")
		return
	}
	h.controller.SetColor(gg.Hex(req.Color))
	h.writeState(w, http.StatusOK)
}

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
