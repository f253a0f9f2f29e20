// Package viewer holds the desktop window's scene and key bindings,
// independent of the windowing library.
package viewer

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/render"
)

// Action is something a key press asks the viewer to do.
type Action int

const (
	ActionNone Action = iota
	ActionNextShape
	ActionFirework
	ActionRandomColor
	ActionSave
	ActionToggleTracking
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:           "none",
	ActionNextShape:      "next shape",
	ActionFirework:       "firework",
	ActionRandomColor:    "random color",
	ActionSave:           "save",
	ActionToggleTracking: "toggle tracking",
	ActionQuit:           "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Bindings maps key names to actions.
var Bindings = map[string]Action{
	"Space":  ActionNextShape,
	"F":      ActionFirework,
	"C":      ActionRandomColor,
	"S":      ActionSave,
	"T":      ActionToggleTracking,
	"Escape": ActionQuit,
	"Q":      ActionQuit,
}

// Help is the key legend drawn in the window corner.
const Help = "Space: shape  F: firework  C: color  S: save  T: tracking  Esc/Q: quit"

// Tracker is the part of the pipeline the viewer can pause.
type Tracker interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Scene projects controller snapshots for a window of a given size.
type Scene struct {
	controller *engine.Controller
	tracker    Tracker
	projector  *render.Projector
	dots       []render.Dot

	statusMu sync.Mutex
	status   string
}

// NewScene creates a Scene. tracker may be nil.
func NewScene(c *engine.Controller, tracker Tracker, width, height int) *Scene {
	return &Scene{
		controller: c,
		tracker:    tracker,
		projector:  render.NewProjector(width, height),
	}
}

// Resize rebuilds the projector when the window size changes.
func (s *Scene) Resize(width, height int) {
	if w, h := s.projector.Size(); w == width && h == height {
		return
	}
	s.projector = render.NewProjector(width, height)
}

// Size returns the scene size in pixels.
func (s *Scene) Size() (width, height int) {
	return s.projector.Size()
}

// Frame projects the current snapshot. The returned slice is reused by the
// next call.
func (s *Scene) Frame() (engine.Snapshot, []render.Dot) {
	snap := s.controller.Snapshot()
	s.dots = render.Dots(s.projector, snap, s.dots[:0])
	return snap, s.dots
}

// Color converts the snapshot color for drawing.
func Color(snap engine.Snapshot) color.RGBA {
	return color.RGBAModel.Convert(snap.Color.Color()).(color.RGBA)
}

// Apply performs a controller action. Save and Quit are left to the caller
// and reported as not handled.
func (s *Scene) Apply(a Action) (handled bool) {
	switch a {
	case ActionNextShape:
		s.SetStatus("shape: " + s.controller.NextShape().String())
	case ActionFirework:
		s.controller.Firework()
		s.SetStatus("firework")
	case ActionRandomColor:
		s.SetStatus("color: " + engine.HexColor(s.controller.RandomizeColor()))
	case ActionToggleTracking:
		if s.tracker == nil {
			s.SetStatus("no tracker")
			return true
		}
		enabled := !s.tracker.IsEnabled()
		s.tracker.SetEnabled(enabled)
		if enabled {
			s.SetStatus("tracking on")
		} else {
			s.SetStatus("tracking paused")
		}
	default:
		return false
	}
	return true
}

// SetStatus replaces the status line. It is safe to call from any goroutine.
func (s *Scene) SetStatus(status string) {
	s.statusMu.Lock()
	s.status = status
	s.statusMu.Unlock()
}

// Status returns the last action message.
func (s *Scene) Status() string {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

// Caption is the one-line HUD text for snap.
func (s *Scene) Caption(snap engine.Snapshot) string {
	line := fmt.Sprintf("%s  %s  %d particles", snap.Shape, snap.ColorHex(), snap.Len())
	if status := s.Status(); status != "" {
		line += "  |  " + status
	}
	return line
}
