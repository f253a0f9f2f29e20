// Package engine owns the render state and the particle set, and applies
// gesture signals and display frames to them.
package engine

import (
	"encoding/json"
	"fmt"
	"image/color"
	"time"

	"github.com/gogpu/gg"

	"github.com/ayusman/handcloud/internal/shape"
)

// Effect constants.
const (
	DefaultSpread = 1.2
	OpenSpread    = 1.03
	ClosedSpread  = 0.99

	DefaultPointSize  = 0.05
	FireworkPointSize = 0.15
	FireworkDuration  = 300 * time.Millisecond

	// PinchSaturation and PinchLightness fix the HSL color picked on a pinch;
	// only the hue is random.
	PinchSaturation = 1.0
	PinchLightness  = 0.6
)

// DefaultColor is the starting particle color (hot pink).
var DefaultColor = gg.Hex("#ff69b4")

// State is the render state shared by the gesture and display paths.
type State struct {
	Shape     shape.Kind
	Spread    float64
	Color     gg.RGBA
	PointSize float64
	Rotation  float64
}

// DefaultState returns the state a fresh cloud starts in.
func DefaultState(kind shape.Kind) State {
	return State{
		Shape:     kind,
		Spread:    DefaultSpread,
		Color:     DefaultColor,
		PointSize: DefaultPointSize,
	}
}

// ColorHex formats the particle color as #rrggbb.
func (s State) ColorHex() string {
	return HexColor(s.Color)
}

// HexColor formats c as #rrggbb, ignoring alpha.
func HexColor(c gg.RGBA) string {
	n := color.NRGBAModel.Convert(c.Color()).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

type stateJSON struct {
	Shape     shape.Kind `json:"shape"`
	Spread    float64    `json:"spread"`
	Color     string     `json:"color"`
	PointSize float64    `json:"point_size"`
	Rotation  float64    `json:"rotation"`
}

// MarshalJSON renders the color as a hex string.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Shape:     s.Shape,
		Spread:    s.Spread,
		Color:     s.ColorHex(),
		PointSize: s.PointSize,
		Rotation:  s.Rotation,
	})
}

// Snapshot is an immutable copy of the cloud taken after a display frame.
// Positions is shared between all subscribers of a frame and must be
// treated as read-only.
type Snapshot struct {
	State
	Frame     uint64
	Positions []float32
}

// Len returns the number of particles in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Positions) / 3
}
