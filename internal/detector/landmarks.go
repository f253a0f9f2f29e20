// Package detector provides hand landmark types and the detectors that produce them.
package detector

import (
	"encoding/json"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to [0,1] image
// coordinates with Y growing downward; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// HandFrame is one detection result: every hand found in a video frame.
// A frame with no hands is valid and means nothing was detected.
type HandFrame struct {
	Hands     []HandLandmarks `json:"hands"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

// Empty reports whether the frame holds no hands.
func (f HandFrame) Empty() bool {
	return len(f.Hands) == 0
}

// Primary returns the first detected hand.
func (f HandFrame) Primary() (*HandLandmarks, bool) {
	if len(f.Hands) == 0 {
		return nil, false
	}
	return &f.Hands[0], true
}

// Distance2D is the planar distance between two landmarks. Z is ignored.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Distance2D returns the planar distance between landmarks i and j.
func (h *HandLandmarks) Distance2D(i, j int) float64 {
	return Distance2D(h.Points[i], h.Points[j])
}

// jsonHand is a hand as sent on the wire, with a variable point count.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// ParseHandFrame decodes a JSON hand frame. Hands with fewer than
// NumLandmarks points are dropped rather than zero-filled, since a zeroed
// wrist would read as a gesture.
func ParseHandFrame(data []byte) (HandFrame, error) {
	var raw struct {
		Hands     []jsonHand `json:"hands"`
		Timestamp int64      `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return HandFrame{}, err
	}

	frame := HandFrame{Timestamp: raw.Timestamp}
	for _, h := range raw.Hands {
		if len(h.Points) < NumLandmarks {
			continue
		}
		lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
		copy(lm.Points[:], h.Points)
		frame.Hands = append(frame.Hands, lm)
	}
	return frame, nil
}
