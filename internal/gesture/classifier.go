// Package gesture classifies hand landmarks into the gesture signals that
// drive the particle cloud.
package gesture

import (
	"fmt"
	"strings"

	"github.com/ayusman/handcloud/internal/detector"
)

// Signal names, as recorded in the event log.
const (
	SignalOpenPalm     = "open_palm"
	SignalPinch        = "pinch"
	SignalPointUp      = "point_up"
	SignalTwoFingersUp = "two_fingers_up"
)

// Thresholds are the fixed distances, in normalized image units, that the
// predicates compare against.
type Thresholds struct {
	// OpenPalm is the minimum index-to-wrist and middle-to-wrist distance.
	OpenPalm float64 `yaml:"open_palm" json:"open_palm"`
	// Pinch is the maximum thumb-to-index distance.
	Pinch float64 `yaml:"pinch" json:"pinch"`
	// PointUp is how far above the wrist the index tip must be.
	PointUp float64 `yaml:"point_up" json:"point_up"`
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OpenPalm: 0.3,
		Pinch:    0.05,
		PointUp:  0.2,
	}
}

// Validate rejects non-positive thresholds.
func (t Thresholds) Validate() error {
	if t.OpenPalm <= 0 {
		return fmt.Errorf("open_palm threshold must be positive, got %v", t.OpenPalm)
	}
	if t.Pinch <= 0 {
		return fmt.Errorf("pinch threshold must be positive, got %v", t.Pinch)
	}
	if t.PointUp <= 0 {
		return fmt.Errorf("point_up threshold must be positive, got %v", t.PointUp)
	}
	return nil
}

// Signals is the set of gestures seen in one hand. Signals are evaluated
// independently and any combination may be set.
type Signals struct {
	OpenPalm     bool
	Pinch        bool
	PointUp      bool
	TwoFingersUp bool
}

// Any reports whether at least one signal is set.
func (s Signals) Any() bool {
	return s.OpenPalm || s.Pinch || s.PointUp || s.TwoFingersUp
}

// Names lists the set signals in a fixed order.
func (s Signals) Names() []string {
	var names []string
	if s.OpenPalm {
		names = append(names, SignalOpenPalm)
	}
	if s.Pinch {
		names = append(names, SignalPinch)
	}
	if s.PointUp {
		names = append(names, SignalPointUp)
	}
	if s.TwoFingersUp {
		names = append(names, SignalTwoFingersUp)
	}
	return names
}

func (s Signals) String() string {
	if !s.Any() {
		return "none"
	}
	return strings.Join(s.Names(), ",")
}

// Classifier evaluates the gesture predicates with a fixed set of thresholds.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a Classifier.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Thresholds returns the classifier's thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// IsOpenPalm reports whether both the index and middle tips are far from the wrist.
func (c *Classifier) IsOpenPalm(hand *detector.HandLandmarks) bool {
	return hand.Distance2D(detector.IndexTip, detector.Wrist) > c.thresholds.OpenPalm &&
		hand.Distance2D(detector.MiddleTip, detector.Wrist) > c.thresholds.OpenPalm
}

// IsPinch reports whether the thumb and index tips touch.
func (c *Classifier) IsPinch(hand *detector.HandLandmarks) bool {
	return hand.Distance2D(detector.ThumbTip, detector.IndexTip) < c.thresholds.Pinch
}

// IsPointUp reports whether the index tip is well above the wrist.
// Image Y grows downward, so above means smaller Y.
func (c *Classifier) IsPointUp(hand *detector.HandLandmarks) bool {
	return hand.Points[detector.IndexTip].Y < hand.Points[detector.Wrist].Y-c.thresholds.PointUp
}

// IsTwoFingersUp reports whether both the index and middle tips are above the wrist.
func (c *Classifier) IsTwoFingersUp(hand *detector.HandLandmarks) bool {
	wrist := hand.Points[detector.Wrist].Y
	return hand.Points[detector.IndexTip].Y < wrist && hand.Points[detector.MiddleTip].Y < wrist
}

// Classify evaluates every predicate against hand. A nil hand has no signals.
func (c *Classifier) Classify(hand *detector.HandLandmarks) Signals {
	if hand == nil {
		return Signals{}
	}
	return Signals{
		OpenPalm:     c.IsOpenPalm(hand),
		Pinch:        c.IsPinch(hand),
		PointUp:      c.IsPointUp(hand),
		TwoFingersUp: c.IsTwoFingersUp(hand),
	}
}
