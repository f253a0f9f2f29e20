package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue queues one-shot results that Detect returns in order before
// falling back to the hands set with SetHands.
func (m *MockDetector) Enqueue(hands ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, hands...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (HandFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return HandFrame{}, m.err
	}

	hands := m.hands
	if len(m.queue) > 0 {
		hands = m.queue[0]
		m.queue = m.queue[1:]
	}
	return HandFrame{Hands: hands, Timestamp: time.Now().UnixMilli()}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fingerFrom lays out one finger's four landmarks on the segment from its
// MCP joint to its tip.
func fingerFrom(points *[NumLandmarks]Point3D, first int, mcp, tip Point3D) {
	for i := 0; i < 4; i++ {
		t := float64(i) / 3
		points[first+i] = Point3D{
			X: mcp.X + (tip.X-mcp.X)*t,
			Y: mcp.Y + (tip.Y-mcp.Y)*t,
			Z: mcp.Z + (tip.Z-mcp.Z)*t,
		}
	}
}

// handFromTips builds a right hand whose knuckles sit a short way above
// the wrist and whose fingers run straight out to the given tips.
func handFromTips(wrist, thumb, index, middle, ring, pinky Point3D) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = wrist

	knuckle := func(dx float64) Point3D {
		return Point3D{X: wrist.X + dx, Y: wrist.Y - 0.1, Z: wrist.Z}
	}

	fingerFrom(&h.Points, ThumbCMC, Point3D{X: wrist.X + 0.05, Y: wrist.Y - 0.04}, thumb)
	fingerFrom(&h.Points, IndexMCP, knuckle(0.05), index)
	fingerFrom(&h.Points, MiddleMCP, knuckle(0), middle)
	fingerFrom(&h.Points, RingMCP, knuckle(-0.04), ring)
	fingerFrom(&h.Points, PinkyMCP, knuckle(-0.08), pinky)
	return h
}

// OpenPalmLandmarks returns a preset hand with all fingers spread upward.
// Because the index and middle tips are far above the wrist, the same pose
// also reads as pointing up and as two fingers up.
func OpenPalmLandmarks() HandLandmarks {
	return handFromTips(
		Point3D{X: 0.5, Y: 0.8},
		Point3D{X: 0.73, Y: 0.60},
		Point3D{X: 0.58, Y: 0.35},
		Point3D{X: 0.50, Y: 0.28},
		Point3D{X: 0.42, Y: 0.35},
		Point3D{X: 0.34, Y: 0.42},
	)
}

// FistLandmarks returns a preset hand curled below the wrist that triggers
// no gesture at all.
func FistLandmarks() HandLandmarks {
	return handFromTips(
		Point3D{X: 0.5, Y: 0.55},
		Point3D{X: 0.60, Y: 0.58},
		Point3D{X: 0.52, Y: 0.62},
		Point3D{X: 0.48, Y: 0.63},
		Point3D{X: 0.45, Y: 0.62},
		Point3D{X: 0.42, Y: 0.61},
	)
}

// PinchLandmarks returns a preset hand with the thumb and index tips
// touching, held below the wrist so nothing else fires.
func PinchLandmarks() HandLandmarks {
	return handFromTips(
		Point3D{X: 0.5, Y: 0.5},
		Point3D{X: 0.56, Y: 0.62},
		Point3D{X: 0.57, Y: 0.63},
		Point3D{X: 0.48, Y: 0.64},
		Point3D{X: 0.45, Y: 0.62},
		Point3D{X: 0.42, Y: 0.61},
	)
}

// PointUpLandmarks returns a preset hand with only the index finger raised
// well above the wrist.
func PointUpLandmarks() HandLandmarks {
	return handFromTips(
		Point3D{X: 0.5, Y: 0.5},
		Point3D{X: 0.62, Y: 0.56},
		Point3D{X: 0.5, Y: 0.2},
		Point3D{X: 0.47, Y: 0.56},
		Point3D{X: 0.45, Y: 0.57},
		Point3D{X: 0.42, Y: 0.56},
	)
}

// VictoryLandmarks returns a preset hand with index and middle fingers
// raised just above the wrist: two fingers up without pointing up.
func VictoryLandmarks() HandLandmarks {
	return handFromTips(
		Point3D{X: 0.5, Y: 0.5},
		Point3D{X: 0.62, Y: 0.52},
		Point3D{X: 0.55, Y: 0.4},
		Point3D{X: 0.45, Y: 0.42},
		Point3D{X: 0.44, Y: 0.56},
		Point3D{X: 0.41, Y: 0.56},
	)
}
