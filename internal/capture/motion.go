package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// MotionDetector compares consecutive frames and reports the share of
// pixels that changed. A blurred grayscale copy of the previous frame is
// kept as the baseline.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage
// of changed pixels that counts as motion (1.0 means 1%).
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the previous one by more than
// the threshold, and the changed percentage. The first frame after a reset
// only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized || m.prevGray.Rows() != blurred.Rows() || m.prevGray.Cols() != blurred.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&m.prevGray)
	return changed > m.threshold, changed
}

// Reset drops the baseline so the next frame starts fresh.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// Close releases the baseline Mat. The detector can still be used; it
// behaves as if freshly reset.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *MotionDetector) clearLocked() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold changes the motion threshold. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Threshold returns the current motion threshold.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// Gate switches between an idle and an active capture rate. Motion makes
// it active at once; it falls back to idle only after timeout passes with
// no motion. Gate is not safe for concurrent use.
type Gate struct {
	timeout    time.Duration
	active     bool
	lastMotion time.Time
}

// NewGate creates an idle Gate.
func NewGate(timeout time.Duration) *Gate {
	return &Gate{timeout: timeout}
}

// Observe feeds one motion sample taken at now. It returns whether the
// gate is active and whether that changed with this sample.
func (g *Gate) Observe(motion bool, now time.Time) (active, changed bool) {
	if motion {
		g.lastMotion = now
		if !g.active {
			g.active = true
			return true, true
		}
		return true, false
	}

	if g.active && now.Sub(g.lastMotion) > g.timeout {
		g.active = false
		return false, true
	}
	return g.active, false
}

// Active reports the current state.
func (g *Gate) Active() bool {
	return g.active
}

// Reset returns the gate to idle.
func (g *Gate) Reset() {
	g.active = false
	g.lastMotion = time.Time{}
}
