package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{
			name:      "default threshold",
			threshold: 1.0,
		},
		{
			name:      "high threshold",
			threshold: 5.0,
		},
		{
			name:      "low threshold",
			threshold: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			if md == nil {
				t.Fatal("NewMotionDetector returned nil")
			}
			defer md.Close()

			if md.threshold != tt.threshold {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.threshold)
			}

			if md.initialized {
				t.Error("motion detector should not be initialized initially")
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0) // 1% threshold
	defer md.Close()

	// Create two identical black frames
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()

	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	// First frame initializes the detector
	detected, changePercent := md.Detect(&frame1)
	if detected {
		t.Error("first frame should not detect motion")
	}
	if changePercent != 0 {
		t.Errorf("first frame changePercent = %f, want 0", changePercent)
	}

	// Second identical frame should not detect motion
	detected, changePercent = md.Detect(&frame2)
	if detected {
		t.Errorf("identical frames should not detect motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0) // 1% threshold
	defer md.Close()

	// Create a black frame (all zeros)
	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()

	// Create a white frame (all 255s)
	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()

	// Fill white frame with white pixels
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	// First frame initializes the detector
	detected, _ := md.Detect(&blackFrame)
	if detected {
		t.Error("first frame should not detect motion")
	}

	// Second frame is completely different, should detect motion
	detected, changePercent := md.Detect(&whiteFrame)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", changePercent)
	}

	// Change percent should be high (close to 100% since all pixels changed)
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white transition", changePercent)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	// Create a frame and initialize the detector
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)

	if !md.initialized {
		t.Error("detector should be initialized after first Detect")
	}

	// Reset should clear state
	md.Reset()

	if md.initialized {
		t.Error("detector should not be initialized after Reset")
	}

	if !md.prevGray.Empty() {
		t.Error("prevGray should be empty after Reset")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	for _, s := range []struct{ set, want float64 }{
		{5.0, 5.0},
		{0.5, 0.5},
		{0, 0.5},
		{-1.0, 0.5},
	} {
		md.SetThreshold(s.set)
		if got := md.Threshold(); got != s.want {
			t.Errorf("after SetThreshold(%v): threshold = %v, want %v", s.set, got, s.want)
		}
	}
}

func TestMotionDetector_SizeChangeResetsBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	small := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer small.Close()
	large := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer large.Close()
	large.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&small)
	if detected, changed := md.Detect(&large); detected || changed != 0 {
		t.Errorf("a new frame size should only reset the baseline, got detected=%v changed=%f", detected, changed)
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	// Close multiple times should not panic
	md.Close()
	md.Close()
}

func TestMotionDetector_Detect_AfterClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)
	md.Close()

	// Detect after close should handle gracefully (re-initialize)
	detected, _ := md.Detect(&frame)
	if detected {
		t.Error("first frame after close should not detect motion")
	}
}

func TestGate_Transitions(t *testing.T) {
	start := time.Unix(1000, 0)
	g := NewGate(2 * time.Second)

	steps := []struct {
		name        string
		motion      bool
		at          time.Duration
		wantActive  bool
		wantChanged bool
	}{
		{"idle without motion", false, 0, false, false},
		{"motion activates", true, 100 * time.Millisecond, true, true},
		{"motion keeps active", true, 500 * time.Millisecond, true, false},
		{"quiet within timeout", false, 2 * time.Second, true, false},
		{"quiet past timeout", false, 2600 * time.Millisecond, false, true},
		{"stays idle", false, 5 * time.Second, false, false},
		{"motion again", true, 6 * time.Second, true, true},
	}

	for _, s := range steps {
		active, changed := g.Observe(s.motion, start.Add(s.at))
		if active != s.wantActive || changed != s.wantChanged {
			t.Errorf("%s: got (active=%v, changed=%v), want (%v, %v)",
				s.name, active, changed, s.wantActive, s.wantChanged)
		}
	}

	g.Reset()
	if g.Active() {
		t.Error("gate should be idle after Reset")
	}
}
