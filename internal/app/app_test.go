package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gg"

	"github.com/ayusman/handcloud/internal/capture"
	"github.com/ayusman/handcloud/internal/detector"
	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/gesture"
	"github.com/ayusman/handcloud/internal/shape"
	"github.com/ayusman/handcloud/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newController(t *testing.T) *engine.Controller {
	t.Helper()
	c, err := engine.New(engine.Config{ParticleCount: 200, Generator: shape.NewSeededGenerator(7)})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return c
}

func newTestApp(t *testing.T, s *store.Store) (*App, *detector.MockDetector) {
	t.Helper()
	det := detector.NewMockDetector()
	a, err := New(Config{
		Controller: newController(t),
		Store:      s,
		Camera:     capture.NewSyntheticCamera(160, 120),
		Detector:   det,
		DisplayFPS: 120,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a, det
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestNew_RequiresController(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrNoController) {
		t.Errorf("expected ErrNoController, got %v", err)
	}
}

func TestNew_DefaultsToMockDetector(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	a, err := New(Config{Controller: newController(t), Camera: capture.NewSyntheticCamera(0, 0)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Detector() == nil {
		t.Fatal("expected a detector")
	}
	if a.IsEnabled() {
		t.Error("tracking should start disabled")
	}
}

func TestApp_HandleFrame_RecordsEvents(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)
	a.SetEnabled(true)

	signals := a.HandleFrame(detector.HandFrame{Hands: []detector.HandLandmarks{detector.PointUpLandmarks()}})
	if !signals.PointUp {
		t.Fatalf("expected point-up, got %s", signals)
	}

	a.HandleFrame(detector.HandFrame{})
	a.HandleFrame(detector.HandFrame{Hands: []detector.HandLandmarks{detector.FistLandmarks()}})

	events, err := s.Events().List(0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Shape != "flower" {
		t.Errorf("expected shape flower, got %q", events[0].Shape)
	}
	if len(events[0].Signals) != 1 || events[0].Signals[0] != "point_up" {
		t.Errorf("expected [point_up], got %v", events[0].Signals)
	}
}

func TestApp_OnSignals(t *testing.T) {
	a, _ := newTestApp(t, nil)
	a.SetEnabled(true)

	var got []string
	a.OnSignals(func(s gesture.Signals) { got = append(got, s.String()) })

	a.HandleFrame(detector.HandFrame{})
	a.HandleFrame(detector.HandFrame{Hands: []detector.HandLandmarks{detector.PointUpLandmarks()}})

	if len(got) != 1 {
		t.Fatalf("expected 1 hook call, got %d", len(got))
	}
	if got[0] != "point_up" {
		t.Errorf("expected point_up, got %s", got[0])
	}
}

func TestApp_StartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if !a.IsRunning() {
		t.Fatal("expected app to be running")
	}
	sess := a.Session()
	if sess == nil {
		t.Fatal("expected a session after Start")
	}

	if !waitFor(t, 2*time.Second, func() bool { return a.Controller().Snapshot().Frame > 5 }) {
		t.Error("display loop did not advance the cloud")
	}

	a.Stop()
	a.Stop()

	if a.IsRunning() {
		t.Error("expected app to be stopped")
	}
	if a.Camera().IsOpen() {
		t.Error("camera should be closed after Stop")
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Active() {
		t.Error("session should be ended after Stop")
	}
}

func TestApp_TrackingPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newTestStore(t)
	a, det := newTestApp(t, s)
	det.SetHands([]detector.HandLandmarks{detector.VictoryLandmarks()})

	done := make(chan struct{}, 1)
	a.Controller().OnFirework(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	// The synthetic camera moves every frame, so the gate opens on the
	// second read and the detector starts seeing the two-finger pose.
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("no firework after 3s, detector calls = %d", det.Calls())
	}

	if _, err := a.CameraJPEG(0); err != nil {
		t.Errorf("expected a cached camera frame, got %v", err)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		sess := a.Session()
		if sess == nil {
			return false
		}
		n, err := s.Events().Count(sess.ID)
		return err == nil && n > 0
	})
	if !ok {
		t.Error("expected gesture events for the session")
	}
}

func TestApp_DisabledSkipsDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, det := newTestApp(t, nil)
	det.SetHands([]detector.HandLandmarks{detector.PointUpLandmarks()})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(600 * time.Millisecond)
	a.Stop()

	if det.Calls() != 0 {
		t.Errorf("expected no detector calls while disabled, got %d", det.Calls())
	}
	if a.Controller().State().Shape != shape.Heart {
		t.Errorf("shape should not change while disabled, got %s", a.Controller().State().Shape)
	}
}

func TestApp_SettingsPersistAcrossRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newTestStore(t)

	first, _ := newTestApp(t, s)
	if err := first.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	first.Controller().SetShape(shape.Galaxy)
	first.Controller().SetColor(gg.Hex("#123456"))
	first.Stop()

	second, _ := newTestApp(t, s)
	if err := second.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer second.Stop()

	st := second.Controller().State()
	if st.Shape != shape.Galaxy {
		t.Errorf("expected restored shape galaxy, got %s", st.Shape)
	}
	if st.ColorHex() != "#123456" {
		t.Errorf("expected restored color #123456, got %s", st.ColorHex())
	}
}

func TestApp_HandleFrame_IgnoredWhileDisabled(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	var hooked int
	a.OnSignals(func(gesture.Signals) { hooked++ })

	frame := detector.HandFrame{Hands: []detector.HandLandmarks{detector.PointUpLandmarks()}}
	if signals := a.HandleFrame(frame); signals.Any() {
		t.Errorf("expected no signals while disabled, got %s", signals)
	}
	if got := a.Controller().State().Shape; got != shape.Heart {
		t.Errorf("expected shape heart, got %s", got)
	}
	if hooked != 0 {
		t.Errorf("expected no hook calls, got %d", hooked)
	}

	a.SetEnabled(true)
	if signals := a.HandleFrame(frame); !signals.PointUp {
		t.Errorf("expected point-up once enabled, got %s", signals)
	}

	events, err := s.Events().List(0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}
