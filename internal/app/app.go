// Package app runs the handcloud pipeline: the video loop that turns
// camera frames into gestures, and the display loop that advances the
// particle cloud.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"gocv.io/x/gocv"

	"github.com/ayusman/handcloud/internal/capture"
	"github.com/ayusman/handcloud/internal/detector"
	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/gesture"
	"github.com/ayusman/handcloud/internal/logging"
	"github.com/ayusman/handcloud/internal/shape"
	"github.com/ayusman/handcloud/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the capture rate while nothing moves.
	IdleFPS = 5
	// ActiveFPS is the capture rate while hands are being tracked.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// DefaultDisplayFPS is the integrator rate.
	DefaultDisplayFPS = 60
	// HistoryRetention is how long ended sessions are kept.
	HistoryRetention = 30 * 24 * time.Hour
)

// ErrNoController is returned by New when Config.Controller is nil.
var ErrNoController = errors.New("app: controller is required")

// Config holds configuration options for the application.
type Config struct {
	Controller *engine.Controller
	Store      *store.Store
	Logger     logging.Logger

	// Camera defaults to the device CameraID.
	Camera       capture.Camera
	CameraID     int
	MotionThresh float64

	// Detector defaults to MediaPipe, or the mock detector when the
	// MediaPipe script is missing.
	Detector       detector.Detector
	DetectorConfig detector.Config

	DisplayFPS int
}

// App owns the capture devices and drives the controller.
type App struct {
	config     Config
	controller *engine.Controller
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	log        logging.Logger

	enabled bool
	session *store.Session
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex

	frameMu sync.Mutex
	latest  gocv.Mat

	hookMu      sync.RWMutex
	signalHooks []func(gesture.Signals)
}

// New creates an App. Nothing runs until Start.
func New(config Config) (*App, error) {
	if config.Controller == nil {
		return nil, ErrNoController
	}
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0 // 1% of pixels
	}
	if config.DisplayFPS <= 0 {
		config.DisplayFPS = DefaultDisplayFPS
	}
	if config.DetectorConfig == (detector.Config{}) {
		config.DetectorConfig = detector.DefaultConfig()
	}

	a := &App{
		config:     config,
		controller: config.Controller,
		camera:     config.Camera,
		motion:     capture.NewMotionDetector(config.MotionThresh),
		detector:   config.Detector,
		log:        logging.OrNop(config.Logger),
		latest:     gocv.NewMat(),
	}

	if a.camera == nil {
		cc := capture.DefaultConfig()
		cc.DeviceID = config.CameraID
		cc.FPS = IdleFPS
		a.camera = capture.NewCamera(cc)
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig, a.log); err == nil {
			a.detector = mp
			a.log.Infof("Using MediaPipe hand detection")
		} else {
			a.log.Warnf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// SetEnabled turns hand tracking on or off. The display loop keeps running.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether hand tracking is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning reports whether Start has been called without a matching Stop.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the camera. It only takes effect before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopCh == nil {
		a.camera = c
	}
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Controller returns the particle controller.
func (a *App) Controller() *engine.Controller {
	return a.controller
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Session returns the current session, or nil when there is no store or
// the app is not running.
func (a *App) Session() *store.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Start opens the camera and launches the video and display loops.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.restoreSettings()

	if a.config.Store != nil {
		if n, err := a.config.Store.Prune(time.Now().Add(-HistoryRetention)); err != nil {
			a.log.Warnf("Failed to prune history: %v", err)
		} else if n > 0 {
			a.log.Debugf("Pruned %d old gesture events", n)
		}

		sess, err := a.config.Store.Sessions().Start()
		if err != nil {
			a.log.Warnf("Failed to start session: %v", err)
		} else {
			a.session = sess
		}
	}

	a.stopCh = make(chan struct{})
	a.wg.Add(2)
	go a.runVideoLoop(a.stopCh)
	go a.runDisplayLoop(a.stopCh)

	a.log.Infof("Pipeline started")
	return nil
}

// Stop halts both loops, releases the devices and saves the last shape
// and color. The app can be started again afterwards.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	a.mu.Unlock()

	a.wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		a.log.Warnf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.log.Warnf("Error closing detector: %v", err)
		}
	}

	a.frameMu.Lock()
	a.latest.Close()
	a.latest = gocv.NewMat()
	a.frameMu.Unlock()

	a.saveSettings()
	if a.session != nil {
		if err := a.config.Store.Sessions().End(a.session.ID); err != nil {
			a.log.Warnf("Failed to end session: %v", err)
		}
		a.session = nil
	}

	a.log.Infof("Pipeline stopped")
}

// HandleFrame applies a detected hand frame to the controller and records
// any signals it produced. It is used by the video loop and by remote
// landmark sources. Frames are dropped while tracking is off.
func (a *App) HandleFrame(frame detector.HandFrame) gesture.Signals {
	if !a.IsEnabled() {
		return gesture.Signals{}
	}
	signals := a.controller.HandleFrame(frame)
	if signals.Any() {
		a.recordEvent(signals)

		a.hookMu.RLock()
		for _, fn := range a.signalHooks {
			fn(signals)
		}
		a.hookMu.RUnlock()
	}
	return signals
}

// OnSignals registers fn to run after every frame that produced at least
// one signal.
func (a *App) OnSignals(fn func(gesture.Signals)) {
	a.hookMu.Lock()
	a.signalHooks = append(a.signalHooks, fn)
	a.hookMu.Unlock()
}

// CameraJPEG encodes the most recent camera frame seen by the video loop.
func (a *App) CameraJPEG(quality int) ([]byte, error) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return capture.EncodeJPEG(&a.latest, quality)
}

func (a *App) keepLatest(frame *gocv.Mat) {
	a.frameMu.Lock()
	frame.CopyTo(&a.latest)
	a.frameMu.Unlock()
}

func (a *App) recordEvent(signals gesture.Signals) {
	if a.config.Store == nil {
		return
	}

	st := a.controller.State()
	ev := &store.GestureEvent{
		Signals: signals.Names(),
		Shape:   st.Shape.String(),
		Color:   st.ColorHex(),
	}
	if sess := a.Session(); sess != nil {
		ev.SessionID = sess.ID
	}

	if err := a.config.Store.Events().Record(ev); err != nil {
		a.log.Warnf("Failed to record gesture event: %v", err)
	}
}

// restoreSettings applies the shape and color saved by the last Stop.
// Called with a.mu held.
func (a *App) restoreSettings() {
	if a.config.Store == nil {
		return
	}

	settings := a.config.Store.Settings()
	st := a.controller.State()
	kind, col := st.Shape, st.Color

	if v, err := settings.Get(store.SettingLastShape); err == nil {
		if k, err := shape.ParseKind(v); err == nil {
			kind = k
		} else {
			a.log.Warnf("Ignoring saved shape: %v", err)
		}
	}
	if v, err := settings.Get(store.SettingLastColor); err == nil {
		col = gg.Hex(v)
	}

	a.controller.Restore(kind, col)
}

// saveSettings persists the current shape and color. Called with a.mu held.
func (a *App) saveSettings() {
	if a.config.Store == nil {
		return
	}

	st := a.controller.State()
	settings := a.config.Store.Settings()
	if err := settings.Set(store.SettingLastShape, st.Shape.String()); err != nil {
		a.log.Warnf("Failed to save shape: %v", err)
	}
	if err := settings.Set(store.SettingLastColor, st.ColorHex()); err != nil {
		a.log.Warnf("Failed to save color: %v", err)
	}
}
