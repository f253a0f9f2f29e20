package app

import (
	"github.com/ayusman/handcloud/internal/capture"
	"github.com/ayusman/handcloud/internal/config"
	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/logging"
	"github.com/ayusman/handcloud/internal/store"
)

// FromConfig builds the controller and an App from a loaded configuration.
// st may be nil.
func FromConfig(cfg config.Config, st *store.Store, log logging.Logger) (*App, error) {
	controller, err := engine.New(engine.Config{
		ParticleCount: cfg.ParticleCount,
		InitialShape:  cfg.InitialShape,
		Thresholds:    cfg.Thresholds,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Controller:     controller,
		Store:          st,
		Logger:         log,
		CameraID:       cfg.CameraID,
		MotionThresh:   cfg.MotionThresh,
		DetectorConfig: cfg.Detector,
		DisplayFPS:     cfg.DisplayFPS,
	})
}

// StartOrSynthetic starts the app, switching to a synthetic camera when
// the device cannot be opened so the display still runs. It reports
// whether the real camera is in use.
func (a *App) StartOrSynthetic() (bool, error) {
	err := a.Start()
	if err == nil {
		return true, nil
	}

	a.log.Warnf("Camera unavailable (%v), using synthetic frames", err)
	a.SetCamera(capture.NewSyntheticCamera(capture.DefaultWidth, capture.DefaultHeight))
	if err := a.Start(); err != nil {
		return false, err
	}
	return false, nil
}
