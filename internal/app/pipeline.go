package app

import (
	"time"

	"github.com/ayusman/handcloud/internal/capture"
)

// runVideoLoop reads the camera at IdleFPS until the motion gate opens,
// then at ActiveFPS, running the detector on every active frame. It drops
// back to idle after IdleTimeout without motion.
func (a *App) runVideoLoop(stop <-chan struct{}) {
	defer a.wg.Done()

	gate := capture.NewGate(IdleTimeout)
	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				if gate.Active() {
					gate.Reset()
					a.motion.Reset()
					a.setRate(ticker, IdleFPS)
				}
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.log.Debugf("Error reading frame: %v", err)
				continue
			}
			a.keepLatest(frame)

			moving, _ := a.motion.Detect(frame)
			active, changed := gate.Observe(moving, now)
			if changed {
				if active {
					a.setRate(ticker, ActiveFPS)
					a.log.Debugf("Switched to active mode")
				} else {
					a.setRate(ticker, IdleFPS)
					a.log.Debugf("Switched to idle mode")
				}
			}

			det := a.Detector()
			if !active || det == nil {
				frame.Close()
				continue
			}

			hands, err := det.Detect(frame)
			frame.Close()
			if err != nil {
				a.log.Warnf("Error detecting hands: %v", err)
				continue
			}

			a.HandleFrame(hands)
		}
	}
}

func (a *App) setRate(ticker *time.Ticker, fps int) {
	a.camera.SetFPS(fps)
	ticker.Reset(time.Second / time.Duration(fps))
}

// runDisplayLoop advances the cloud once per display frame.
func (a *App) runDisplayLoop(stop <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.DisplayFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.controller.Tick()
		}
	}
}
