package viewer

import (
	"sync"
	"sync/atomic"

	"github.com/ayusman/handcloud/internal/engine"
)

// AskFunc blocks on a file dialog and returns the chosen path, or an empty
// path when the user cancels.
type AskFunc func() (string, error)

// WriteFunc stores snap at path.
type WriteFunc func(path string, snap engine.Snapshot) error

// Saver runs the save dialog on its own goroutine so the window keeps
// drawing while it is open. At most one dialog is open at a time.
type Saver struct {
	scene *Scene
	ask   AskFunc
	write WriteFunc

	busy atomic.Bool
	wg   sync.WaitGroup
}

// NewSaver creates a Saver reporting its outcome on scene's status line.
func NewSaver(scene *Scene, ask AskFunc, write WriteFunc) *Saver {
	return &Saver{scene: scene, ask: ask, write: write}
}

// Save captures the frame on screen and opens the dialog. It returns false
// while an earlier dialog is still open.
func (s *Saver) Save() bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	snap := s.scene.controller.Snapshot()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.busy.Store(false)
		s.run(snap)
	}()
	return true
}

// Busy reports whether a dialog is open.
func (s *Saver) Busy() bool {
	return s.busy.Load()
}

// Wait blocks until the open dialog, if any, has finished.
func (s *Saver) Wait() {
	s.wg.Wait()
}

func (s *Saver) run(snap engine.Snapshot) {
	path, err := s.ask()
	if err != nil {
		s.scene.SetStatus("save failed: " + err.Error())
		return
	}
	if path == "" {
		return
	}
	if err := s.write(path, snap); err != nil {
		s.scene.SetStatus("save failed: " + err.Error())
		return
	}
	s.scene.SetStatus("saved " + path)
}
