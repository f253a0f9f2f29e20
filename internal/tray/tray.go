// Package tray provides a system tray menu for handcloud.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Actions are the callbacks the menu invokes. Nil callbacks are skipped.
type Actions struct {
	OnToggle      func(enabled bool)
	OnNextShape   func() string
	OnFirework    func()
	OnRandomColor func()
	OnOpen        func()
	OnQuit        func()
}

// Tray represents the system tray application.
type Tray struct {
	actions Actions
	enabled bool
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuShape  *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray with tracking enabled.
func New(actions Actions) *Tray {
	return &Tray{
		actions: actions,
		enabled: true,
	}
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("handcloud")
	systray.SetTooltip("Hand-controlled particle cloud")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()
	t.menuShape = systray.AddMenuItem("Next Shape", "Cycle the particle template")
	menuFirework := systray.AddMenuItem("Firework", "Pulse the particle size")
	menuColor := systray.AddMenuItem("Random Color", "Pick a new particle color")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(lastTitle(""), "Last detected gesture")
	t.menuLast.Disable()
	systray.AddSeparator()
	menuOpen := systray.AddMenuItem("Open in Browser...", "Open the web view")
	menuQuit := systray.AddMenuItem("Quit", "Quit handcloud")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuShape.ClickedCh:
				t.handleNextShape()
			case <-menuFirework.ClickedCh:
				call(t.actions.OnFirework)
			case <-menuColor.ClickedCh:
				call(t.actions.OnRandomColor)
			case <-menuOpen.ClickedCh:
				call(t.actions.OnOpen)
			case <-menuQuit.ClickedCh:
				call(t.actions.OnQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func lastTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}

// handleToggle flips the tracking state and reports it.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.actions.OnToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleNextShape() {
	if t.actions.OnNextShape == nil {
		return
	}
	name := t.actions.OnNextShape()

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuShape != nil {
		t.menuShape.SetTooltip("Current: " + name)
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(name))
	}
}

// IsEnabled returns the current tracking state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
