package capture

import (
	"errors"
	"testing"
)

func TestNewCamera_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantFPS int
	}{
		{name: "zero config", config: Config{}, wantFPS: DefaultFPS},
		{name: "default config", config: DefaultConfig(), wantFPS: DefaultFPS},
		{name: "explicit rate", config: Config{DeviceID: 1, FPS: 30}, wantFPS: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.config)
			if cam == nil {
				t.Fatal("NewCamera returned nil")
			}
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open before Open()")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	steps := []struct {
		fps  int
		want int
	}{
		{10, 10},
		{1, 1},
		{0, 1},
		{-5, 1},
	}

	for _, s := range steps {
		cam.SetFPS(s.fps)
		if got := cam.FPS(); got != s.want {
			t.Errorf("after SetFPS(%d): FPS() = %d, want %d", s.fps, got, s.want)
		}
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera should return nil, got: %v", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultConfig())
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
