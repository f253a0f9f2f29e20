package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame after playback, got %v", err)
	}

	cam.Reset()
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after Reset error = %v", err)
	}
	f.Close()
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewSyntheticCamera(64, 48)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestMockCamera_EmptyFrames(t *testing.T) {
	cam := NewMockCamera([]*gocv.Mat{}, true)
	cam.Open()
	defer cam.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame, got %v", err)
	}
}

func TestSyntheticCamera_TriggersMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewSyntheticCamera(320, 240)
	cam.Open()
	defer cam.Close()

	md := NewMotionDetector(1.0)
	defer md.Close()

	for i := 0; i < 3; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if f.Cols() != 320 || f.Rows() != 240 {
			t.Errorf("expected 320x240, got %dx%d", f.Cols(), f.Rows())
		}

		detected, changed := md.Detect(f)
		f.Close()

		if i > 0 && !detected {
			t.Errorf("frame %d: expected motion, changed = %f", i, changed)
		}
	}
}

func TestEncodeJPEG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewSyntheticCamera(64, 48)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer f.Close()

	data, err := EncodeJPEG(f, 0)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("expected JPEG SOI marker")
	}

	if _, err := EncodeJPEG(nil, 80); !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame for nil frame, got %v", err)
	}
}
