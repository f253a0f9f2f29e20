package capture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back frames for tests and for running without a
// webcam. With no frames it draws a synthetic scene: a bright block that
// moves on every read, so the motion gate stays active.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	width   int
	height  int
	tick    int
	mu      sync.Mutex
	running bool
}

// NewMockCamera plays frames in order, optionally looping.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		width:  DefaultWidth,
		height: DefaultHeight,
	}
}

// NewSyntheticCamera returns a MockCamera that draws moving frames of the
// given size forever.
func NewSyntheticCamera(width, height int) *MockCamera {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &MockCamera{width: width, height: height}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if c.frames == nil {
		return c.syntheticLocked(), nil
	}

	if len(c.frames) == 0 {
		return nil, ErrNoFrame
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, fmt.Errorf("playback finished: %w", ErrNoFrame)
		}
		c.index = 0
	}

	// Clone so callers may close what they get.
	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

// syntheticLocked draws a dark frame with a block that hops a quarter of
// the width each read.
func (c *MockCamera) syntheticLocked() *gocv.Mat {
	mat := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(16, 16, 16, 0))

	w, h := c.width/4, c.height/3
	x := (c.tick % 4) * w
	rect := image.Rect(x, h, x+w, 2*h)
	gocv.Rectangle(&mat, rect, color.RGBA{R: 240, G: 220, B: 200, A: 255}, -1)

	c.tick++
	return &mat
}

func (c *MockCamera) SetFPS(fps int) {}
func (c *MockCamera) FPS() int       { return 15 }

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence. Nil switches to synthetic frames.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
	c.tick = 0
}
