package viewer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/handcloud/internal/engine"
)

func TestSaver_DialogDoesNotBlockCaller(t *testing.T) {
	s, c := newScene(t, nil)

	release := make(chan struct{})
	asked := make(chan struct{})
	var written string
	var shapeAtWrite string
	saver := NewSaver(s,
		func() (string, error) {
			close(asked)
			<-release
			return "/tmp/cloud.png", nil
		},
		func(path string, snap engine.Snapshot) error {
			written = path
			shapeAtWrite = snap.Shape.String()
			return nil
		},
	)

	assert.True(t, saver.Save())
	<-asked

	// The dialog is open; the scene keeps working and a second save is refused.
	assert.True(t, saver.Busy())
	assert.False(t, saver.Save())
	assert.True(t, s.Apply(ActionNextShape))
	_, dots := s.Frame()
	assert.NotEmpty(t, dots)

	close(release)
	saver.Wait()

	assert.False(t, saver.Busy())
	assert.Equal(t, "/tmp/cloud.png", written)
	assert.Equal(t, "heart", shapeAtWrite, "the frame on screen at key press is saved")
	assert.Equal(t, "saved /tmp/cloud.png", s.Status())
	assert.Equal(t, "flower", c.State().Shape.String())
}

func TestSaver_Canceled(t *testing.T) {
	s, _ := newScene(t, nil)
	s.SetStatus("firework")

	wrote := false
	saver := NewSaver(s,
		func() (string, error) { return "", nil },
		func(string, engine.Snapshot) error { wrote = true; return nil },
	)

	assert.True(t, saver.Save())
	saver.Wait()

	assert.False(t, wrote)
	assert.Equal(t, "firework", s.Status())
}

func TestSaver_Errors(t *testing.T) {
	s, _ := newScene(t, nil)

	saver := NewSaver(s,
		func() (string, error) { return "", errors.New("no display") },
		func(string, engine.Snapshot) error { return nil },
	)
	saver.Save()
	saver.Wait()
	assert.Equal(t, "save failed: no display", s.Status())

	saver = NewSaver(s,
		func() (string, error) { return "/nope/cloud.png", nil },
		func(string, engine.Snapshot) error { return errors.New("permission denied") },
	)
	saver.Save()
	saver.Wait()
	assert.Equal(t, "save failed: permission denied", s.Status())
}
