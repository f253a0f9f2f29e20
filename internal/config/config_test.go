package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handcloud/internal/shape"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5000, cfg.ParticleCount)
	assert.Equal(t, shape.Heart, cfg.InitialShape)
	assert.Equal(t, 1, cfg.Detector.MaxHands)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", FileName)

	cfg := Default()
	cfg.Addr = "127.0.0.1:9090"
	cfg.InitialShape = shape.Galaxy
	cfg.ParticleCount = 1200
	cfg.Thresholds.Pinch = 0.08
	cfg.Sound = true

	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "initial_shape: galaxy")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("initial_shape: Saturn\nsound: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, shape.Saturn, cfg.InitialShape)
	assert.True(t, cfg.Sound)
	assert.Equal(t, 60, cfg.DisplayFPS)
	assert.Equal(t, 0.3, cfg.Thresholds.OpenPalm)
}

func TestLoad_UnknownShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("initial_shape: cube\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shape.ErrUnknownKind))
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero particles", "particle_count: -5\n"},
		{"fps too high", "display_fps: 1000\n"},
		{"negative motion", "motion_threshold: -1\n"},
		{"bad threshold", "thresholds:\n  pinch: -0.1\n"},
		{"empty addr", "addr: \"\"\n"},
		{"not yaml", "addr: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
