// Package config loads and saves the handcloud YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/handcloud/internal/detector"
	"github.com/ayusman/handcloud/internal/gesture"
	"github.com/ayusman/handcloud/internal/shape"
)

// FileName is the config file name inside the data directory.
const FileName = "config.yaml"

// Config is the on-disk configuration. Zero-valued fields in a loaded file
// keep their defaults.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// StaticDir serves the web client. Empty means search the usual places.
	StaticDir string `yaml:"static_dir"`

	CameraID     int     `yaml:"camera_id"`
	MotionThresh float64 `yaml:"motion_threshold"`

	ParticleCount int        `yaml:"particle_count"`
	DisplayFPS    int        `yaml:"display_fps"`
	InitialShape  shape.Kind `yaml:"initial_shape"`

	Thresholds gesture.Thresholds `yaml:"thresholds"`
	Detector   detector.Config    `yaml:"detector"`

	Sound bool `yaml:"sound"`
	Debug bool `yaml:"debug"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Addr:          ":8080",
		CameraID:      0,
		MotionThresh:  1.0,
		ParticleCount: 5000,
		DisplayFPS:    60,
		InitialShape:  shape.Heart,
		Thresholds:    gesture.DefaultThresholds(),
		Detector:      detector.DefaultConfig(),
	}
}

// DataDir returns ~/.handcloud.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".handcloud"), nil
}

// DefaultPath returns the config path inside DataDir.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads path on top of Default. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path, creating the parent directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.ParticleCount <= 0 {
		return fmt.Errorf("particle_count must be positive, got %d", c.ParticleCount)
	}
	if c.DisplayFPS <= 0 || c.DisplayFPS > 240 {
		return fmt.Errorf("display_fps must be in (0, 240], got %d", c.DisplayFPS)
	}
	if c.MotionThresh < 0 {
		return fmt.Errorf("motion_threshold must not be negative, got %v", c.MotionThresh)
	}
	if !c.InitialShape.Valid() {
		return fmt.Errorf("initial_shape: %w: %d", shape.ErrUnknownKind, int(c.InitialShape))
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Detector.MaxHands <= 0 {
		return fmt.Errorf("detector.max_hands must be positive, got %d", c.Detector.MaxHands)
	}
	return nil
}
