package camera

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default capture parameters, applied by NewConfig.
const (
	DefaultWidth        = 640
	DefaultHeight       = 480
	DefaultFPS          = 30.0
	DefaultBufferFrames = 2
)

// Config is a capture request. Build it fluently and treat it as immutable
// once passed to Open:
//
//	cfg := camera.NewConfig().
//	    WithDevice("/dev/video2").
//	    WithSize(1280, 720).
//	    WithFPS(15)
//
// All With* methods take and return Config by value, so a Config can be
// shared and re-derived safely.
type Config struct {
	// Device is an opaque device selector, interpreted by the backend.
	// Empty means the platform default device.
	Device string `yaml:"device"`

	// Width and Height of the requested capture, in pixels. Best effort:
	// backends may fall back and emit a Warning event.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// FPS is the requested frame rate. Best effort.
	FPS float64 `yaml:"fps"`

	// PixelFormat is an optional output format hint. FormatUnknown means
	// the backend picks.
	PixelFormat PixelFormat `yaml:"-"`

	// BufferFrames is the dispatcher queue capacity. Minimum 1.
	BufferFrames int `yaml:"buffer_frames"`

	// Diagnostics enables verbose backend logging.
	Diagnostics bool `yaml:"diagnostics"`
}

// NewConfig returns a Config populated with defaults:
// 640×480 at 30 fps, 2-frame buffer, diagnostics off.
func NewConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		FPS:          DefaultFPS,
		BufferFrames: DefaultBufferFrames,
	}
}

// WithDevice sets the backend-interpreted device selector.
func (c Config) WithDevice(device string) Config {
	c.Device = device
	return c
}

// WithSize sets the requested capture dimensions.
func (c Config) WithSize(width, height int) Config {
	c.Width = width
	c.Height = height
	return c
}

// WithFPS sets the requested frame rate.
func (c Config) WithFPS(fps float64) Config {
	c.FPS = fps
	return c
}

// WithPixelFormat sets the output pixel format hint.
func (c Config) WithPixelFormat(format PixelFormat) Config {
	c.PixelFormat = format
	return c
}

// WithBufferFrames sets the dispatcher queue capacity. Values below 1 are
// clamped to 1.
func (c Config) WithBufferFrames(n int) Config {
	if n < 1 {
		n = 1
	}
	c.BufferFrames = n
	return c
}

// WithDiagnostics toggles verbose backend logging.
func (c Config) WithDiagnostics(on bool) Config {
	c.Diagnostics = on
	return c
}

// Validate fail-fasts on requests no backend could honor.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return &InvalidConfigError{Reason: fmt.Sprintf("invalid size %dx%d", c.Width, c.Height)}
	}
	if c.FPS <= 0 {
		return &InvalidConfigError{Reason: fmt.Sprintf("invalid fps %.3f", c.FPS)}
	}
	if c.BufferFrames < 1 {
		return &InvalidConfigError{Reason: fmt.Sprintf("buffer_frames %d below minimum 1", c.BufferFrames)}
	}
	return nil
}

// LoadConfig reads a YAML capture config. Missing fields keep their
// defaults, so a file may set only what it cares about:
//
//	device: /dev/video2
//	width: 1280
//	height: 720
//	fps: 15
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("camera: read config: %w", err)
	}
	cfg := NewConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, &InvalidConfigError{Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	if cfg.BufferFrames < 1 {
		cfg.BufferFrames = 1
	}
	return cfg, nil
}
