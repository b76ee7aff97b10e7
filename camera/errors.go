package camera

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the dispatch core and every backend. Backends
// map their native error domains onto this taxonomy before anything crosses
// the driver boundary.
var (
	// ErrNoDriver means no capture backend is compiled in for this build.
	ErrNoDriver = errors.New("camera: no capture backend available")

	// ErrNoCamera means no device was found or could be opened.
	ErrNoCamera = errors.New("camera: no camera device found")

	// ErrNotConfigured means a driver was used before required setup.
	ErrNotConfigured = errors.New("camera: driver not configured")

	// ErrClosed means the capture pipeline has been torn down.
	ErrClosed = errors.New("camera: pipeline closed")
)

// UnsupportedError reports a request the backend cannot satisfy
// (e.g. an unconvertible pixel format).
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("camera: unsupported: %s", e.Reason)
}

// InvalidConfigError reports a capture request that fails validation before
// reaching any backend.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("camera: invalid config: %s", e.Reason)
}

// DriverError wraps a backend-native failure with enough context for
// diagnosis. It is the only sanctioned way for backend error domains to
// cross into the core.
type DriverError struct {
	// Backend identifies the driver that failed.
	Backend Backend
	// Context says what the driver was doing, e.g. "spawn ffmpeg".
	Context string
	// Err is the causal backend-native error.
	Err error
}

func (e *DriverError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("camera: %s driver: %s", e.Backend, e.Context)
	}
	return fmt.Sprintf("camera: %s driver: %s: %v", e.Backend, e.Context, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// Unsupported builds an UnsupportedError.
func Unsupported(format string, args ...any) error {
	return &UnsupportedError{Reason: fmt.Sprintf(format, args...)}
}

// Errorf wraps an arbitrary condition into the camera error domain. Used for
// failures that fit no more specific taxonomy member.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("camera: "+format, args...)
}
