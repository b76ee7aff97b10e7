package camera

import "log/slog"

// eventBufferSize bounds the event queue. Events beyond this are dropped
// (best-effort observability, never control flow).
const eventBufferSize = 128

// Open selects the highest-precedence compiled-in backend, builds its
// dispatch pipeline and constructs the driver.
//
// Wiring order:
//  1. event channel (capacity eventBufferSize)
//  2. Dispatcher sized by cfg.BufferFrames (spawns the worker)
//  3. backend driver, handed the device selector, the resolved config and
//     the dispatcher's Feed
//
// A driver construction failure tears the half-built dispatcher down (the
// worker is joined, no goroutine leaks) before the error is returned.
//
// With no backend registered, Open returns ErrNoDriver before creating any
// channel or goroutine.
func Open(device string, cfg Config) (*Camera, error) {
	reg, ok := selectDriver()
	if !ok {
		return nil, ErrNoDriver
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if device == "" {
		device = cfg.Device
	}

	events := make(chan Event, eventBufferSize)
	dispatcher := NewDispatcher(cfg.BufferFrames, reg.backend, events)

	driver, err := reg.open(device, cfg, dispatcher.Feed())
	if err != nil {
		dispatcher.Stop()
		return nil, err
	}

	slog.Info("camera: opened",
		"backend", reg.backend.String(),
		"device", device,
		"size", slog.GroupValue(slog.Int("width", cfg.Width), slog.Int("height", cfg.Height)),
		"fps", cfg.FPS,
		"buffer_frames", cfg.BufferFrames,
	)

	return newCamera(driver, dispatcher, events), nil
}
