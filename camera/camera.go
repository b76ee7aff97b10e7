package camera

import (
	"log/slog"
	"sync/atomic"
)

// Camera couples one Driver with one Dispatcher and presents the public
// control surface. Create cameras with Open; always Stop (or Close) them,
// since stopping joins the dispatcher worker and releases backend resources.
type Camera struct {
	driver     Driver
	dispatcher *Dispatcher
	events     chan Event
	stopped    atomic.Bool
}

func newCamera(driver Driver, dispatcher *Dispatcher, events chan Event) *Camera {
	return &Camera{
		driver:     driver,
		dispatcher: dispatcher,
		events:     events,
	}
}

// Backend reports which concrete driver this camera runs on.
func (c *Camera) Backend() Backend {
	return c.driver.Backend()
}

// Start begins capture. Frames start flowing asynchronously to the sinks.
// Setup failures (no device, bad config) surface here synchronously; they
// never arrive via the event channel.
func (c *Camera) Start() error {
	if c.stopped.Load() {
		return ErrClosed
	}
	return c.driver.Start()
}

// Stop ends capture: the driver first, then the dispatcher (joining its
// worker goroutine). Idempotent; later calls return nil immediately.
func (c *Camera) Stop() error {
	if !c.stopped.CompareAndSwap(false, true) {
		return nil
	}

	err := c.driver.Stop()
	c.dispatcher.Stop()

	if err != nil {
		slog.Warn("camera: driver stop failed", "backend", c.Backend().String(), "error", err)
	}
	return err
}

// Close is Stop under the name io.Closer expects, so a Camera can sit
// behind a defer like any other resource.
func (c *Camera) Close() error {
	return c.Stop()
}

// AddSink registers a frame callback. Available before or after Start.
func (c *Camera) AddSink(sink Sink) {
	c.dispatcher.AddSink(sink)
}

// Events exposes the receive side of the event channel for polling.
// Draining it is optional and has no effect on frame delivery.
//
// The channel is never closed, not even by Stop; a consumer looping over it
// must select on its own done signal rather than ranging until close.
func (c *Camera) Events() <-chan Event {
	return c.events
}

// Stats returns dispatch counters for this camera.
func (c *Camera) Stats() DispatcherStats {
	return c.dispatcher.Stats()
}

// Driver exposes the underlying driver for capability queries; prefer
// DriverAs for type-safe access.
func (c *Camera) Driver() Driver {
	return c.driver
}

// DriverAs asks the camera's driver whether it is the concrete backend type
// T, returning it only if present. This is the capability-query path for
// backend-specific extensions (e.g. a native preview session); the wrong
// type yields ok=false, never an error.
func DriverAs[T Driver](c *Camera) (T, bool) {
	t, ok := c.driver.(T)
	return t, ok
}
