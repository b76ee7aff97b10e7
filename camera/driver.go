package camera

import (
	"log/slog"
	"sort"
	"sync"
)

// Driver is the contract every capture backend satisfies.
//
// Lifecycle: Created → Running (Start success) → Stopped (Stop, terminal).
// A failed Start leaves the driver in a terminal failed state; no frames
// ever flow. A failure while running is reported through an EventError, not
// a state change: the driver keeps running until stopped.
//
// Implementations must guarantee:
//   - Start() begins asynchronous frame production through the Feed handed
//     to the driver at construction. Calling Start twice is an idempotent
//     no-op.
//   - Stop() is idempotent: any number of calls, including before Start,
//     never errors and never double-frees.
//   - Backend() has no side effects.
type Driver interface {
	// Backend returns the driver's static identity tag.
	Backend() Backend

	// Start begins capture. On success frames flow asynchronously.
	Start() error

	// Stop ends capture and releases backend-native resources.
	Stop() error
}

// OpenFunc constructs a backend driver. The device selector is
// backend-interpreted (empty = platform default). The Feed is the driver's
// only channel back into the pipeline: frames via SubmitFrame, non-fatal
// conditions via Warn, failures via Fail.
type OpenFunc func(device string, cfg Config, feed *Feed) (Driver, error)

// Driver precedence classes, highest wins at Open time.
const (
	// PrecedenceFramework: native capture frameworks (GStreamer, AVFoundation).
	PrecedenceFramework = 30
	// PrecedenceKernelDevice: direct kernel device access (V4L2).
	PrecedenceKernelDevice = 20
	// PrecedenceSubprocess: external decoder processes (ffmpeg).
	PrecedenceSubprocess = 10
)

type driverRegistration struct {
	backend    Backend
	precedence int
	open       OpenFunc
}

var (
	driversMu sync.RWMutex
	drivers   []driverRegistration
)

// RegisterDriver makes a backend available to Open. Driver packages call it
// from init(), so importing a driver package (usually via the module root
// package's build-tagged files) is what compiles a backend in.
//
// Re-registering a backend replaces the previous registration.
func RegisterDriver(backend Backend, precedence int, open OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()

	for i := range drivers {
		if drivers[i].backend == backend {
			drivers[i] = driverRegistration{backend, precedence, open}
			return
		}
	}
	drivers = append(drivers, driverRegistration{backend, precedence, open})
	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].precedence > drivers[j].precedence
	})
}

// selectDriver returns the highest-precedence registered backend.
func selectDriver() (driverRegistration, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	if len(drivers) == 0 {
		return driverRegistration{}, false
	}
	return drivers[0], true
}

// RegisteredBackends lists the compiled-in backends in precedence order.
func RegisteredBackends() []Backend {
	driversMu.RLock()
	defer driversMu.RUnlock()

	out := make([]Backend, len(drivers))
	for i, d := range drivers {
		out[i] = d.backend
	}
	return out
}

// Feed is the submission handle a driver writes into. It is safe for
// concurrent use from any number of producer goroutines (one per driver in
// practice, but more are tolerated).
type Feed struct {
	backend    Backend
	dispatcher *Dispatcher
	events     chan<- Event
}

// SubmitFrame hands one frame to the dispatcher.
//
// Semantics (load-shedding, never blocking):
//   - invalid frame → dropped, Warning event
//   - queue full → dropped, FrameDropped event
//   - pipeline stopped → dropped, Error event with ErrClosed
//
// The call returns in O(1) regardless of queue fullness. The frame's Data
// must not be modified after this call.
func (f *Feed) SubmitFrame(frame *Frame) {
	f.dispatcher.Submit(frame)
}

// Warn reports a non-fatal backend condition (e.g. a capture parameter that
// could not be honored).
func (f *Feed) Warn(message string) {
	slog.Warn("camera: backend warning", "backend", f.backend.String(), "message", message)
	emitEvent(f.events, Event{Kind: EventWarning, Backend: f.backend, Message: message})
}

// Fail reports a backend failure. The pipeline keeps running; the driver
// stays responsible for its own resources until Stop.
func (f *Feed) Fail(err error) {
	slog.Error("camera: backend error", "backend", f.backend.String(), "error", err)
	emitEvent(f.events, Event{Kind: EventError, Backend: f.backend, Err: err})
}

// Backend returns the tag of the driver this feed belongs to.
func (f *Feed) Backend() Backend { return f.backend }
