// Package camera implements a driver-agnostic camera capture pipeline.
//
// Philosophy: "Drop frames, never queue. Latency > Completeness."
//
// The package owns the concurrency substrate that every capture backend
// plugs into:
//
//   - Frame / PixelFormat: immutable frame values shared by reference
//   - Config: fluent capture request (device, size, fps, buffering)
//   - Driver: the contract a backend must satisfy
//   - Dispatcher: bounded queue + one worker goroutine fanning frames
//     out to registered sinks
//   - Camera: one Driver bound to one Dispatcher
//   - Open: backend selection and wiring
//
// Frame flow:
//
//	backend (driver goroutine / OS callback)
//	      │ Feed.SubmitFrame (non-blocking, validates, drops on full queue)
//	      ▼
//	bounded channel (Config.BufferFrames)
//	      │ dispatcher worker (single goroutine, FIFO)
//	      ▼
//	sinks (invoked synchronously, in registration order)
//
// Backpressure is load-shedding: a submission never blocks the capture
// thread. When the queue is full the frame is dropped and a FrameDropped
// event is emitted. Events are observational only; losing one never
// affects frame delivery.
//
// Backends live in separate packages (drivers/...) and register themselves
// with RegisterDriver from an init function, so a build selects its backend
// by importing exactly one driver package (the module root package does this
// per platform and build tag).
package camera
