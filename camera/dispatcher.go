package camera

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Sink receives every dispatched frame. Sinks are invoked synchronously by
// the dispatcher worker, in registration order, all sharing the same frame
// value: treat frame.Data as read-only.
type Sink func(frame *Frame)

// DispatcherStats is a snapshot of dispatch counters.
type DispatcherStats struct {
	// Submitted counts every SubmitFrame call, delivered or not.
	Submitted uint64
	// Dispatched counts frames handed to the sink list.
	Dispatched uint64
	// Dropped counts frames shed because the queue was full.
	Dropped uint64
	// Rejected counts frames refused by validation.
	Rejected uint64
	// Sinks is the current number of registered sinks.
	Sinks int
}

// Dispatcher decouples frame production from consumption: a bounded queue,
// one worker goroutine, and a dynamic sink list.
//
// Goroutine topology:
//   - 1 fixed: the worker (spawned by NewDispatcher, joined by Stop)
//   - N external: producer goroutines owned by the driver, never by us
//
// Thread-safety: all methods are safe for concurrent use.
type Dispatcher struct {
	backend Backend
	frames  chan *Frame
	events  chan<- Event

	// Sink list: read on every dispatch, written rarely.
	sinksMu sync.RWMutex
	sinks   []Sink

	// Lifecycle. done is closed exactly once by Stop; stopped flips first
	// so Submit fails fast without touching the channel.
	stopped atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	// Counters (atomic, read by Stats without locks).
	seq        atomic.Uint64
	submitted  atomic.Uint64
	dispatched atomic.Uint64
	dropped    atomic.Uint64
	rejected   atomic.Uint64
}

// NewDispatcher creates a dispatcher with the given queue capacity
// (values below 1 are clamped to 1) and spawns its worker goroutine.
// The worker emits EventStarted on entry and EventStopped on exit.
func NewDispatcher(capacity int, backend Backend, events chan<- Event) *Dispatcher {
	if capacity < 1 {
		capacity = 1
	}

	d := &Dispatcher{
		backend: backend,
		frames:  make(chan *Frame, capacity),
		events:  events,
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Feed returns the submission handle drivers write into. Any number of
// producers may share it.
func (d *Dispatcher) Feed() *Feed {
	return &Feed{backend: d.backend, dispatcher: d, events: d.events}
}

// AddSink registers a callback for every subsequent frame. Safe to call
// while the worker is active; the new sink observes frames dispatched after
// registration returns.
func (d *Dispatcher) AddSink(sink Sink) {
	if sink == nil {
		return
	}
	d.sinksMu.Lock()
	d.sinks = append(d.sinks, sink)
	d.sinksMu.Unlock()
}

// Submit offers one frame to the queue without ever blocking the caller.
//
//   - pipeline stopped → Error event carrying ErrClosed
//   - frame fails Validate → dropped, Warning event
//   - queue full → dropped, FrameDropped event
//
// On acceptance the frame is stamped with a sequence number and trace ID.
func (d *Dispatcher) Submit(frame *Frame) {
	d.submitted.Add(1)

	// A nil frame is rejected outright, even on a stopped pipeline; it
	// never reaches the event stream.
	if frame == nil {
		d.rejected.Add(1)
		return
	}

	if d.stopped.Load() {
		emitEvent(d.events, Event{Kind: EventError, Backend: d.backend, Err: ErrClosed})
		return
	}
	if err := frame.Validate(); err != nil {
		d.rejected.Add(1)
		slog.Warn("camera: rejecting invalid frame", "backend", d.backend.String(), "error", err)
		emitEvent(d.events, Event{Kind: EventWarning, Backend: d.backend, Message: err.Error()})
		return
	}

	frame.Seq = d.seq.Add(1)
	if frame.TraceID == "" {
		frame.TraceID = uuid.New().String()
	}

	select {
	case d.frames <- frame:
	default:
		// Queue full: shed the newest frame, never the producer's time.
		d.dropped.Add(1)
		emitEvent(d.events, Event{Kind: EventFrameDropped, Backend: d.backend})
		slog.Debug("camera: dropping frame, queue full",
			"backend", d.backend.String(),
			"seq", frame.Seq,
			"trace_id", frame.TraceID,
		)
	}
}

// Stop shuts the worker down and joins it. Idempotent: the second and later
// calls return immediately. After Stop returns the worker goroutine has
// terminated; frames still sitting in the queue are discarded.
func (d *Dispatcher) Stop() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}
	close(d.done)
	d.wg.Wait()
}

// Stats returns a counter snapshot. Non-blocking; values may be slightly
// stale relative to concurrent submissions.
func (d *Dispatcher) Stats() DispatcherStats {
	d.sinksMu.RLock()
	sinks := len(d.sinks)
	d.sinksMu.RUnlock()

	return DispatcherStats{
		Submitted:  d.submitted.Load(),
		Dispatched: d.dispatched.Load(),
		Dropped:    d.dropped.Load(),
		Rejected:   d.rejected.Load(),
		Sinks:      sinks,
	}
}

// run is the worker loop: drain the queue, fan each frame out to every
// sink in registration order, exit when Stop closes done.
//
// Frames from one producer are delivered in submission order (FIFO channel,
// single consumer). A dropped frame is simply a gap in the sequence.
func (d *Dispatcher) run() {
	defer d.wg.Done()

	emitEvent(d.events, Event{Kind: EventStarted, Backend: d.backend})
	slog.Debug("camera: dispatcher started", "backend", d.backend.String())

	defer func() {
		emitEvent(d.events, Event{Kind: EventStopped, Backend: d.backend})
		slog.Debug("camera: dispatcher stopped",
			"backend", d.backend.String(),
			"dispatched", d.dispatched.Load(),
			"dropped", d.dropped.Load(),
		)
	}()

	for {
		select {
		case <-d.done:
			return
		case frame := <-d.frames:
			d.deliver(frame)
		}
	}
}

// deliver invokes every sink with the shared frame. The read lock covers
// only the traversal. A slow sink delays later frames, never a producer;
// the bounded queue and drop policy absorb the backlog.
func (d *Dispatcher) deliver(frame *Frame) {
	d.sinksMu.RLock()
	for _, sink := range d.sinks {
		sink(frame)
	}
	d.sinksMu.RUnlock()
	d.dispatched.Add(1)
}
