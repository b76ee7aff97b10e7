package camera

import "time"

// Backend tags the concrete driver that produced a frame or event.
type Backend int

const (
	// BackendUnknown is the zero value; no real driver carries it.
	BackendUnknown Backend = iota
	// BackendGStreamer is the native capture-framework backend.
	BackendGStreamer
	// BackendV4L2 is the kernel video-device backend (Linux).
	BackendV4L2
	// BackendFFmpeg is the subprocess decoder backend.
	BackendFFmpeg
)

// String returns the short backend name used in logs and events.
func (b Backend) String() string {
	switch b {
	case BackendGStreamer:
		return "gstreamer"
	case BackendV4L2:
		return "v4l2"
	case BackendFFmpeg:
		return "ffmpeg"
	default:
		return "unknown"
	}
}

// EventKind classifies a lifecycle event.
type EventKind int

const (
	// EventStarted is emitted by the dispatcher worker on entry.
	EventStarted EventKind = iota
	// EventStopped is emitted by the dispatcher worker on exit.
	EventStopped
	// EventFrameDropped is emitted once per frame shed by backpressure.
	EventFrameDropped
	// EventWarning carries a non-fatal backend condition.
	EventWarning
	// EventError carries a backend or pipeline failure.
	EventError
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventFrameDropped:
		return "frame_dropped"
	case EventWarning:
		return "warning"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is an observational lifecycle notification. Delivery is best effort:
// events are emitted with a non-blocking send and silently lost when the
// event queue is full. Never use events for control-flow correctness.
type Event struct {
	Kind    EventKind
	Backend Backend
	// Message is set for EventWarning.
	Message string
	// Err is set for EventError.
	Err error
	// Time is when the event was generated.
	Time time.Time
}

// emitEvent performs the non-blocking best-effort send shared by the
// dispatcher and every Feed.
func emitEvent(events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case events <- ev:
	default:
		// Event queue full. Events are observability only; drop it.
	}
}
