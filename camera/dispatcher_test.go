package camera

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func validTestFrame() *Frame {
	return &Frame{
		Data:        make([]byte, 24),
		Width:       4,
		Height:      2,
		Stride:      12,
		PixelFormat: FormatRGB8,
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// drainEvents empties the buffered event channel and counts kinds.
func drainEvents(events chan Event) map[EventKind]int {
	counts := make(map[EventKind]int)
	for {
		select {
		case ev := <-events:
			counts[ev.Kind]++
		default:
			return counts
		}
	}
}

func TestDispatcherFanOut(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(4, BackendFFmpeg, events)
	defer d.Stop()

	var mu sync.Mutex
	var first, second []*Frame
	d.AddSink(func(f *Frame) {
		mu.Lock()
		first = append(first, f)
		mu.Unlock()
	})
	d.AddSink(func(f *Frame) {
		mu.Lock()
		second = append(second, f)
		mu.Unlock()
	})

	for i := 0; i < 3; i++ {
		d.Submit(validTestFrame())
	}
	waitFor(t, "3 dispatched frames", func() bool {
		return d.Stats().Dispatched == 3
	})

	mu.Lock()
	defer mu.Unlock()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("sink deliveries = %d/%d, want 3/3", len(first), len(second))
	}
	// Both sinks observe the same frame value, in submission order.
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("delivery %d: sinks got different frame pointers", i)
		}
		if first[i].Seq != uint64(i+1) {
			t.Errorf("delivery %d: seq = %d, want %d", i, first[i].Seq, i+1)
		}
		if first[i].TraceID == "" {
			t.Errorf("delivery %d: missing trace id", i)
		}
	}
}

func TestDispatcherOverflowDropsNewest(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(2, BackendFFmpeg, events)
	defer d.Stop()

	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	var delivered atomic.Int32
	d.AddSink(func(*Frame) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-gate
		delivered.Add(1)
	})

	// Occupy the worker so the queue fills deterministically.
	d.Submit(validTestFrame())
	<-entered

	// Capacity 2: two of these queue, three are shed.
	for i := 0; i < 5; i++ {
		d.Submit(validTestFrame())
	}

	stats := d.Stats()
	if stats.Dropped != 3 {
		t.Errorf("dropped = %d, want 3", stats.Dropped)
	}

	close(gate)
	waitFor(t, "all queued frames delivered", func() bool {
		return delivered.Load() == 3
	})

	counts := drainEvents(events)
	if counts[EventFrameDropped] != 3 {
		t.Errorf("frame_dropped events = %d, want 3", counts[EventFrameDropped])
	}
	if counts[EventError] != 0 {
		t.Errorf("error events = %d, want 0", counts[EventError])
	}
}

func TestSubmitNeverBlocks(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(1, BackendFFmpeg, events)
	defer d.Stop()

	gate := make(chan struct{})
	defer close(gate)
	entered := make(chan struct{}, 1)
	d.AddSink(func(*Frame) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-gate
	})

	d.Submit(validTestFrame())
	<-entered
	d.Submit(validTestFrame()) // fills the queue

	// Every further submit must shed in O(1), no sink involvement.
	start := time.Now()
	for i := 0; i < 1000; i++ {
		d.Submit(validTestFrame())
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("1000 submits against a full queue took %v", elapsed)
	}
}

func TestSubmitRejectsInvalidFrames(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(2, BackendFFmpeg, events)
	defer d.Stop()

	d.Submit(nil)
	d.Submit(&Frame{Width: 4, Height: 2}) // no pixel format

	stats := d.Stats()
	if stats.Rejected != 2 {
		t.Errorf("rejected = %d, want 2", stats.Rejected)
	}
	if stats.Dispatched != 0 {
		t.Errorf("dispatched = %d, want 0", stats.Dispatched)
	}

	counts := drainEvents(events)
	if counts[EventWarning] != 1 {
		t.Errorf("warning events = %d, want 1 (nil frame is silent)", counts[EventWarning])
	}
}

func TestSubmitAfterStop(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(2, BackendFFmpeg, events)
	d.Stop()
	drainEvents(events)

	d.Submit(validTestFrame())

	counts := drainEvents(events)
	if counts[EventError] != 1 {
		t.Errorf("error events after stopped submit = %d, want 1", counts[EventError])
	}
}

func TestSubmitNilAfterStop(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(2, BackendFFmpeg, events)
	d.Stop()
	drainEvents(events)

	// A nil frame is a rejection, not a pipeline-closed error.
	d.Submit(nil)

	counts := drainEvents(events)
	if counts[EventError] != 0 {
		t.Errorf("error events for nil submit = %d, want 0", counts[EventError])
	}
	if got := d.Stats().Rejected; got != 1 {
		t.Errorf("rejected = %d, want 1", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(2, BackendFFmpeg, events)

	d.Stop()
	d.Stop()
	d.Stop()

	counts := drainEvents(events)
	if counts[EventStarted] != 1 || counts[EventStopped] != 1 {
		t.Errorf("lifecycle events = %d started / %d stopped, want 1/1",
			counts[EventStarted], counts[EventStopped])
	}
}

func TestStopConcurrent(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(2, BackendFFmpeg, events)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Stop()
		}()
	}
	wg.Wait()

	counts := drainEvents(events)
	if counts[EventStopped] != 1 {
		t.Errorf("stopped events = %d, want exactly 1", counts[EventStopped])
	}
}

func TestAddSinkWhileDispatching(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(8, BackendFFmpeg, events)
	defer d.Stop()

	var count atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			d.AddSink(func(*Frame) { count.Add(1) })
		}
	}()
	for i := 0; i < 50; i++ {
		d.Submit(validTestFrame())
	}
	<-done

	waitFor(t, "queue drained", func() bool {
		s := d.Stats()
		return s.Dispatched+s.Dropped == 50
	})
	if got := d.Stats().Sinks; got != 50 {
		t.Errorf("sinks = %d, want 50", got)
	}
}

func TestSubmitPreservesTraceID(t *testing.T) {
	events := make(chan Event, eventBufferSize)
	d := NewDispatcher(2, BackendFFmpeg, events)
	defer d.Stop()

	var mu sync.Mutex
	var got string
	d.AddSink(func(f *Frame) {
		mu.Lock()
		got = f.TraceID
		mu.Unlock()
	})

	f := validTestFrame()
	f.TraceID = "upstream-trace"
	d.Submit(f)

	waitFor(t, "frame delivered", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != ""
	})
	mu.Lock()
	defer mu.Unlock()
	if got != "upstream-trace" {
		t.Errorf("trace id = %q, want the producer's value kept", got)
	}
}
