// Package threadbound confines a value to a single OS thread. Some native
// capture frameworks (AVFoundation sessions, GStreamer pipelines driven
// through certain plugins) require every call to arrive on the thread that
// created the object; Bound provides that guarantee on top of goroutines.
package threadbound

import (
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("threadbound: closed")

type call[T any] struct {
	fn  func(T) error
	err chan error
}

// Bound owns a value of type T on a locked OS thread. All access goes
// through Do, which runs on that thread. Do and Close are safe to call
// concurrently from any goroutine.
type Bound[T any] struct {
	calls chan call[T]

	// mu orders sends on calls against its close: Do sends under the read
	// lock, Close flips the flag and closes the channel under the write
	// lock. A Do that loses the race gets ErrClosed, never a send panic.
	mu     sync.RWMutex
	closed bool
}

// New starts a locked OS thread, runs construct on it, and returns a Bound
// wrapping the constructed value. If construct fails the thread is released
// and the error returned.
func New[T any](construct func() (T, error)) (*Bound[T], error) {
	b := &Bound[T]{calls: make(chan call[T])}
	errc := make(chan error)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		value, err := construct()
		errc <- err
		if err != nil {
			return
		}

		for c := range b.calls {
			c.err <- c.fn(value)
		}
	}()

	if err := <-errc; err != nil {
		return nil, err
	}
	return b, nil
}

// Do runs fn on the owning thread and returns its error. Calls are
// serialized in arrival order. After Close it returns ErrClosed.
func (b *Bound[T]) Do(fn func(T) error) error {
	c := call[T]{fn: fn, err: make(chan error, 1)}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	b.calls <- c
	b.mu.RUnlock()

	return <-c.err
}

// Close releases the owning thread. Pending Do calls complete first.
// Idempotent; Do after Close returns ErrClosed.
func (b *Bound[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.calls)
}
