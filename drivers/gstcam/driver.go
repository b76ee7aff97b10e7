//go:build gstreamer

// Package gstcam captures through a GStreamer pipeline ending in an
// appsink. It is the highest-precedence backend and the only one that can
// expose a native capture session to embedders.
//
// The pipeline object is confined to one OS thread: some camera source
// plugins bind to the constructing thread, so all state transitions go
// through a threadbound wrapper.
package gstcam

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/asimov-modules/asimov-camera-module/camera"
	"github.com/asimov-modules/asimov-camera-module/internal/threadbound"
)

func init() {
	camera.RegisterDriver(camera.BackendGStreamer, camera.PrecedenceFramework,
		func(device string, cfg camera.Config, feed *camera.Feed) (camera.Driver, error) {
			return Open(device, cfg, feed)
		})
}

// Driver runs one GStreamer capture pipeline.
type Driver struct {
	cfg  camera.Config
	feed *camera.Feed

	bound   *threadbound.Bound[*pipelineElements]
	session atomic.Uintptr

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped atomic.Bool
}

// Open constructs the pipeline on a dedicated locked thread. The pipeline
// stays in NULL state until Start.
func Open(device string, cfg camera.Config, feed *camera.Feed) (*Driver, error) {
	bound, err := threadbound.New(func() (*pipelineElements, error) {
		return newPipeline(device, cfg)
	})
	if err != nil {
		return nil, &camera.DriverError{
			Backend: camera.BackendGStreamer,
			Context: "build pipeline",
			Err:     err,
		}
	}

	d := &Driver{cfg: cfg, feed: feed, bound: bound}

	// The sample callback fires on a GStreamer streaming thread; it copies
	// buffer contents out before returning because GStreamer recycles them.
	if err := bound.Do(func(e *pipelineElements) error {
		e.appsink.SetCallbacks(&app.SinkCallbacks{
			NewSampleFunc: d.onNewSample,
		})
		d.session.Store(e.pipeline.Native())
		return nil
	}); err != nil {
		bound.Close()
		return nil, &camera.DriverError{
			Backend: camera.BackendGStreamer,
			Context: "install appsink callbacks",
			Err:     err,
		}
	}

	return d, nil
}

// Backend returns the framework tag.
func (d *Driver) Backend() camera.Backend { return camera.BackendGStreamer }

// Session returns the native pipeline pointer, for embedders that need to
// hand the capture session to platform code. Zero after Stop.
func (d *Driver) Session() uintptr {
	if d.stopped.Load() {
		return 0
	}
	return d.session.Load()
}

// Start moves the pipeline to PLAYING and begins bus monitoring. Idempotent
// while running; ErrClosed after Stop.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped.Load() {
		return camera.ErrClosed
	}
	if d.started {
		return nil
	}

	var bus *gst.Bus
	if err := d.bound.Do(func(e *pipelineElements) error {
		if err := e.pipeline.SetState(gst.StatePlaying); err != nil {
			return err
		}
		bus = e.pipeline.GetPipelineBus()
		return nil
	}); err != nil {
		return &camera.DriverError{
			Backend: camera.BackendGStreamer,
			Context: "set pipeline to PLAYING",
			Err:     err,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.started = true

	slog.Info("gstcam: capture started",
		"width", d.cfg.Width,
		"height", d.cfg.Height,
		"fps", d.cfg.FPS,
	)

	d.wg.Add(1)
	go d.monitorBus(ctx, bus)

	return nil
}

// Stop tears the pipeline down to NULL and releases the owning thread.
// Idempotent, safe before Start.
func (d *Driver) Stop() error {
	if !d.stopped.CompareAndSwap(false, true) {
		return nil
	}

	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		d.wg.Wait()
	}

	err := d.bound.Do(func(e *pipelineElements) error {
		return e.pipeline.SetState(gst.StateNull)
	})
	d.bound.Close()
	d.session.Store(0)

	if err != nil {
		slog.Warn("gstcam: pipeline teardown failed", "error", err)
		return &camera.DriverError{
			Backend: camera.BackendGStreamer,
			Context: "set pipeline to NULL",
			Err:     err,
		}
	}

	slog.Info("gstcam: capture stopped")
	return nil
}

// onNewSample pulls one sample, copies its pixels, and submits the frame.
// A corrupted sample skips the frame rather than killing the pipeline.
func (d *Driver) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		slog.Warn("gstcam: failed to pull sample, skipping frame")
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("gstcam: sample has no buffer, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slog.Warn("gstcam: empty buffer received")
		return gst.FlowOK
	}

	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	d.feed.SubmitFrame(&camera.Frame{
		Data:        frameData,
		Width:       d.cfg.Width,
		Height:      d.cfg.Height,
		Stride:      d.cfg.Width * 4,
		PixelFormat: camera.FormatBGRA8,
		TimestampNS: time.Now().UnixNano(),
	})

	return gst.FlowOK
}

// monitorBus polls the pipeline bus. Errors are classified and reported
// through the feed; the pipeline keeps running until Stop, matching the
// driver lifecycle contract.
func (d *Driver) monitorBus(ctx context.Context, bus *gst.Bus) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg := bus.TimedPop(50 * time.Millisecond)
			if msg == nil {
				continue
			}

			switch msg.Type() {
			case gst.MessageEOS:
				slog.Info("gstcam: end of stream")
				d.feed.Fail(&camera.DriverError{
					Backend: camera.BackendGStreamer,
					Context: "pipeline bus",
					Err:     camera.Errorf("end of stream"),
				})
				return

			case gst.MessageError:
				gerr := msg.ParseError()
				category := classifyError(gerr.Error(), gerr.DebugString())
				slog.Error("gstcam: pipeline error",
					"error", gerr.Error(),
					"debug", gerr.DebugString(),
					"category", category.String(),
				)
				d.feed.Fail(&camera.DriverError{
					Backend: camera.BackendGStreamer,
					Context: "pipeline bus [" + category.String() + "]",
					Err:     camera.Errorf("%s", gerr.Error()),
				})

			case gst.MessageWarning:
				d.feed.Warn(msg.String())

			case gst.MessageStateChanged:
				if d.cfg.Diagnostics {
					old, next := msg.ParseStateChanged()
					slog.Debug("gstcam: state changed", "from", old, "to", next)
				}
			}
		}
	}
}
