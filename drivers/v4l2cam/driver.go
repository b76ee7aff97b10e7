//go:build linux

// Package v4l2cam captures directly from a Linux kernel video device via
// the V4L2 streaming API. It asks the device for RGB24; if the device can
// only do YUYV the frames are converted in-process, and anything else is
// rejected as unsupported.
package v4l2cam

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

func init() {
	camera.RegisterDriver(camera.BackendV4L2, camera.PrecedenceKernelDevice,
		func(dev string, cfg camera.Config, feed *camera.Feed) (camera.Driver, error) {
			return Open(dev, cfg, feed)
		})
}

const stopGrace = 3 * time.Second

// Driver streams frames from one open V4L2 device.
type Driver struct {
	path string
	cfg  camera.Config
	feed *camera.Feed

	dev     *device.Device
	width   int
	height  int
	convert bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped atomic.Bool
}

// Open opens the device node and negotiates the capture format. The device
// is held open from here so that format negotiation failures surface at
// open time, not at Start.
func Open(devPath string, cfg camera.Config, feed *camera.Feed) (*Driver, error) {
	path := resolvePath(devPath)

	dev, err := device.Open(path,
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtRGB24,
			Width:       uint32(cfg.Width),
			Height:      uint32(cfg.Height),
		}),
		device.WithFPS(uint32(cfg.FPS)),
	)
	if err != nil {
		return nil, &camera.DriverError{
			Backend: camera.BackendV4L2,
			Context: "open " + path,
			Err:     err,
		}
	}

	negotiated, err := dev.GetPixFormat()
	if err != nil {
		dev.Close()
		return nil, &camera.DriverError{
			Backend: camera.BackendV4L2,
			Context: "query negotiated format",
			Err:     err,
		}
	}

	d := &Driver{
		path:   path,
		cfg:    cfg,
		feed:   feed,
		dev:    dev,
		width:  int(negotiated.Width),
		height: int(negotiated.Height),
	}

	switch negotiated.PixelFormat {
	case v4l2.PixelFmtRGB24:
		// Passthrough.
	case v4l2.PixelFmtYUYV:
		d.convert = true
	default:
		dev.Close()
		return nil, camera.Unsupported("device %s negotiated pixel format 0x%08x, want RGB24 or YUYV",
			path, negotiated.PixelFormat)
	}

	if d.width != cfg.Width || d.height != cfg.Height {
		feed.Warn(fmt.Sprintf("device %s negotiated %dx%d instead of requested %dx%d",
			path, d.width, d.height, cfg.Width, cfg.Height))
	}

	return d, nil
}

// Backend returns the kernel device tag.
func (d *Driver) Backend() camera.Backend { return camera.BackendV4L2 }

// Start begins streaming. Idempotent while running; ErrClosed after Stop.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped.Load() {
		return camera.ErrClosed
	}
	if d.started {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.dev.Start(ctx); err != nil {
		cancel()
		return &camera.DriverError{
			Backend: camera.BackendV4L2,
			Context: "start streaming on " + d.path,
			Err:     err,
		}
	}

	d.cancel = cancel
	d.started = true

	slog.Info("v4l2cam: capture started",
		"device", d.path,
		"width", d.width,
		"height", d.height,
		"fps", d.cfg.FPS,
		"convert_yuyv", d.convert,
	)

	d.wg.Add(1)
	go d.readFrames(ctx)

	return nil
}

// Stop ends streaming and closes the device node. Idempotent, safe before
// Start.
func (d *Driver) Stop() error {
	if !d.stopped.CompareAndSwap(false, true) {
		return nil
	}

	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()

		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(stopGrace):
			slog.Warn("v4l2cam: reader goroutine did not exit within grace period", "device", d.path)
		}
	}

	err := d.dev.Close()
	if err != nil {
		slog.Warn("v4l2cam: device close failed", "device", d.path, "error", err)
		return &camera.DriverError{
			Backend: camera.BackendV4L2,
			Context: "close " + d.path,
			Err:     err,
		}
	}

	slog.Info("v4l2cam: capture stopped", "device", d.path)
	return nil
}

// readFrames drains the device's buffer channel. Each kernel buffer is
// copied (or converted) because the underlying mmap slice is recycled once
// the buffer is requeued.
func (d *Driver) readFrames(ctx context.Context) {
	defer d.wg.Done()

	frames := d.dev.GetOutput()
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-frames:
			if !ok {
				if !d.stopped.Load() {
					d.feed.Fail(&camera.DriverError{
						Backend: camera.BackendV4L2,
						Context: "frame stream closed on " + d.path,
						Err:     camera.ErrClosed,
					})
				}
				return
			}
			d.submit(raw)
		}
	}
}

func (d *Driver) submit(raw []byte) {
	stride := d.width * 3
	want := stride * d.height
	if d.convert {
		want = d.width * 2 * d.height
	}
	if len(raw) < want {
		if d.cfg.Diagnostics {
			slog.Debug("v4l2cam: short buffer skipped", "got", len(raw), "want", want)
		}
		return
	}

	var data []byte
	if d.convert {
		data = yuyvToRGB(raw, d.width, d.height)
	} else {
		data = make([]byte, want)
		copy(data, raw)
	}

	d.feed.SubmitFrame(&camera.Frame{
		Data:        data,
		Width:       d.width,
		Height:      d.height,
		Stride:      stride,
		PixelFormat: camera.FormatRGB8,
		TimestampNS: time.Now().UnixNano(),
	})
}

// resolvePath turns the opaque device selector into a /dev path. Bare
// digits are an index, "file:" prefixes come from URL-style selectors, and
// empty means the first video device.
func resolvePath(device string) string {
	switch {
	case device == "":
		return "/dev/video0"
	case isAllDigits(device):
		return "/dev/video" + device
	case len(device) > 5 && device[:5] == "file:":
		return device[5:]
	default:
		return device
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
