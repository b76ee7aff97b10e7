// Package ffmpegcam implements the subprocess decoder capture backend: an
// ffmpeg child process reads the platform camera and writes raw rgb24
// frames to a pipe, which a reader goroutine slices into Frame values.
//
// This is the portable lowest-precedence backend. It works anywhere an
// ffmpeg binary with a capture demuxer exists, at the cost of a process
// boundary on the frame path.
package ffmpegcam

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

func init() {
	camera.RegisterDriver(camera.BackendFFmpeg, camera.PrecedenceSubprocess,
		func(device string, cfg camera.Config, feed *camera.Feed) (camera.Driver, error) {
			return Open(device, cfg, feed)
		})
}

// stopGrace bounds how long Stop waits for the reader goroutines after the
// child has been signalled.
const stopGrace = 3 * time.Second

// Driver runs one ffmpeg child per capture session.
type Driver struct {
	device string
	cfg    camera.Config
	feed   *camera.Feed
	binary string
	format string

	mu      sync.Mutex
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped atomic.Bool
}

// Open locates the ffmpeg binary and resolves the device mapping. The child
// process is not spawned until Start.
func Open(device string, cfg camera.Config, feed *camera.Feed) (*Driver, error) {
	format := inputFormatFor(runtime.GOOS)
	if format == "" {
		return nil, camera.Unsupported("ffmpeg capture has no input format for %s", runtime.GOOS)
	}

	binary, err := findBinary("ffmpeg")
	if err != nil {
		return nil, &camera.DriverError{
			Backend: camera.BackendFFmpeg,
			Context: "locate ffmpeg binary",
			Err:     err,
		}
	}

	return &Driver{
		device: mapDeviceFor(runtime.GOOS, device),
		cfg:    cfg,
		feed:   feed,
		binary: binary,
		format: format,
	}, nil
}

// Backend returns the subprocess decoder tag.
func (d *Driver) Backend() camera.Backend { return camera.BackendFFmpeg }

// Start spawns ffmpeg and begins slicing frames off its stdout. Calling
// Start on a running driver is a no-op; after Stop it reports ErrClosed.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped.Load() {
		return camera.ErrClosed
	}
	if d.started {
		return nil
	}

	args := buildArgs(runtime.GOOS, d.format, d.device, d.cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, d.binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return &camera.DriverError{Backend: camera.BackendFFmpeg, Context: "open stdout pipe", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return &camera.DriverError{Backend: camera.BackendFFmpeg, Context: "open stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return &camera.DriverError{Backend: camera.BackendFFmpeg, Context: "spawn ffmpeg", Err: err}
	}

	d.cmd = cmd
	d.cancel = cancel
	d.started = true

	slog.Info("ffmpegcam: capture started",
		"binary", d.binary,
		"format", d.format,
		"device", d.device,
		"size", d.cfg.Width*d.cfg.Height,
		"fps", d.cfg.FPS,
	)
	if d.cfg.Diagnostics {
		slog.Debug("ffmpegcam: command line", "args", args)
	}

	d.wg.Add(2)
	go d.readFrames(stdout)
	go d.drainStderr(stderr)

	return nil
}

// Stop signals the child, waits briefly for the readers, and reaps the
// process. Idempotent, safe before Start.
func (d *Driver) Stop() error {
	if !d.stopped.CompareAndSwap(false, true) {
		return nil
	}

	d.mu.Lock()
	cancel := d.cancel
	cmd := d.cmd
	d.mu.Unlock()

	if cancel == nil {
		// Never started.
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopGrace):
		slog.Warn("ffmpegcam: reader goroutines did not exit within grace period")
	}

	if cmd != nil {
		// Reap the child; the kill came from the context cancel above.
		_ = cmd.Wait()
	}

	slog.Info("ffmpegcam: capture stopped", "device", d.device)
	return nil
}

// readFrames slices stdout into Width×Height×3 rgb24 frames and submits
// each one. A read error after Stop is the expected pipe teardown; before
// Stop it is a real failure reported through the feed.
func (d *Driver) readFrames(r io.Reader) {
	defer d.wg.Done()

	width, height := d.cfg.Width, d.cfg.Height
	stride := width * 3
	frameSize := stride * height

	for {
		buf := make([]byte, frameSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			if d.stopped.Load() {
				return
			}
			d.feed.Fail(&camera.DriverError{
				Backend: camera.BackendFFmpeg,
				Context: "read frame stream",
				Err:     err,
			})
			return
		}

		d.feed.SubmitFrame(&camera.Frame{
			Data:        buf,
			Width:       width,
			Height:      height,
			Stride:      stride,
			PixelFormat: camera.FormatRGB8,
			TimestampNS: time.Now().UnixNano(),
		})
	}
}

// drainStderr keeps the child from blocking on a full stderr pipe and
// surfaces its complaints. ffmpeg runs with -loglevel error, so anything
// here is worth a Warning event.
func (d *Driver) drainStderr(r io.Reader) {
	defer d.wg.Done()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if d.stopped.Load() {
			slog.Debug("ffmpegcam: stderr during shutdown", "line", line)
			continue
		}
		d.feed.Warn("ffmpeg: " + line)
	}
}

// findBinary locates a binary in PATH, then in per-OS conventional
// install locations.
func findBinary(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	var paths []string
	switch runtime.GOOS {
	case "darwin":
		paths = []string{
			"/opt/homebrew/bin/" + name,
			"/usr/local/bin/" + name,
		}
	case "linux":
		paths = []string{
			"/usr/bin/" + name,
			"/usr/local/bin/" + name,
		}
	case "windows":
		paths = []string{
			`C:\ffmpeg\bin\` + name + ".exe",
			`C:\Program Files\ffmpeg\bin\` + name + ".exe",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", camera.Errorf("%s not found in PATH or common locations", name)
}
