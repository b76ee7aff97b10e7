// asimov-camera-reader captures frames from an attached camera and writes
// them to stdout as NDJSON, one base64-encoded frame per line. External USB
// cameras are preferred over built-ins when no device is given.
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	asimovcamera "github.com/asimov-modules/asimov-camera-module"
	"github.com/asimov-modules/asimov-camera-module/camera"
	"github.com/asimov-modules/asimov-camera-module/devices"
	"github.com/asimov-modules/asimov-camera-module/internal/cli"
)

type options struct {
	device     string
	width      int
	height     int
	fps        float64
	frequency  float64
	debounce   int
	configPath string
	verbosity  int
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:           "asimov-camera-reader",
		Short:         "Stream camera frames to stdout as NDJSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.SetupLogging(opts.verbosity)
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.device, "device", "d", "", "device selector (id, path, or name substring)")
	flags.IntVar(&opts.width, "width", camera.DefaultWidth, "capture width in pixels")
	flags.IntVar(&opts.height, "height", camera.DefaultHeight, "capture height in pixels")
	flags.Float64Var(&opts.fps, "fps", camera.DefaultFPS, "capture frame rate")
	flags.Float64Var(&opts.frequency, "frequency", 0, "max output frames per second (0 = unthrottled)")
	flags.IntVar(&opts.debounce, "debounce", 0, "suppress frames within this perceptual-hash distance of the last emitted frame (0 = off)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML capture config file")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "increase log verbosity")

	if err := cmd.Execute(); err != nil {
		cli.PrintError("asimov-camera-reader", err)
		os.Exit(cli.ExitCode(err))
	}
}

func run(cmd *cobra.Command, opts options) error {
	cfg := camera.NewConfig()
	if opts.configPath != "" {
		loaded, err := camera.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Explicit flags override the config file.
	if cmd.Flags().Changed("width") || cmd.Flags().Changed("height") {
		cfg = cfg.WithSize(opts.width, opts.height)
	}
	if cmd.Flags().Changed("fps") {
		cfg = cfg.WithFPS(opts.fps)
	}
	cfg = cfg.WithDiagnostics(opts.verbosity >= 2)

	selector := opts.device
	if selector == "" {
		selector = cfg.Device
	}

	list, err := devices.List()
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	selected, err := devices.Select(list, selector)
	if err != nil {
		return err
	}

	cam, err := asimovcamera.Open(selected.ID, cfg)
	if err != nil {
		return err
	}
	defer cam.Close()

	filter := newFrameFilter(opts.frequency, opts.debounce)
	enc := json.NewEncoder(os.Stdout)

	// fatal carries the first unrecoverable error; shutdown flips once,
	// whether by signal, write failure, or backend error.
	var (
		fatal    error
		fatalMu  sync.Mutex
		shutdown = make(chan struct{})
		once     sync.Once
	)
	fail := func(err error) {
		fatalMu.Lock()
		if fatal == nil {
			fatal = err
		}
		fatalMu.Unlock()
		once.Do(func() { close(shutdown) })
	}

	cam.AddSink(func(frame *camera.Frame) {
		if !filter.admit(frame, time.Now()) {
			return
		}
		record := frameRecord{
			Seq:         frame.Seq,
			TimestampNS: frame.TimestampNS,
			TraceID:     frame.TraceID,
			Width:       frame.Width,
			Height:      frame.Height,
			Stride:      frame.Stride,
			PixelFormat: frame.PixelFormat.String(),
			Data:        base64.StdEncoding.EncodeToString(frame.Data),
		}
		if err := enc.Encode(record); err != nil {
			// Broken pipe: the consumer went away, stop cleanly.
			fail(nil)
		}
	})

	// The event channel is never closed, so the watcher exits on its own
	// done signal.
	eventsDone := make(chan struct{})
	defer close(eventsDone)
	go func() {
		for {
			select {
			case <-eventsDone:
				return
			case ev := <-cam.Events():
				if ev.Kind == camera.EventError && ev.Err != nil {
					fail(ev.Err)
					return
				}
			}
		}
	}()

	if err := cam.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
	case <-shutdown:
	}

	if err := cam.Stop(); err != nil {
		return err
	}

	fatalMu.Lock()
	defer fatalMu.Unlock()
	return fatal
}
