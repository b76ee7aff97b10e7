//go:build gstreamer

package gstcam

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

var gstInitOnce sync.Once

func gstInit() {
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
}

// pipelineElements holds the pipeline and the elements we keep handles to
// after construction.
type pipelineElements struct {
	pipeline *gst.Pipeline
	appsink  *app.Sink
}

// newPipeline builds the capture pipeline:
//
//	<source> → videoconvert → videoscale → videorate → capsfilter → appsink
//
// The source is the platform camera element; the capsfilter locks BGRA at
// the requested geometry and framerate so the appsink only ever sees one
// format. The pipeline is left in NULL state.
func newPipeline(device string, cfg camera.Config) (*pipelineElements, error) {
	gstInit()

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create pipeline: %w", err)
	}

	source, err := newSourceElement(runtime.GOOS, device)
	if err != nil {
		return nil, err
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create videoconvert: %w", err)
	}

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)
	videorate.SetProperty("skip-to-first", true)

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(buildCaps(cfg.Width, cfg.Height, cfg.FPS)))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("gstcam: create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 1)
	appsink.SetProperty("drop", true)

	pipeline.AddMany(source, converter, scaler, videorate, capsfilter, appsink.Element)
	if err := gst.ElementLinkMany(source, converter, scaler, videorate, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("gstcam: link pipeline elements: %w", err)
	}

	return &pipelineElements{
		pipeline: pipeline,
		appsink:  appsink,
	}, nil
}

// newSourceElement creates the platform camera source. Camera sources have
// static pads, so no pad-added wiring is needed.
func newSourceElement(goos, device string) (*gst.Element, error) {
	var name string
	switch goos {
	case "linux":
		name = "v4l2src"
	case "darwin":
		name = "avfvideosrc"
	case "windows":
		name = "ksvideosrc"
	default:
		name = "autovideosrc"
	}

	source, err := gst.NewElement(name)
	if err != nil {
		return nil, camera.Unsupported("gstreamer source element %q unavailable: %v", name, err)
	}

	switch name {
	case "v4l2src":
		if path := linuxDevicePath(device); path != "" {
			source.SetProperty("device", path)
		}
	case "avfvideosrc", "ksvideosrc":
		if idx, ok := deviceIndex(device); ok {
			source.SetProperty("device-index", idx)
		}
	}

	return source, nil
}

func linuxDevicePath(device string) string {
	device = strings.TrimPrefix(device, "file:")
	if device == "" {
		return "/dev/video0"
	}
	if isAllDigits(device) {
		return "/dev/video" + device
	}
	return device
}

func deviceIndex(device string) (int, bool) {
	device = strings.TrimPrefix(device, "file:/dev/video")
	if !isAllDigits(device) {
		return 0, false
	}
	idx := 0
	for _, r := range device {
		idx = idx*10 + int(r-'0')
	}
	return idx, true
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

// buildCaps builds the format lock for the appsink. GStreamer framerates
// are rationals: sub-1 Hz rates become 1/N, fractional rates like 29.97 are
// carried at millihertz precision (29970/1000) rather than truncated.
func buildCaps(width, height int, fps float64) string {
	numerator, denominator := 1, 1
	switch {
	case fps < 1.0:
		denominator = int(math.Round(1.0 / fps))
	case fps == math.Trunc(fps):
		numerator = int(fps)
	default:
		numerator = int(math.Round(fps * 1000))
		denominator = 1000
	}
	return fmt.Sprintf(
		"video/x-raw,format=BGRA,width=%d,height=%d,framerate=%d/%d",
		width, height, numerator, denominator,
	)
}
