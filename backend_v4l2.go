//go:build linux && !gstreamer && !ffmpeg

package asimovcamera

// Default Linux backend: direct kernel video-device capture.
import _ "github.com/asimov-modules/asimov-camera-module/drivers/v4l2cam"
