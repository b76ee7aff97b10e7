//go:build (darwin || windows || (linux && ffmpeg)) && !gstreamer

package asimovcamera

// Subprocess decoder backend: the portable default where no native or
// kernel driver is available, and the Linux fallback under the "ffmpeg"
// build tag.
import _ "github.com/asimov-modules/asimov-camera-module/drivers/ffmpegcam"
