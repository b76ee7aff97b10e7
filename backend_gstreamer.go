//go:build gstreamer

package asimovcamera

// The GStreamer driver outranks everything else when compiled in.
import _ "github.com/asimov-modules/asimov-camera-module/drivers/gstcam"
