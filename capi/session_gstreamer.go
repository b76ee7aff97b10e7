//go:build cgo && gstreamer

package main

import (
	"github.com/asimov-modules/asimov-camera-module/camera"
	"github.com/asimov-modules/asimov-camera-module/drivers/gstcam"
)

// nativeSession exposes the GStreamer pipeline pointer for embedders that
// integrate with platform capture sessions.
func nativeSession(cam *camera.Camera) uintptr {
	if d, ok := camera.DriverAs[*gstcam.Driver](cam); ok {
		return d.Session()
	}
	return 0
}
