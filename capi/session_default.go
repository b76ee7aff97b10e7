//go:build cgo && !gstreamer

package main

import "github.com/asimov-modules/asimov-camera-module/camera"

// nativeSession: only the GStreamer backend has a native session object to
// hand out.
func nativeSession(*camera.Camera) uintptr { return 0 }
