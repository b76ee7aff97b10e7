// Package asimovcamera is the module root: a thin facade over the camera
// core that compiles in the default capture backend for the current
// platform and build tags (see backend_*.go).
//
// Typical use:
//
//	cam, err := asimovcamera.Open("", camera.NewConfig().WithSize(1280, 720))
//	if err != nil { ... }
//	defer cam.Close()
//
//	cam.AddSink(func(f *camera.Frame) { ... })
//	if err := cam.Start(); err != nil { ... }
//
// Importing this package decides the backend:
//
//   - build tag "gstreamer": the GStreamer native-framework driver
//   - linux (default): the V4L2 kernel-device driver
//   - linux with tag "ffmpeg", darwin, windows: the ffmpeg subprocess driver
//   - anything else: no backend; Open returns camera.ErrNoDriver
//
// Programs wanting a non-default backend skip this package and blank-import
// a driver package next to camera.Open directly.
package asimovcamera

import "github.com/asimov-modules/asimov-camera-module/camera"

// Open opens a capture device with the default backend for this build.
// See camera.Open for the full contract.
func Open(device string, cfg camera.Config) (*camera.Camera, error) {
	return camera.Open(device, cfg)
}
