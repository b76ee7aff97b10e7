//go:build cgo

// C ABI for the capture pipeline, built with -buildmode=c-shared or
// c-archive:
//
//	go build -buildmode=c-shared -o libasimov_camera.so ./capi
//
// Handles returned by asimov_camera_open are opaque; pass them back to
// start/stop/free/get_session. Frame callbacks fire on an internal
// dispatcher goroutine and their data pointer is valid only inside the
// callback.
package main

/*
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"errors"
	"unsafe"

	gopointer "github.com/mattn/go-pointer"

	asimovcamera "github.com/asimov-modules/asimov-camera-module"
	"github.com/asimov-modules/asimov-camera-module/camera"
)

// Error codes returned over the ABI.
const (
	codeOK              = 0
	codeNoDriver        = 1
	codeNoCamera        = 2
	codeDriverError     = 3
	codeInvalidArgument = 4
)

// session ties a camera to the C callback registered at open time. It lives
// behind the opaque handle until asimov_camera_free.
type session struct {
	cam      *camera.Camera
	cb       C.asimov_camera_frame_cb
	userData unsafe.Pointer
}

func errToCode(err error) C.int32_t {
	var invalidCfg *camera.InvalidConfigError
	switch {
	case err == nil:
		return codeOK
	case errors.Is(err, camera.ErrNoDriver):
		return codeNoDriver
	case errors.Is(err, camera.ErrNoCamera):
		return codeNoCamera
	case errors.As(err, &invalidCfg):
		return codeInvalidArgument
	default:
		return codeDriverError
	}
}

func restoreSession(handle unsafe.Pointer) (*session, bool) {
	if handle == nil {
		return nil, false
	}
	s, ok := gopointer.Restore(handle).(*session)
	return s, ok && s != nil
}

//export asimov_camera_open
func asimov_camera_open(cDevice *C.char, width, height C.int32_t, fps C.double,
	cb C.asimov_camera_frame_cb, userData unsafe.Pointer, outHandle *unsafe.Pointer) C.int32_t {

	if outHandle == nil {
		return codeInvalidArgument
	}
	*outHandle = nil

	device := ""
	if cDevice != nil {
		device = C.GoString(cDevice)
	}

	cfg := camera.NewConfig().
		WithSize(int(width), int(height)).
		WithFPS(float64(fps))

	cam, err := asimovcamera.Open(device, cfg)
	if err != nil {
		return errToCode(err)
	}

	s := &session{cam: cam, cb: cb, userData: userData}
	if cb != nil {
		cam.AddSink(s.deliver)
	}

	*outHandle = gopointer.Save(s)
	return codeOK
}

//export asimov_camera_start
func asimov_camera_start(handle unsafe.Pointer) C.int32_t {
	s, ok := restoreSession(handle)
	if !ok {
		return codeInvalidArgument
	}
	return errToCode(s.cam.Start())
}

//export asimov_camera_stop
func asimov_camera_stop(handle unsafe.Pointer) C.int32_t {
	s, ok := restoreSession(handle)
	if !ok {
		return codeInvalidArgument
	}
	return errToCode(s.cam.Stop())
}

//export asimov_camera_free
func asimov_camera_free(handle unsafe.Pointer) {
	s, ok := restoreSession(handle)
	if !ok {
		return
	}
	_ = s.cam.Close()
	gopointer.Unref(handle)
}

//export asimov_camera_get_session
func asimov_camera_get_session(handle unsafe.Pointer) unsafe.Pointer {
	s, ok := restoreSession(handle)
	if !ok {
		return nil
	}
	return unsafe.Pointer(nativeSession(s.cam))
}

// deliver marshals one frame across the ABI. The C bridge builds the frame
// struct on its own stack so no C-visible allocation holds Go memory.
func (s *session) deliver(frame *camera.Frame) {
	if len(frame.Data) == 0 {
		return
	}
	C.asimov_camera_invoke_cb(
		s.cb,
		(*C.uint8_t)(unsafe.Pointer(&frame.Data[0])),
		C.size_t(len(frame.Data)),
		C.int32_t(frame.Width),
		C.int32_t(frame.Height),
		C.int32_t(frame.Stride),
		C.int32_t(frame.PixelFormat),
		C.int64_t(frame.TimestampNS),
		C.uint64_t(frame.Seq),
		s.userData,
	)
}

func main() {}
