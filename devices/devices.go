// Package devices enumerates attached capture devices and picks one.
// Enumeration is platform-specific: Linux walks the kernel video nodes,
// macOS and Windows ask an ffmpeg binary to list its capture devices.
package devices

import (
	"strings"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

// Device is one attached capture device.
type Device struct {
	// ID is the backend-interpreted selector to pass to Open.
	ID string `json:"id"`
	// Name is the human-readable device name.
	Name string `json:"name"`
	// Path is the device node, where the platform has one.
	Path string `json:"path,omitempty"`
	// IsUSB reports whether the device sits on a USB bus. External webcams
	// rank above built-in cameras during selection.
	IsUSB bool `json:"is_usb"`
}

// List enumerates the attached capture devices.
func List() ([]Device, error) {
	return listDevices()
}

// Select picks a device from list. An explicit selector wins when it
// matches a device ID, path, or name substring (case-insensitive); an
// unmatched selector is passed through untouched so opaque backend strings
// keep working. With no selector, USB devices outrank built-ins, then
// enumeration order decides.
func Select(list []Device, explicit string) (Device, error) {
	if explicit != "" {
		needle := strings.ToLower(explicit)
		for _, d := range list {
			if d.ID == explicit || d.Path == explicit ||
				strings.Contains(strings.ToLower(d.Name), needle) {
				return d, nil
			}
		}
		return Device{ID: explicit, Name: explicit}, nil
	}

	if len(list) == 0 {
		return Device{}, camera.ErrNoCamera
	}
	for _, d := range list {
		if d.IsUSB {
			return d, nil
		}
	}
	return list[0], nil
}
