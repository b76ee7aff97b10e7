//go:build linux

package devices

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/vladimirvivien/go4vl/device"
)

// listDevices walks /dev/video* and keeps the nodes that support video
// capture. Many kernel drivers expose metadata-only nodes alongside the
// capture node; the capability check filters those out.
func listDevices() ([]Device, error) {
	paths, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []Device
	for _, path := range paths {
		dev, err := device.Open(path)
		if err != nil {
			continue
		}
		caps := dev.Capability()
		dev.Close()

		if !caps.IsVideoCaptureSupported() {
			continue
		}

		out = append(out, Device{
			ID:    path,
			Name:  caps.Card,
			Path:  path,
			IsUSB: strings.Contains(strings.ToLower(caps.BusInfo), "usb"),
		})
	}
	return out, nil
}
