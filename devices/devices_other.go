//go:build !linux && !darwin && !windows

package devices

// listDevices has no enumeration source on this platform.
func listDevices() ([]Device, error) {
	return nil, nil
}
