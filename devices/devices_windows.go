//go:build windows

package devices

import "os/exec"

// listDevices shells out to ffmpeg's dshow device listing. ffmpeg exits
// non-zero after listing, so the exit error is ignored as long as there is
// output to parse.
func listDevices() ([]Device, error) {
	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-f", "dshow",
		"-list_devices", "true",
		"-i", "dummy",
	)
	output, err := cmd.CombinedOutput()
	if len(output) == 0 && err != nil {
		return nil, err
	}
	return parseDShowDevices(string(output)), nil
}
