//go:build darwin

package devices

import "os/exec"

// listDevices shells out to ffmpeg's avfoundation device listing. ffmpeg
// exits non-zero after listing, so the exit error is ignored as long as
// there is output to parse.
func listDevices() ([]Device, error) {
	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-f", "avfoundation",
		"-list_devices", "true",
		"-i", "",
	)
	output, err := cmd.CombinedOutput()
	if len(output) == 0 && err != nil {
		return nil, err
	}
	return parseAVFoundationDevices(string(output)), nil
}
