package ffmpegcam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

// inputFormatFor maps an OS to the ffmpeg capture demuxer. Empty means the
// subprocess backend cannot capture on that OS.
func inputFormatFor(goos string) string {
	switch goos {
	case "darwin":
		return "avfoundation"
	case "linux":
		return "v4l2"
	case "windows":
		return "dshow"
	default:
		return ""
	}
}

// mapDeviceFor turns an opaque device selector into the string the ffmpeg
// demuxer expects on the given OS.
//
//   - darwin: avfoundation takes a numeric index; "file:/dev/video*"
//     prefixes are stripped, empty selects index 0.
//   - linux: bare digits become /dev/videoN; "file:" prefixes are stripped;
//     empty selects /dev/video0.
//   - windows: dshow takes "video=<name>"; the prefix is added if missing.
func mapDeviceFor(goos, device string) string {
	device = strings.TrimSpace(device)

	switch goos {
	case "darwin":
		device = strings.TrimPrefix(device, "file:/dev/video")
		if device == "" {
			return "0"
		}
		return device

	case "linux":
		if device == "" {
			return "/dev/video0"
		}
		if isAllDigits(device) {
			return "/dev/video" + device
		}
		return strings.TrimPrefix(device, "file:")

	case "windows":
		if device == "" {
			return ""
		}
		if !strings.HasPrefix(device, "video=") {
			return "video=" + device
		}
		return device

	default:
		return device
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// buildArgs assembles the ffmpeg command line: capture from the platform
// demuxer, decode, and write raw rgb24 frames to stdout where the reader
// goroutine slices them apart.
func buildArgs(goos, format, device string, cfg camera.Config) []string {
	fps := strconv.FormatFloat(cfg.FPS, 'f', -1, 64)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", format,
		"-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-framerate", fps,
	}

	if goos == "darwin" {
		// avfoundation refuses some cameras without an explicit input
		// pixel format.
		args = append(args, "-pixel_format", "0rgb")
	}

	args = append(args,
		"-i", device,
		"-vf", "fps="+fps,
		"-pix_fmt", "rgb24",
		"-f", "rawvideo",
		"pipe:1",
	)

	return args
}
