package devices

import (
	"strconv"
	"strings"
)

// ffmpeg prints device listings to stderr and exits non-zero. These parsers
// work on that raw stderr text so they stay testable without a binary.

// parseAVFoundationDevices extracts video devices from
// "ffmpeg -f avfoundation -list_devices true -i ''" output:
//
//	[AVFoundation indev @ 0x...] AVFoundation video devices:
//	[AVFoundation indev @ 0x...] [0] FaceTime HD Camera
//	[AVFoundation indev @ 0x...] [1] USB Camera
//	[AVFoundation indev @ 0x...] AVFoundation audio devices:
//
// Devices after the audio header are ignored. The ID is the numeric index
// avfoundation expects as its input.
func parseAVFoundationDevices(stderr string) []Device {
	var out []Device
	inVideo := false

	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "AVFoundation video devices") {
			inVideo = true
			continue
		}
		if strings.Contains(line, "AVFoundation audio devices") {
			break
		}
		if !inVideo {
			continue
		}

		idx, name, ok := parseIndexedLine(line)
		if !ok {
			continue
		}
		out = append(out, Device{
			ID:    strconv.Itoa(idx),
			Name:  name,
			IsUSB: looksUSB(name),
		})
	}
	return out
}

// parseIndexedLine pulls "[N] Name" out of an ffmpeg log line, skipping the
// leading "[AVFoundation indev @ 0x...]" context bracket.
func parseIndexedLine(line string) (int, string, bool) {
	ctxEnd := strings.Index(line, "]")
	if ctxEnd < 0 {
		return 0, "", false
	}
	rest := strings.TrimSpace(line[ctxEnd+1:])
	if !strings.HasPrefix(rest, "[") {
		return 0, "", false
	}
	end := strings.Index(rest, "]")
	if end < 0 {
		return 0, "", false
	}
	idx, err := strconv.Atoi(rest[1:end])
	if err != nil {
		return 0, "", false
	}
	name := strings.TrimSpace(rest[end+1:])
	if name == "" {
		return 0, "", false
	}
	return idx, name, true
}

// parseDShowDevices extracts video devices from
// "ffmpeg -f dshow -list_devices true -i dummy" output:
//
//	[dshow @ 0x...] DirectShow video devices (some may be both video and audio devices)
//	[dshow @ 0x...]  "Integrated Camera"
//	[dshow @ 0x...]     Alternative name "@device_pnp_\\?\usb#vid..."
//	[dshow @ 0x...] DirectShow audio devices
//
// The quoted friendly name is the ID dshow expects (prefixed "video=" by
// the backend). The alternative-name line reveals the bus.
func parseDShowDevices(stderr string) []Device {
	var out []Device
	inVideo := false

	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "DirectShow video devices") {
			inVideo = true
			continue
		}
		if strings.Contains(line, "DirectShow audio devices") {
			break
		}
		if !inVideo {
			continue
		}

		if strings.Contains(line, "Alternative name") {
			if len(out) > 0 && strings.Contains(strings.ToLower(line), "usb") {
				out[len(out)-1].IsUSB = true
			}
			continue
		}

		name, ok := parseQuotedName(line)
		if !ok {
			continue
		}
		out = append(out, Device{
			ID:    name,
			Name:  name,
			IsUSB: looksUSB(name),
		})
	}
	return out
}

func parseQuotedName(line string) (string, bool) {
	start := strings.Index(line, `"`)
	if start < 0 {
		return "", false
	}
	end := strings.Index(line[start+1:], `"`)
	if end < 0 {
		return "", false
	}
	name := line[start+1 : start+1+end]
	if name == "" {
		return "", false
	}
	return name, true
}

func looksUSB(name string) bool {
	return strings.Contains(strings.ToLower(name), "usb")
}
