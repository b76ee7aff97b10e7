//go:build gstreamer

package gstcam

import "strings"

// errorCategory classifies pipeline bus errors so operators can tell a
// missing device from a format negotiation failure without reading
// GStreamer debug output.
type errorCategory int

const (
	categoryDevice errorCategory = iota
	categoryFormat
	categoryUnknown
)

func (c errorCategory) String() string {
	switch c {
	case categoryDevice:
		return "device"
	case categoryFormat:
		return "format"
	default:
		return "unknown"
	}
}

// classifyError categorizes a bus error by message heuristics. go-gst's
// GError does not expose the error domain, so string matching is all we
// have.
func classifyError(errMsg, debugStr string) errorCategory {
	combined := strings.ToLower(errMsg + " " + debugStr)

	deviceKeywords := []string{
		"device", "busy", "permission", "no such file",
		"not found", "cannot open", "could not open", "in use",
	}
	for _, kw := range deviceKeywords {
		if strings.Contains(combined, kw) {
			return categoryDevice
		}
	}

	formatKeywords := []string{
		"caps", "negotiat", "format", "not-negotiated",
		"no decoder", "missing plugin",
	}
	for _, kw := range formatKeywords {
		if strings.Contains(combined, kw) {
			return categoryFormat
		}
	}

	return categoryUnknown
}
