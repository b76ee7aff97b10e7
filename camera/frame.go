package camera

import "fmt"

// PixelFormat identifies the memory layout of a frame's pixel buffer.
//
// The set is closed: every consumer switches over all variants explicitly.
// FormatUnknown is the zero value and only legal as a Config hint meaning
// "no preference"; a Frame carrying it fails validation.
type PixelFormat int

const (
	// FormatUnknown means no pixel format has been set.
	FormatUnknown PixelFormat = iota
	// FormatRGB8 is packed 8-bit RGB, 3 bytes per pixel.
	FormatRGB8
	// FormatBGRA8 is packed 8-bit BGRA, 4 bytes per pixel.
	FormatBGRA8
)

// BytesPerPixel returns the per-pixel byte count, or 0 for FormatUnknown.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB8:
		return 3
	case FormatBGRA8:
		return 4
	case FormatUnknown:
		return 0
	default:
		return 0
	}
}

// String returns a human-readable name for the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB8:
		return "rgb8"
	case FormatBGRA8:
		return "bgra8"
	case FormatUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Frame is one captured image.
//
// IMMUTABILITY CONTRACT:
//   - The producer MUST NOT modify Data after handing the frame to
//     Feed.SubmitFrame.
//   - Sinks MUST treat Data as read-only; the same backing buffer is
//     shared by every sink of a dispatch cycle (zero-copy fan-out).
//
// Seq and TraceID are assigned by the dispatcher at submission time;
// producers leave them zero.
type Frame struct {
	// Data holds the raw pixel bytes. Shared by reference, never copied
	// by the dispatcher.
	Data []byte

	// Width and Height in pixels.
	Width  int
	Height int

	// Stride is the row length in bytes. At least Width×BytesPerPixel;
	// may include padding.
	Stride int

	// PixelFormat describes the layout of Data.
	PixelFormat PixelFormat

	// TimestampNS is the capture timestamp in nanoseconds. 0 means
	// unknown. Monotonic or wall clock, backend-defined best effort.
	TimestampNS int64

	// Seq is a per-dispatcher monotonic sequence number.
	Seq uint64

	// TraceID is a unique identifier for correlating a frame across
	// sinks and logs.
	TraceID string
}

// Validate checks the frame invariant:
//
//	Width > 0, Height > 0
//	Stride ≥ Width × BytesPerPixel
//	len(Data) ≥ Stride × Height
//
// Producers must validate before submission; the dispatcher rejects (drops)
// invalid frames rather than crashing downstream.
func (f *Frame) Validate() error {
	bpp := f.PixelFormat.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("camera: frame has no pixel format")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("camera: frame has invalid dimensions %dx%d", f.Width, f.Height)
	}
	if f.Stride < f.Width*bpp {
		return fmt.Errorf("camera: frame stride %d below row size %d", f.Stride, f.Width*bpp)
	}
	if len(f.Data) < f.Stride*f.Height {
		return fmt.Errorf("camera: frame buffer %d bytes, need at least %d",
			len(f.Data), f.Stride*f.Height)
	}
	return nil
}
