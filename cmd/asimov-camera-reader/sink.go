package main

import (
	"image"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

// frameRecord is one NDJSON output line. Data is standard base64 of the raw
// pixel bytes.
type frameRecord struct {
	Seq         uint64 `json:"seq"`
	TimestampNS int64  `json:"timestamp_ns"`
	TraceID     string `json:"trace_id,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Stride      int    `json:"stride"`
	PixelFormat string `json:"pixel_format"`
	Data        string `json:"data"`
}

// frameFilter decides which frames reach the output. Two independent gates:
// a minimum interval between emissions (--frequency) and a perceptual-hash
// debounce that suppresses near-identical frames (--debounce).
//
// Not safe for concurrent use; the dispatcher delivers to one sink at a
// time.
type frameFilter struct {
	minInterval time.Duration
	threshold   int

	lastEmit time.Time
	lastHash *goimagehash.ImageHash
}

func newFrameFilter(frequency float64, debounce int) *frameFilter {
	f := &frameFilter{threshold: debounce}
	if frequency > 0 {
		f.minInterval = time.Duration(float64(time.Second) / frequency)
	}
	return f
}

// admit reports whether the frame should be emitted and updates filter
// state when it is. Hash failures fail open: a frame we cannot hash is
// emitted rather than silently dropped.
func (f *frameFilter) admit(frame *camera.Frame, now time.Time) bool {
	if f.minInterval > 0 && !f.lastEmit.IsZero() && now.Sub(f.lastEmit) < f.minInterval {
		return false
	}

	if f.threshold > 0 {
		if hash, err := goimagehash.DifferenceHash(frameImage(frame)); err == nil {
			if f.lastHash != nil {
				if dist, err := f.lastHash.Distance(hash); err == nil && dist <= f.threshold {
					return false
				}
			}
			f.lastHash = hash
		}
	}

	f.lastEmit = now
	return true
}

// frameImage wraps the frame pixels in an image.RGBA without copying more
// than necessary. The hash only needs luminance structure, so BGRA channel
// order passing through as RGBA is acceptable.
func frameImage(frame *camera.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))

	switch frame.PixelFormat {
	case camera.FormatRGB8:
		for y := 0; y < frame.Height; y++ {
			src := frame.Data[y*frame.Stride:]
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < frame.Width; x++ {
				dst[x*4+0] = src[x*3+0]
				dst[x*4+1] = src[x*3+1]
				dst[x*4+2] = src[x*3+2]
				dst[x*4+3] = 0xFF
			}
		}
	case camera.FormatBGRA8:
		for y := 0; y < frame.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+frame.Width*4], frame.Data[y*frame.Stride:])
		}
	}

	return img
}
