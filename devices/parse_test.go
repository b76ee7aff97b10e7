package devices

import "testing"

const avfoundationListing = `[AVFoundation indev @ 0x7f8] AVFoundation video devices:
[AVFoundation indev @ 0x7f8] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7f8] [1] Logitech USB Camera
[AVFoundation indev @ 0x7f8] [2] Capture screen 0
[AVFoundation indev @ 0x7f8] AVFoundation audio devices:
[AVFoundation indev @ 0x7f8] [0] MacBook Pro Microphone
: Input/output error`

func TestParseAVFoundationDevices(t *testing.T) {
	got := parseAVFoundationDevices(avfoundationListing)
	if len(got) != 3 {
		t.Fatalf("parsed %d devices, want 3: %+v", len(got), got)
	}
	if got[0].ID != "0" || got[0].Name != "FaceTime HD Camera" || got[0].IsUSB {
		t.Errorf("device 0 = %+v", got[0])
	}
	if got[1].ID != "1" || !got[1].IsUSB {
		t.Errorf("device 1 = %+v, want USB", got[1])
	}
	// Audio devices never leak into the video list.
	for _, d := range got {
		if d.Name == "MacBook Pro Microphone" {
			t.Errorf("audio device parsed as video: %+v", d)
		}
	}
}

const dshowListing = `[dshow @ 000001] DirectShow video devices (some may be both video and audio devices)
[dshow @ 000001]  "Integrated Camera"
[dshow @ 000001]     Alternative name "@device_pnp_\\?\usb#vid_04f2&pid_b604"
[dshow @ 000001]  "OBS Virtual Camera"
[dshow @ 000001]     Alternative name "@device_sw_{860BB310}"
[dshow @ 000001] DirectShow audio devices
[dshow @ 000001]  "Microphone Array"
dummy: Immediate exit requested`

func TestParseDShowDevices(t *testing.T) {
	got := parseDShowDevices(dshowListing)
	if len(got) != 2 {
		t.Fatalf("parsed %d devices, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Integrated Camera" || !got[0].IsUSB {
		t.Errorf("device 0 = %+v, want USB via alternative name", got[0])
	}
	if got[1].Name != "OBS Virtual Camera" || got[1].IsUSB {
		t.Errorf("device 1 = %+v", got[1])
	}
}

func TestSelectPrefersUSB(t *testing.T) {
	list := []Device{
		{ID: "0", Name: "Built-in Camera"},
		{ID: "1", Name: "External Webcam", IsUSB: true},
	}
	got, err := Select(list, "")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got.ID != "1" {
		t.Errorf("selected %+v, want the USB device", got)
	}
}

func TestSelectFallsBackToFirst(t *testing.T) {
	list := []Device{
		{ID: "0", Name: "Built-in Camera"},
		{ID: "1", Name: "Another Built-in"},
	}
	got, err := Select(list, "")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got.ID != "0" {
		t.Errorf("selected %+v, want the first device", got)
	}
}

func TestSelectExplicitByName(t *testing.T) {
	list := []Device{
		{ID: "0", Name: "Built-in Camera"},
		{ID: "1", Name: "Logitech USB Camera", IsUSB: true},
	}
	got, err := Select(list, "logitech")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got.ID != "1" {
		t.Errorf("selected %+v, want the Logitech device", got)
	}
}

func TestSelectExplicitPassthrough(t *testing.T) {
	// An unmatched selector is handed through so opaque backend strings
	// like pipe URLs still work.
	got, err := Select(nil, "file:/dev/video9")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got.ID != "file:/dev/video9" {
		t.Errorf("selected %+v, want passthrough", got)
	}
}

func TestSelectEmptyList(t *testing.T) {
	if _, err := Select(nil, ""); err == nil {
		t.Error("Select with no devices and no selector must fail")
	}
}
