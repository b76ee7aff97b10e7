//go:build linux

package v4l2cam

import "testing"

func TestYUYVToRGBGray(t *testing.T) {
	// Neutral chroma (128) must pass luma straight through as gray.
	src := []byte{
		0x00, 128, 0xFF, 128, // black pixel, white pixel
		0x80, 128, 0x80, 128, // two mid-gray pixels
	}
	got := yuyvToRGB(src, 2, 2)

	want := []byte{
		0, 0, 0, 255, 255, 255,
		128, 128, 128, 128, 128, 128,
	}
	if len(got) != len(want) {
		t.Fatalf("output length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestYUYVToRGBClamps(t *testing.T) {
	// Max luma with extreme chroma must clamp, never wrap.
	src := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	got := yuyvToRGB(src, 2, 1)

	for i, b := range got {
		if b != 0 && b != 255 && (b < 1 || b > 254) {
			t.Errorf("byte %d = %d out of range", i, b)
		}
	}
	// Red channel saturates high with V at max.
	if got[0] != 255 {
		t.Errorf("red = %d, want 255 (clamped)", got[0])
	}
}

func TestResolvePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/dev/video0"},
		{"3", "/dev/video3"},
		{"/dev/video1", "/dev/video1"},
		{"file:/dev/video2", "/dev/video2"},
	}
	for _, c := range cases {
		if got := resolvePath(c.in); got != c.want {
			t.Errorf("resolvePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
