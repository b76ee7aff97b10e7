package ffmpegcam

import (
	"strings"
	"testing"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

func TestInputFormatFor(t *testing.T) {
	cases := []struct {
		goos string
		want string
	}{
		{"darwin", "avfoundation"},
		{"linux", "v4l2"},
		{"windows", "dshow"},
		{"freebsd", ""},
		{"android", ""},
	}
	for _, c := range cases {
		if got := inputFormatFor(c.goos); got != c.want {
			t.Errorf("inputFormatFor(%q) = %q, want %q", c.goos, got, c.want)
		}
	}
}

func TestMapDeviceForDarwin(t *testing.T) {
	cases := []struct {
		device string
		want   string
	}{
		{"", "0"},
		{"1", "1"},
		{"file:/dev/video0", "0"},
		{"file:/dev/video2", "2"},
	}
	for _, c := range cases {
		if got := mapDeviceFor("darwin", c.device); got != c.want {
			t.Errorf("mapDeviceFor(darwin, %q) = %q, want %q", c.device, got, c.want)
		}
	}
}

func TestMapDeviceForLinux(t *testing.T) {
	cases := []struct {
		device string
		want   string
	}{
		{"", "/dev/video0"},
		{"2", "/dev/video2"},
		{"/dev/video1", "/dev/video1"},
		{"file:/dev/video3", "/dev/video3"},
	}
	for _, c := range cases {
		if got := mapDeviceFor("linux", c.device); got != c.want {
			t.Errorf("mapDeviceFor(linux, %q) = %q, want %q", c.device, got, c.want)
		}
	}
}

func TestMapDeviceForWindows(t *testing.T) {
	cases := []struct {
		device string
		want   string
	}{
		{"Integrated Camera", "video=Integrated Camera"},
		{"video=USB Camera", "video=USB Camera"},
		{"", ""},
	}
	for _, c := range cases {
		if got := mapDeviceFor("windows", c.device); got != c.want {
			t.Errorf("mapDeviceFor(windows, %q) = %q, want %q", c.device, got, c.want)
		}
	}
}

func TestBuildArgs(t *testing.T) {
	cfg := camera.NewConfig().WithSize(640, 480).WithFPS(30)

	args := buildArgs("linux", "v4l2", "/dev/video0", cfg)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-f v4l2",
		"-video_size 640x480",
		"-framerate 30",
		"-i /dev/video0",
		"-vf fps=30",
		"-pix_fmt rgb24",
		"-f rawvideo",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("last arg = %q, want pipe:1", args[len(args)-1])
	}
	if strings.Contains(joined, "0rgb") {
		t.Errorf("linux args should not carry the avfoundation pixel format: %s", joined)
	}
}

func TestBuildArgsDarwinPixelFormat(t *testing.T) {
	cfg := camera.NewConfig().WithSize(1280, 720).WithFPS(15)

	args := buildArgs("darwin", "avfoundation", "0", cfg)
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-pixel_format 0rgb") {
		t.Errorf("darwin args missing input pixel format: %s", joined)
	}
	if !strings.Contains(joined, "-video_size 1280x720") {
		t.Errorf("darwin args missing video size: %s", joined)
	}
}

func TestBuildArgsFractionalFPS(t *testing.T) {
	cfg := camera.NewConfig().WithFPS(7.5)

	args := buildArgs("linux", "v4l2", "/dev/video0", cfg)
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-framerate 7.5") {
		t.Errorf("fractional fps not formatted plainly: %s", joined)
	}
	if strings.Contains(joined, "7.50") {
		t.Errorf("fps carries trailing zeros: %s", joined)
	}
}
