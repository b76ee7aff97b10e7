package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"no driver", camera.ErrNoDriver, ExitUnavailable},
		{"no driver wrapped", fmt.Errorf("open: %w", camera.ErrNoDriver), ExitUnavailable},
		{"unsupported", camera.Unsupported("no YUYV"), ExitUnavailable},
		{"no camera", camera.ErrNoCamera, ExitUsage},
		{"invalid config", &camera.InvalidConfigError{Reason: "fps"}, ExitUsage},
		{"not configured", camera.ErrNotConfigured, ExitConfig},
		{"driver error", &camera.DriverError{Backend: camera.BackendFFmpeg, Context: "spawn", Err: errors.New("enoent")}, ExitSoftware},
		{"other", errors.New("mystery"), ExitSoftware},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ExitCode(c.err); got != c.want {
				t.Errorf("ExitCode(%v) = %d, want %d", c.err, got, c.want)
			}
		})
	}
}
