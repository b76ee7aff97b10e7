// Package cli holds the shared plumbing of the command-line tools: exit
// code mapping, error printing, and logger setup.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/asimov-modules/asimov-camera-module/camera"
)

// sysexits(3) codes, so shell callers can tell failure classes apart.
const (
	ExitOK          = 0
	ExitUsage       = 64 // bad request: unknown camera, invalid config values
	ExitUnavailable = 69 // no backend compiled in or backend unsupported here
	ExitSoftware    = 70 // backend failure or internal error
	ExitConfig      = 78 // camera opened but never configured
)

// ExitCode maps an error from the capture pipeline to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var unsupported *camera.UnsupportedError
	var invalidCfg *camera.InvalidConfigError

	switch {
	case errors.Is(err, camera.ErrNoDriver), errors.As(err, &unsupported):
		return ExitUnavailable
	case errors.Is(err, camera.ErrNoCamera), errors.As(err, &invalidCfg):
		return ExitUsage
	case errors.Is(err, camera.ErrNotConfigured):
		return ExitConfig
	default:
		return ExitSoftware
	}
}

// PrintError writes err and its cause chain to stderr, one cause per line,
// the way the asimov tools report failures.
func PrintError(tool string, err error) {
	fmt.Fprintf(os.Stderr, "%s: error: %v\n", tool, err)
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(os.Stderr, "  caused by: %v\n", cause)
	}
}

// SetupLogging installs the process-wide slog handler. Verbosity counts -v
// flags: 0 warns only, 1 adds info, 2 and up adds debug.
func SetupLogging(verbosity int) {
	level := slog.LevelWarn
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
