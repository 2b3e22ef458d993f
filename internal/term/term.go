// Package term resolves whether colored output should be used.
//
// hclog's automatic color mode only checks for a TTY; resolution here also
// honors the NO_COLOR convention (https://no-color.org) and dumb terminals,
// so the logging package asks this package instead.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/rawmux/internal/config"
)

// Colorize reports whether the given mode should produce colored output on
// stderr.
func Colorize(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stderr) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
