// Package logging constructs the shared hclog logger from runtime
// configuration.
package logging

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rawmux/internal/config"
	"github.com/backmassage/rawmux/internal/term"
)

// New builds the root logger. Sub-packages derive named loggers from it via
// Named.
func New(cfg *config.Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "rawmux",
		Level:  Level(cfg.LogLevel),
		Output: os.Stderr,
		Color:  colorOption(cfg.ColorMode),
	})
}

// Level maps a level name to hclog's level, defaulting to Info on unknown
// input.
func Level(name string) hclog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return hclog.Trace
	case "debug":
		return hclog.Debug
	case "warn":
		return hclog.Warn
	case "error":
		return hclog.Error
	case "off":
		return hclog.Off
	default:
		return hclog.Info
	}
}

func colorOption(mode config.ColorMode) hclog.ColorOption {
	if term.Colorize(mode) {
		return hclog.ForceColor
	}
	return hclog.ColorOff
}
