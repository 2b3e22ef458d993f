// Package config holds runtime configuration: the ffmpeg and ffprobe
// executable paths and their discovery, plus validated CLI-level settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ToolPaths names the external executables the module shells out to.
type ToolPaths struct {
	FFmpeg  string
	FFprobe string
}

// Tools is the process-wide tool configuration. Commands resolve it once at
// startup; tests overwrite it and call Reset when done.
var Tools = DefaultTools()

// DefaultTools returns the bare command names, resolved through PATH at
// execution time.
func DefaultTools() ToolPaths {
	return ToolPaths{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
}

// Reset restores the default tool paths.
func Reset() {
	Tools = DefaultTools()
}

// Resolve verifies both executables exist, expanding bare names through
// PATH. Explicit paths must point at an executable file.
func (t *ToolPaths) Resolve() error {
	ffmpeg, err := resolveTool(t.FFmpeg, "ffmpeg")
	if err != nil {
		return err
	}
	ffprobe, err := resolveTool(t.FFprobe, "ffprobe")
	if err != nil {
		return err
	}
	t.FFmpeg, t.FFprobe = ffmpeg, ffprobe
	return nil
}

func resolveTool(path, name string) (string, error) {
	if path == "" {
		path = name
	}
	if strings.ContainsRune(path, os.PathSeparator) {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%s not found at %q: %w", name, path, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s path %q is a directory", name, path)
		}
		return path, nil
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH (install ffmpeg or pass an explicit path): %w", name, err)
	}
	return resolved, nil
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds the CLI-level runtime settings shared by all subcommands.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	LogLevel    string    // hclog level name: trace, debug, info, warn, error.
	ColorMode   ColorMode // Default: "auto".
	Overwrite   bool      // Pass -y to ffmpeg.
}

// DefaultConfig returns a Config with working defaults; CLI flags mutate it
// before Validate.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		ColorMode: ColorAuto,
	}
}

// Validate checks enum fields and applies the tool path overrides to the
// process-wide Tools.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.FFmpegPath != "" {
		Tools.FFmpeg = c.FFmpegPath
	}
	if c.FFprobePath != "" {
		Tools.FFprobe = c.FFprobePath
	}
	return nil
}
