// Package check provides system diagnostics for the external tools: it
// verifies that ffmpeg and ffprobe run, and that the builds carry the
// demuxers and codecs raw media exchange depends on.
package check

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rawmux/internal/config"
)

// Sentinel errors returned by Verify when a required capability is missing.
var (
	ErrFFmpegNotFound  = errors.New("ffmpeg not found or not runnable")
	ErrFFprobeNotFound = errors.New("ffprobe not found or not runnable")
	ErrNoRawVideo      = errors.New("ffmpeg build lacks the rawvideo demuxer")
	ErrNoLavfi         = errors.New("ffmpeg build cannot read lavfi sources")
	ErrSmokeTestFailed = errors.New("ffmpeg smoke test failed (tool runs but cannot process media)")
)

// Run is the interactive diagnostic flow behind the check subcommand. It
// reports every finding and does not stop on failure; Verify is the strict
// variant for pre-flight use.
func Run(ctx context.Context, log hclog.Logger) {
	log.Info("checking external tools")

	if v, err := toolVersion(ctx, config.Tools.FFmpeg); err != nil {
		log.Error("ffmpeg not runnable", "path", config.Tools.FFmpeg, "error", err)
	} else {
		log.Info("ffmpeg", "version", v)
	}

	if v, err := toolVersion(ctx, config.Tools.FFprobe); err != nil {
		log.Error("ffprobe not runnable", "path", config.Tools.FFprobe, "error", err)
	} else {
		log.Info("ffprobe", "version", v)
	}

	if hasFormat(ctx, "rawvideo") {
		log.Info("rawvideo demuxer present")
	} else {
		log.Error("rawvideo demuxer missing")
	}
	if hasFormat(ctx, "lavfi") {
		log.Info("lavfi device present")
	} else {
		log.Error("lavfi device missing")
	}

	for _, codec := range []string{"pcm_s16le", "pcm_f64le"} {
		if hasCodec(ctx, codec) {
			log.Info("codec present", "codec", codec)
		} else {
			log.Warn("codec missing", "codec", codec)
		}
	}

	if smokeTest(ctx) {
		log.Info("smoke test passed (lavfi source decoded to null)")
	} else {
		log.Error("smoke test failed")
	}
}

// Verify is the pre-flight validation: both tools must run, the rawvideo and
// lavfi formats must exist, and a minimal decode must succeed. Returns a
// sentinel error on the first failure.
func Verify(ctx context.Context) error {
	if _, err := toolVersion(ctx, config.Tools.FFmpeg); err != nil {
		return ErrFFmpegNotFound
	}
	if _, err := toolVersion(ctx, config.Tools.FFprobe); err != nil {
		return ErrFFprobeNotFound
	}
	if !hasFormat(ctx, "rawvideo") {
		return ErrNoRawVideo
	}
	if !hasFormat(ctx, "lavfi") {
		return ErrNoLavfi
	}
	if !smokeTest(ctx) {
		return ErrSmokeTestFailed
	}
	return nil
}

// toolVersion runs "<tool> -version" and returns the first output line.
func toolVersion(ctx context.Context, tool string) (string, error) {
	out, err := exec.CommandContext(ctx, tool, "-version").Output()
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(line, '\n'); idx > 0 {
		line = line[:idx]
	}
	return line, nil
}

// hasFormat reports whether ffmpeg lists the named format or device.
func hasFormat(ctx context.Context, name string) bool {
	return listContains(ctx, "-formats", name) || listContains(ctx, "-devices", name)
}

// hasCodec reports whether ffmpeg lists the named codec.
func hasCodec(ctx context.Context, name string) bool {
	return listContains(ctx, "-codecs", name)
}

func listContains(ctx context.Context, listFlag, name string) bool {
	out, err := exec.CommandContext(ctx, config.Tools.FFmpeg, "-hide_banner", listFlag).Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		for _, field := range strings.Fields(line) {
			if field == name || strings.HasPrefix(field, name+",") {
				return true
			}
		}
	}
	return false
}

// smokeTest decodes a tenth of a second of a lavfi color source to the null
// muxer, verifying the whole pipeline the resolver targets actually runs.
func smokeTest(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, config.Tools.FFmpeg,
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-f", "null", "-",
	)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
