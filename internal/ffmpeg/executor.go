package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rawmux/internal/config"
	"github.com/backmassage/rawmux/internal/ffargs"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Execute serializes the argument specification and runs ffmpeg. Stdin and
// stdout may be nil; stderr is captured for diagnostics and optionally
// mirrored to mirror in real time.
func Execute(ctx context.Context, log hclog.Logger, a *ffargs.Args, stdin io.Reader, stdout, mirror io.Writer) ExecResult {
	args := Build(a)
	log.Debug("running ffmpeg", "args", args)

	cmd := exec.CommandContext(ctx, config.Tools.FFmpeg, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout

	var stderrBuf bytes.Buffer
	if mirror != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, mirror)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	if err != nil {
		err = fmt.Errorf("ffmpeg: %w", err)
	}
	return ExecResult{Stderr: stderrBuf.String(), Err: err}
}
