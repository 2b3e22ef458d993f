// Package ffmpeg serializes a completed ffargs.Args specification into an
// ffmpeg command line and executes it.
//
// Build is a pure function so tests can assert on the exact argument slice;
// Execute wraps exec.CommandContext with stderr capture.
package ffmpeg
