package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Cleanup(Reset)

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ColorMode = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LogLevel = "DEBUG"
	assert.NoError(t, cfg.Validate())
}

func TestValidateAppliesToolOverrides(t *testing.T) {
	t.Cleanup(Reset)

	cfg := DefaultConfig()
	cfg.FFmpegPath = "/opt/ffmpeg/bin/ffmpeg"
	cfg.FFprobePath = "/opt/ffmpeg/bin/ffprobe"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", Tools.FFmpeg)
	assert.Equal(t, "/opt/ffmpeg/bin/ffprobe", Tools.FFprobe)

	Reset()
	assert.Equal(t, "ffmpeg", Tools.FFmpeg)
	assert.Equal(t, "ffprobe", Tools.FFprobe)
}

func TestResolveTool(t *testing.T) {
	dir := t.TempDir()

	// explicit path to an existing file resolves as-is
	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	tools := ToolPaths{FFmpeg: path, FFprobe: path}
	require.NoError(t, tools.Resolve())
	assert.Equal(t, path, tools.FFmpeg)

	// a directory is rejected
	tools = ToolPaths{FFmpeg: dir, FFprobe: path}
	assert.Error(t, tools.Resolve())

	// a missing explicit path is rejected
	tools = ToolPaths{FFmpeg: filepath.Join(dir, "missing", "ffmpeg"), FFprobe: path}
	assert.Error(t, tools.Resolve())
}
