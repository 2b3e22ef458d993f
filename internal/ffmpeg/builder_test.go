package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/filtergraph"
)

func TestBuild(t *testing.T) {
	a := ffargs.Empty(ffargs.NewOptions().SetFlag("y").Set("loglevel", "error"))
	a.AddURL(ffargs.Input, "in.mov", ffargs.NewOptions().Set("ss", 1.5), false)
	a.AddURL(ffargs.Input, "tone.wav", nil, false)
	a.AddURL(ffargs.Output, "pipe:1",
		ffargs.NewOptions().
			Set("map", "0:v:0").
			Set("f", "rawvideo").
			Set("pix_fmt", "rgb24").
			Set("s", [2]int{640, 480}),
		false)

	got := Build(a)
	want := []string{
		"-y", "-loglevel", "error",
		"-ss", "1.5", "-i", "in.mov",
		"-i", "tone.wav",
		"-map", "0:v:0", "-f", "rawvideo", "-pix_fmt", "rgb24", "-s", "640x480",
		"pipe:1",
	}
	assert.Equal(t, want, got)
}

func TestBuildMultiValuedOption(t *testing.T) {
	a := ffargs.Empty(ffargs.NewOptions().Set("filter_complex", []any{"anull", "null"}))
	a.AddURL(ffargs.Output, "out.mkv", ffargs.NewOptions().Set("map", []string{"[out0]", "[out1]"}), false)

	got := Build(a)
	want := []string{
		"-filter_complex", "anull", "-filter_complex", "null",
		"-map", "[out0]", "-map", "[out1]",
		"out.mkv",
	}
	assert.Equal(t, want, got)
}

func TestFormatValue(t *testing.T) {
	g, err := filtergraph.Parse("crop=640:480,hflip")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "rgb24", "rgb24"},
		{"int", 30, "30"},
		{"int64", int64(1 << 40), "1099511627776"},
		{"float", 29.97, "29.97"},
		{"bool true", true, "1"},
		{"bool false", false, "0"},
		{"size pair", [2]int{1920, 1080}, "1920x1080"},
		{"int slice", []int{3, 4, 5}, "3x4x5"},
		{"filtergraph", g, "crop=640:480,hflip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}
