//go:build unix

package resolve

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/ffmpeg"
)

func writeInputOpts() []*ffargs.Options {
	return []*ffargs.Options{
		ffargs.NewOptions().
			Set("f", "rawvideo").
			Set("pix_fmt", "rgb24").
			Set("s", [2]int{640, 480}).
			Set("r", "30"),
		ffargs.NewOptions().
			Set("f", "s16le").
			Set("sample_fmt", "s16").
			Set("ac", 2).
			Set("ar", 44100),
		ffargs.NewOptions().
			Set("f", "s16le").
			Set("sample_fmt", "s16").
			Set("ac", 1).
			Set("ar", 44100),
	}
}

func TestInitMediaWrite(t *testing.T) {
	r := newTestResolver(&fakeProber{})

	a, pipes, err := r.InitMediaWrite("out.mp4", writeInputOpts(),
		MergeAudioSpec{All: true}, nil, nil)
	require.NoError(t, err)
	defer closePipes(pipes)

	// one fifo per logical input, registered as its url
	require.Len(t, pipes, 3)
	require.Len(t, a.Inputs, 3)
	for i, p := range pipes {
		fi, err := os.Stat(p.Path())
		require.NoError(t, err)
		assert.NotZero(t, fi.Mode()&os.ModeNamedPipe)
		assert.Equal(t, p.Path(), a.Inputs[i].URL)
	}

	require.Len(t, a.Outputs, 1)
	assert.Equal(t, "out.mp4", a.Outputs[0].URL)

	// the merged audio streams drop out of the map in favor of the
	// filtergraph output pad
	v, ok := a.Outputs[0].Opts.Get("map")
	require.True(t, ok)
	var mapped []string
	for _, m := range ffargs.MultiValue(v) {
		mapped = append(mapped, ffmpeg.FormatValue(m))
	}
	assert.Equal(t, []string{"0", "[aout]"}, mapped)

	v, ok = a.Global.Get("filter_complex")
	require.True(t, ok)
	graphs := ffargs.MultiValue(v)
	require.Len(t, graphs, 1)
	assert.Equal(t,
		"[1:a][2:a]amerge=inputs=2,aresample=44100,aformat=sample_fmts=s16[aout]",
		ffmpeg.FormatValue(graphs[0]))
}

func TestInitMediaWriteNoMerge(t *testing.T) {
	r := newTestResolver(&fakeProber{})

	a, pipes, err := r.InitMediaWrite("out.mp4", writeInputOpts(),
		MergeAudioSpec{}, nil, nil)
	require.NoError(t, err)
	defer closePipes(pipes)

	v, ok := a.Outputs[0].Opts.Get("map")
	require.True(t, ok)
	var mapped []string
	for _, m := range ffargs.MultiValue(v) {
		mapped = append(mapped, ffmpeg.FormatValue(m))
	}
	assert.Equal(t, []string{"0", "1", "2"}, mapped)
	assert.False(t, a.Global.Has("filter_complex"))
}

func TestInitMediaWriteRoutesPerInputOptions(t *testing.T) {
	r := newTestResolver(&fakeProber{})

	a, pipes, err := r.InitMediaWrite("out.mp4", writeInputOpts(),
		MergeAudioSpec{}, nil, ffargs.NewOptions().Set("itsoffset_in1", 2.5))
	require.NoError(t, err)
	defer closePipes(pipes)

	v, ok := a.Inputs[1].Opts.Get("itsoffset")
	require.True(t, ok)
	assert.Equal(t, 2.5, v)
	assert.False(t, a.Inputs[0].Opts.Has("itsoffset"))
	assert.False(t, a.Outputs[0].Opts.Has("itsoffset"))
	assert.False(t, a.Outputs[0].Opts.Has("itsoffset_in1"))
}

func TestInitMediaWriteKeepsCallerMapSlice(t *testing.T) {
	r := newTestResolver(&fakeProber{})

	callerMap := []any{0, 1, 2}
	a, pipes, err := r.InitMediaWrite("out.mp4", writeInputOpts(),
		MergeAudioSpec{All: true}, nil,
		ffargs.NewOptions().Set("map", callerMap))
	require.NoError(t, err)
	defer closePipes(pipes)

	assert.Equal(t, []any{0, 1, 2}, callerMap)

	v, ok := a.Outputs[0].Opts.Get("map")
	require.True(t, ok)
	var mapped []string
	for _, m := range ffargs.MultiValue(v) {
		mapped = append(mapped, ffmpeg.FormatValue(m))
	}
	assert.Equal(t, []string{"0", "[aout]"}, mapped)
}

func TestInitMediaWriteErrors(t *testing.T) {
	r := newTestResolver(&fakeProber{})

	t.Run("output count limit", func(t *testing.T) {
		_, _, err := r.InitMediaWrite("out.mp4", writeInputOpts(),
			MergeAudioSpec{}, nil, ffargs.NewOptions().SetFlag("n"))
		var incompatible *IncompatibleOptionError
		require.ErrorAs(t, err, &incompatible)
		assert.Equal(t, "n", incompatible.Option)
	})

	t.Run("merge entry must be audio", func(t *testing.T) {
		_, _, err := r.InitMediaWrite("out.mp4", writeInputOpts(),
			MergeAudioSpec{Streams: []int{0, 1}}, nil, nil)
		var ambiguous *AmbiguousMappingError
		require.ErrorAs(t, err, &ambiguous)
	})

	t.Run("merge entry out of range", func(t *testing.T) {
		_, _, err := r.InitMediaWrite("out.mp4", writeInputOpts(),
			MergeAudioSpec{Streams: []int{1, 5}}, nil, nil)
		var ambiguous *AmbiguousMappingError
		require.ErrorAs(t, err, &ambiguous)
	})
}

func TestNamedPipeLifecycle(t *testing.T) {
	p, err := NewNamedPipe()
	require.NoError(t, err)

	fi, err := os.Stat(p.Path())
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeNamedPipe)

	require.NoError(t, p.Close())
	_, err = os.Stat(p.Path())
	assert.True(t, os.IsNotExist(err))
}
