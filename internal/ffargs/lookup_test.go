package ffargs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamGetSpecificity(t *testing.T) {
	o := NewOptions().Set("c", 0).Set("c:v", 1).Set("c:v:0", 2)

	tests := []struct {
		name       string
		streamType string
		index      int
		want       any
	}{
		{"exact stream", "v", 0, 2},
		{"type fallback", "v", 3, 1},
		{"type only", "v", NoStream, 1},
		{"other type falls back to bare", "a", 0, 0},
		{"bare lookup", "", NoStream, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := o.StreamGet("c", tt.streamType, tt.index)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	_, ok := o.StreamGet("b", "v", 0)
	assert.False(t, ok)
}

func TestGetOption(t *testing.T) {
	a := Empty(NewOptions().Set("y", nil))
	a.AddURL(Input, "in.mp4", NewOptions().Set("r", 30), false)
	a.AddURL(Output, "out.raw", NewOptions().Set("c", "copy").Set("c:a", "aac"), false)

	assert.Equal(t, 30, GetOption(a, Input, "r", 0, "", NoStream))
	assert.Equal(t, "aac", GetOption(a, Output, "c", 0, "a", 1))
	assert.Equal(t, "copy", GetOption(a, Output, "c", 0, "v", NoStream))
	assert.Nil(t, GetOption(a, Input, "r", 3, "", NoStream))
	assert.Nil(t, GetOption(a, Global, "r", 0, "", NoStream))
}

func TestFindStreamOptions(t *testing.T) {
	o := NewOptions().
		Set("sample_fmt", "s16").
		Set("sample_fmt:a:2", "flt").
		Set("sample_rate", 48000).
		Set("c:a", "aac")
	assert.Equal(t, []string{"sample_fmt", "sample_fmt:a:2"}, o.FindStreamOptions("sample_fmt"))
	assert.Nil(t, o.FindStreamOptions("pix_fmt"))
}

func TestSplitInputOptions(t *testing.T) {
	opts := NewOptions().
		Set("ss_in", 3.5).
		Set("t_in0", 10).
		Set("r", 30).
		Set("ar_in2", 44100)

	blanket, perInput := SplitInputOptions(opts)

	v, _ := blanket.Get("ss")
	assert.Equal(t, 3.5, v)
	require.Contains(t, perInput, 0)
	v, _ = perInput[0].Get("t")
	assert.Equal(t, 10, v)
	require.Contains(t, perInput, 2)
	v, _ = perInput[2].Get("ar")
	assert.Equal(t, 44100, v)

	// non-input keys stay behind
	assert.Equal(t, []string{"r"}, opts.Keys())
}

func TestPopGlobalOptions(t *testing.T) {
	opts := NewOptions().SetFlag("y").Set("pix_fmt", "rgb24").Set("filter_complex", "anull")
	global := PopGlobalOptions(opts)
	assert.True(t, global.Has("y"))
	assert.True(t, global.Has("filter_complex"))
	assert.Equal(t, []string{"pix_fmt"}, opts.Keys())

	assert.Equal(t, 0, PopGlobalOptions(nil).Len())
}
