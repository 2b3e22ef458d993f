package rawformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAlpha(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"gray", false},
		{"rgb24", false},
		{"rgba", true},
		{"ya16le", true},
		{"yuv420p", false},
		{"yuva444p", true},
		{"gbrap10le", true},
		{"bgra", true},
		{"grayf32le", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAlpha(tt.name))
		})
	}
}

func TestPixelConfig(t *testing.T) {
	tests := []struct {
		name        string
		in, out     string
		wantFmt     string
		wantComp    int
		wantDtype   string
		removeAlpha bool
	}{
		{"passthrough", "rgb24", "rgb24", "rgb24", 3, "u8", false},
		{"alpha removal", "rgba", "rgb24", "rgb24", 3, "u8", true},
		{"alpha kept", "rgba", "rgba", "rgba", 4, "u8", false},
		{"derive from raw", "gray16le", "", "gray16le", 1, "u16", false},
		{"derive grayscale family", "gray10le", "", "gray", 1, "u8", false},
		{"derive alpha family", "yuva420p", "", "rgba", 4, "u8", false},
		{"derive default", "yuv420p", "", "rgb24", 3, "u8", false},
		{"gray alpha dropped", "ya8", "gray", "gray", 1, "u8", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf, removeAlpha, err := PixelConfig(tt.in, tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFmt, pf.Name)
			assert.Equal(t, tt.wantComp, pf.Components)
			assert.Equal(t, tt.wantDtype, pf.Dtype)
			assert.Equal(t, tt.removeAlpha, removeAlpha)
		})
	}

	_, _, err := PixelConfig("rgba", "yuv420p")
	assert.Error(t, err)
}

func TestInterleaved(t *testing.T) {
	got, rewritten := Interleaved("s16p")
	assert.True(t, rewritten)
	assert.Equal(t, "s16", got)

	got, rewritten = Interleaved("s16")
	assert.False(t, rewritten)
	assert.Equal(t, "s16", got)

	got, rewritten = Interleaved("fltp")
	assert.True(t, rewritten)
	assert.Equal(t, "flt", got)
}

func TestAudioCodec(t *testing.T) {
	tests := []struct {
		sampleFmt string
		codec     string
		format    string
		dtype     string
	}{
		{"u8", "pcm_u8", "u8", "u8"},
		{"s16", "pcm_s16le", "s16le", "i16"},
		{"s32", "pcm_s32le", "s32le", "i32"},
		{"s64", "pcm_s64le", "s64le", "i64"},
		{"flt", "pcm_f32le", "f32le", "f32"},
		{"dbl", "pcm_f64le", "f64le", "f64"},
	}
	for _, tt := range tests {
		t.Run(tt.sampleFmt, func(t *testing.T) {
			codec, format, err := AudioCodec(tt.sampleFmt)
			require.NoError(t, err)
			assert.Equal(t, tt.codec, codec)
			assert.Equal(t, tt.format, format)

			dtype, err := AudioDtype(tt.sampleFmt)
			require.NoError(t, err)
			assert.Equal(t, tt.dtype, dtype)
		})
	}

	_, _, err := AudioCodec("s16p")
	assert.Error(t, err)
	_, err = AudioDtype("nope")
	assert.Error(t, err)
}

func TestDtypeRoundTrips(t *testing.T) {
	fmtName, err := DtypeSampleFmt("i16")
	require.NoError(t, err)
	assert.Equal(t, "s16", fmtName)
	_, err = DtypeSampleFmt("i128")
	assert.Error(t, err)

	pix, err := DtypePixelFmt("u8", 3)
	require.NoError(t, err)
	assert.Equal(t, "rgb24", pix)
	pix, err = DtypePixelFmt("u16", 4)
	require.NoError(t, err)
	assert.Equal(t, "rgba64le", pix)
	_, err = DtypePixelFmt("f64", 3)
	assert.Error(t, err)
}

func TestItemSize(t *testing.T) {
	assert.Equal(t, 1, ItemSize("u8"))
	assert.Equal(t, 2, ItemSize("i16"))
	assert.Equal(t, 2, ItemSize("u16"))
	assert.Equal(t, 4, ItemSize("f32"))
	assert.Equal(t, 8, ItemSize("f64"))
	assert.Equal(t, 8, ItemSize("i64"))
	assert.Equal(t, 0, ItemSize("complex"))
}
