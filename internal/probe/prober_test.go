package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `{
    "streams": [
        {
            "index": 0,
            "codec_name": "h264",
            "codec_type": "video",
            "width": 1920,
            "height": 1080,
            "pix_fmt": "yuv420p",
            "r_frame_rate": "30000/1001",
            "avg_frame_rate": "30000/1001",
            "bit_rate": "8000000"
        },
        {
            "index": 1,
            "codec_name": "aac",
            "codec_type": "audio",
            "sample_fmt": "fltp",
            "sample_rate": "48000",
            "channels": 2,
            "channel_layout": "stereo",
            "duration": "12.5"
        }
    ]
}`

func TestParseJSON(t *testing.T) {
	streams, err := ParseJSON([]byte(sampleOutput))
	require.NoError(t, err)
	require.Len(t, streams, 2)

	v := streams[0]
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, "video", v.CodecType)
	assert.Equal(t, "h264", v.CodecName)
	assert.Equal(t, 1920, v.Width)
	assert.Equal(t, 1080, v.Height)
	assert.Equal(t, "yuv420p", v.PixFmt)
	assert.Equal(t, "30000/1001", v.RFrameRate)
	assert.Equal(t, int64(8000000), v.BitRate)

	a := streams[1]
	assert.Equal(t, "audio", a.CodecType)
	assert.Equal(t, "fltp", a.SampleFmt)
	assert.Equal(t, 48000, a.SampleRate)
	assert.Equal(t, 2, a.Channels)
	assert.Equal(t, "stereo", a.ChannelLayout)
	assert.Equal(t, 12.5, a.Duration)
}

func TestParseJSONErrors(t *testing.T) {
	_, err := ParseJSON([]byte("not json"))
	assert.Error(t, err)

	streams, err := ParseJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, streams)
}

func TestFrameRateFallback(t *testing.T) {
	tests := []struct {
		name string
		s    Stream
		want string
	}{
		{"r_frame_rate set", Stream{RFrameRate: "25/1", AvgFrameRate: "24/1"}, "25/1"},
		{"zero ratio falls back", Stream{RFrameRate: "0/0", AvgFrameRate: "24/1"}, "24/1"},
		{"empty falls back", Stream{AvgFrameRate: "30/1"}, "30/1"},
		{"nothing known", Stream{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.FrameRate())
		})
	}
}

func TestFiltergraphSource(t *testing.T) {
	src := Filtergraph("color=c=red")
	assert.Equal(t, "color=c=red", src.URL)
	assert.Equal(t, "lavfi", src.Format)
	assert.Nil(t, src.Data)
}
