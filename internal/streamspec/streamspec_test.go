package streamspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		text string
		want Spec
	}{
		{"", Spec{Index: NoIndex}},
		{"v", Spec{Type: "v", Index: NoIndex}},
		{"a", Spec{Type: "a", Index: NoIndex}},
		{"V", Spec{Type: "V", Index: NoIndex}},
		{"v:1", Spec{Type: "v", Index: 1}},
		{"a:0", Spec{Type: "a", Index: 0}},
		{"3", Spec{Index: 3}},
	}
	for _, tt := range tests {
		t.Run("spec "+tt.text, func(t *testing.T) {
			got, err := ParseSpec(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			// composing the parsed value reproduces the input
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestParseSpecErrors(t *testing.T) {
	for _, text := range []string{"x", "v:a:1", "v:-1", "v:x", "-2", "a:b"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseSpec(text)
			var malformed *MalformedSpecifierError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, text, malformed.Text)
		})
	}
}

func TestParseMap(t *testing.T) {
	tests := []struct {
		text        string
		defaultFile int
		want        Map
	}{
		{"[vout]", NoIndex, Map{LinkLabel: "vout", FileIndex: NoIndex, Stream: Spec{Index: NoIndex}}},
		{"0", NoIndex, Map{FileIndex: 0, Stream: Spec{Index: NoIndex}}},
		{"1:v", NoIndex, Map{FileIndex: 1, Stream: Spec{Type: "v", Index: NoIndex}}},
		{"0:v:1", NoIndex, Map{FileIndex: 0, Stream: Spec{Type: "v", Index: 1}}},
		{"0:3", NoIndex, Map{FileIndex: 0, Stream: Spec{Index: 3}}},
		{"a:1", 0, Map{FileIndex: 0, Stream: Spec{Type: "a", Index: 1}}},
		{"v", NoIndex, Map{FileIndex: NoIndex, Stream: Spec{Type: "v", Index: NoIndex}}},
	}
	for _, tt := range tests {
		t.Run("map "+tt.text, func(t *testing.T) {
			got, err := ParseMap(tt.text, tt.defaultFile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMapErrors(t *testing.T) {
	for _, text := range []string{"", "[", "[]", "[vout", "x:v", "-1:v", "0:v:a:1"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseMap(text, NoIndex)
			var malformed *MalformedSpecifierError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestMapString(t *testing.T) {
	tests := []struct {
		name string
		m    Map
		want string
	}{
		{"link", Map{LinkLabel: "out0"}, "[out0]"},
		{"file only", Map{FileIndex: 2, Stream: Spec{Index: NoIndex}}, "2"},
		{"full", Map{FileIndex: 0, Stream: Spec{Type: "a", Index: 1}}, "0:a:1"},
		{"type without file", Map{FileIndex: NoIndex, Stream: Spec{Type: "v", Index: NoIndex}}, "v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.String())
		})
	}
}

func TestFullyQualified(t *testing.T) {
	full, err := ParseMap("0:v:1", NoIndex)
	require.NoError(t, err)
	assert.True(t, full.FullyQualified())

	for _, text := range []string{"[out0]", "0:v", "0", "v:1"} {
		m, err := ParseMap(text, NoIndex)
		require.NoError(t, err)
		if text == "v:1" {
			// a per-type index without a file still needs the default file
			// applied before it can skip probing
			assert.True(t, m.FullyQualified())
			continue
		}
		assert.False(t, m.FullyQualified(), text)
	}
}

func TestTypeLetter(t *testing.T) {
	assert.Equal(t, "v", TypeLetter(MediaVideo))
	assert.Equal(t, "a", TypeLetter(MediaAudio))

	mt, ok := MediaTypeOf("V")
	require.True(t, ok)
	assert.Equal(t, MediaVideo, mt)
	_, ok = MediaTypeOf("s")
	assert.False(t, ok)
}
