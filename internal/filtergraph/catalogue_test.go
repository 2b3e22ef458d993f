package filtergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawmux/internal/streamspec"
)

func TestCataloguePadCounts(t *testing.T) {
	cat := Default()

	tests := []struct {
		name    string
		filter  *Filter
		in, out int
	}{
		{"color source", NewFilter("color"), 0, 1},
		{"scale", NewFilter("scale", "640", "480"), 1, 1},
		{"overlay", NewFilter("overlay"), 2, 1},
		{"scale2ref", NewFilter("scale2ref"), 2, 2},
		{"split default", NewFilter("split"), 1, 2},
		{"split positional", NewFilter("split", "4"), 1, 4},
		{"asplit named", NewFilter("asplit").WithOption("outputs", "3"), 1, 3},
		{"amerge default", NewFilter("amerge"), 2, 1},
		{"amerge named", NewFilter("amerge").WithOption("inputs", "5"), 5, 1},
		{"afir adds one", NewFilter("afir").WithOption("nbirs", "2"), 3, 1},
		{"afir default", NewFilter("afir"), 2, 1},
		{"concat default", NewFilter("concat"), 2, 1},
		{"concat n=3 v=1 a=2", NewFilter("concat").WithOption("n", "3").WithOption("v", "1").WithOption("a", "2"), 9, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := cat.NumInputs(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.in, in, "inputs")
			out, err := cat.NumOutputs(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.out, out, "outputs")
		})
	}
}

func TestCatalogueUnknownFilter(t *testing.T) {
	cat := Default()
	_, err := cat.NumInputs(NewFilter("nosuchfilter"))
	var unknown *UnknownFilterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nosuchfilter", unknown.Name)
}

func TestCatalogueMediaTypes(t *testing.T) {
	cat := Default()

	mt, err := cat.PadMediaType(NewFilter("color"), OutputPad)
	require.NoError(t, err)
	assert.Equal(t, streamspec.MediaVideo, mt)

	mt, err = cat.PadMediaType(NewFilter("anullsrc"), OutputPad)
	require.NoError(t, err)
	assert.Equal(t, streamspec.MediaAudio, mt)

	mt, err = cat.PadMediaType(NewFilter("amerge"), InputPad)
	require.NoError(t, err)
	assert.Equal(t, streamspec.MediaAudio, mt)
}

func TestCatalogueSourceDetection(t *testing.T) {
	cat := Default()

	info, err := cat.Lookup("testsrc2")
	require.NoError(t, err)
	assert.True(t, info.Source())

	info, err = cat.Lookup("scale")
	require.NoError(t, err)
	assert.False(t, info.Source())
}

func TestParseDescription(t *testing.T) {
	const desc = `Filters:
  T.. = Timeline support
  .S. = Slice threading
  ..C = Command support
  A = Audio input/output
  V = Video input/output
  N = Dynamic number and/or type of input/output
  | = Source or sink filter
 ... adenorm           A->A       Remedy denormals by adding extremely low-level noise.
 T.C scale             V->V       Scale the input video size and/or convert the image format.
 ..C sinesrc           |->A       Generate sine wave audio signal.
 ... mergeplanes       N->V       Merge planes.
`
	cat := ParseDescription(desc)

	// a filter absent from the built-in table is picked up from the text
	info, err := cat.Lookup("adenorm")
	require.NoError(t, err)
	assert.Equal(t, 1, info.In)
	assert.Equal(t, streamspec.MediaAudio, info.TypeIn)

	info, err = cat.Lookup("sinesrc")
	require.NoError(t, err)
	assert.True(t, info.Source())

	// dynamic input counts fall back to an "inputs" option
	n, err := cat.NumInputs(NewFilter("mergeplanes").WithOption("inputs", "3"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// built-in entries keep their option metadata
	info, err = cat.Lookup("color")
	require.NoError(t, err)
	assert.NotEmpty(t, info.Options)
}
