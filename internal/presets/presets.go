// Package presets generates the canned filtergraph fragments the resolution
// engine inserts implicitly: basic video adjustments, alpha removal, audio
// merging, and the synthetic source chains used for one-shot filtergraph
// probing.
package presets

import (
	"fmt"
	"strconv"

	"github.com/backmassage/rawmux/internal/filtergraph"
)

// VideoBasicOpts collects the plain output options that must be rewritten
// into filter nodes. Zero values mean "not requested".
type VideoBasicOpts struct {
	Crop         []int  // w, h and optionally x, y
	Flip         string // "horizontal", "vertical", or "both"
	Transpose    string // transpose filter argument, passed through
	SquarePixels string // "upscale", "downscale", "upscale_even", "downscale_even"
	Scale        []int  // w, h; negative values are passed to the scale filter
}

// Any reports whether at least one adjustment was requested.
func (o VideoBasicOpts) Any() bool {
	return len(o.Crop) > 0 || o.Flip != "" || o.Transpose != "" ||
		o.SquarePixels != "" || len(o.Scale) > 0
}

// VideoBasicFilter builds the chain equivalent to the requested
// adjustments, in crop, flip, transpose, square-pixel, scale order.
func VideoBasicFilter(o VideoBasicOpts) (*filtergraph.Chain, error) {
	chain := filtergraph.NewChain()

	if len(o.Crop) > 0 {
		if len(o.Crop) < 2 || len(o.Crop) > 4 {
			return nil, fmt.Errorf("crop requires 2 to 4 values, got %d", len(o.Crop))
		}
		args := make([]string, len(o.Crop))
		for i, v := range o.Crop {
			args[i] = strconv.Itoa(v)
		}
		chain.Filters = append(chain.Filters, filtergraph.NewFilter("crop", args...))
	}

	switch o.Flip {
	case "":
	case "horizontal":
		chain.Filters = append(chain.Filters, filtergraph.NewFilter("hflip"))
	case "vertical":
		chain.Filters = append(chain.Filters, filtergraph.NewFilter("vflip"))
	case "both":
		chain.Filters = append(chain.Filters,
			filtergraph.NewFilter("hflip"), filtergraph.NewFilter("vflip"))
	default:
		return nil, fmt.Errorf("unknown flip direction %q", o.Flip)
	}

	if o.Transpose != "" {
		chain.Filters = append(chain.Filters, filtergraph.NewFilter("transpose", o.Transpose))
	}

	if o.SquarePixels != "" {
		f, err := squarePixelFilters(o.SquarePixels)
		if err != nil {
			return nil, err
		}
		chain.Filters = append(chain.Filters, f...)
	}

	if len(o.Scale) > 0 {
		if len(o.Scale) != 2 {
			return nil, fmt.Errorf("scale requires 2 values, got %d", len(o.Scale))
		}
		chain.Filters = append(chain.Filters, filtergraph.NewFilter("scale",
			strconv.Itoa(o.Scale[0]), strconv.Itoa(o.Scale[1])))
	}
	return chain, nil
}

func squarePixelFilters(mode string) ([]*filtergraph.Filter, error) {
	var w, h string
	switch mode {
	case "upscale":
		w, h = "max(iw,iw*sar)", "max(ih,ih/sar)"
	case "downscale":
		w, h = "min(iw,iw*sar)", "min(ih,ih/sar)"
	case "upscale_even":
		w, h = "trunc(max(iw,iw*sar)/2)*2", "trunc(max(ih,ih/sar)/2)*2"
	case "downscale_even":
		w, h = "trunc(min(iw,iw*sar)/2)*2", "trunc(min(ih,ih/sar)/2)*2"
	default:
		return nil, fmt.Errorf("unknown square_pixels mode %q", mode)
	}
	return []*filtergraph.Filter{
		filtergraph.NewFilter("scale", w, h).WithOption("eval", "init"),
		filtergraph.NewFilter("setsar", "1"),
	}, nil
}

// RemoveVideoAlpha builds the overlay graph that composites a stream with an
// alpha channel onto a solid background, dropping the alpha channel. The
// graph exposes one unlabeled input pad (the stream) and one unlabeled
// output.
func RemoveVideoAlpha(fillColor string) *filtergraph.Graph {
	bg := filtergraph.NewFilter("color").WithOption("c", fillColor)
	s2r := filtergraph.NewFilter("scale2ref")
	ovl := filtergraph.NewFilter("overlay").WithOption("shortest", "1")

	g := &filtergraph.Graph{Chains: []*filtergraph.Chain{
		filtergraph.NewChain(bg),
		filtergraph.NewChain(s2r),
		filtergraph.NewChain(ovl),
	}}
	pad := func(c, f, p int) *filtergraph.PadIndex {
		return &filtergraph.PadIndex{Chain: c, Filter: f, Pad: p}
	}
	g.Links = []filtergraph.Link{
		{Label: "bg", Out: pad(0, 0, 0), In: pad(1, 0, 0)},   // color -> scale2ref main
		{Label: "bga", Out: pad(1, 0, 0), In: pad(2, 0, 0)},  // scaled bg -> overlay bottom
		{Label: "vid", Out: pad(1, 0, 1), In: pad(2, 0, 1)},  // passthrough ref -> overlay top
	}
	return g
}

// TempVideoSrc builds a single-frame synthetic source chain matching the
// given stream spec, used to probe the effect of a per-output filter.
// Unknown values ("" or zero) are omitted.
func TempVideoSrc(rate string, pixFmt string, width, height int) *filtergraph.Chain {
	src := filtergraph.NewFilter("color")
	if width > 0 && height > 0 {
		src.WithOption("s", strconv.Itoa(width)+"x"+strconv.Itoa(height))
	}
	if rate != "" {
		src.WithOption("r", rate)
	}
	chain := filtergraph.NewChain(src)
	if pixFmt != "" {
		chain.Filters = append(chain.Filters, filtergraph.NewFilter("format", pixFmt))
	}
	chain.Filters = append(chain.Filters,
		filtergraph.NewFilter("trim").WithOption("end_frame", "1"))
	return chain
}

// TempAudioSrc builds a short synthetic audio source chain matching the
// given stream spec.
func TempAudioSrc(sampleRate int, sampleFmt string, channels int) *filtergraph.Chain {
	src := filtergraph.NewFilter("anullsrc")
	if sampleRate > 0 {
		src.WithOption("r", strconv.Itoa(sampleRate))
	}
	if channels > 0 {
		src.WithOption("cl", strconv.Itoa(channels)+"c")
	}
	chain := filtergraph.NewChain(src)
	af := filtergraph.NewFilter("aformat")
	if sampleFmt != "" {
		af.WithOption("sample_fmts", sampleFmt)
	}
	if sampleFmt != "" {
		chain.Filters = append(chain.Filters, af)
	}
	chain.Filters = append(chain.Filters,
		filtergraph.NewFilter("atrim").WithOption("end_sample", "1024"))
	return chain
}

// MergeAudioStream describes one input feeding the merge graph.
type MergeAudioStream struct {
	InputIndex int
	SampleRate int    // from the input's ar option; 0 unknown
	SampleFmt  string // from the input's sample_fmt option; "" unknown
}

// MergeAudio builds the complex filtergraph combining the given input audio
// streams into one multi-channel stream on the labeled output pad. Rate and
// sample format default to the first merged stream's values.
func MergeAudio(streams []MergeAudioStream, rate int, sampleFmt string, outPad string) *filtergraph.Graph {
	if outPad == "" {
		outPad = "aout"
	}
	if rate == 0 && len(streams) > 0 {
		rate = streams[0].SampleRate
	}
	if sampleFmt == "" && len(streams) > 0 {
		sampleFmt = streams[0].SampleFmt
	}

	merge := filtergraph.NewFilter("amerge").
		WithOption("inputs", strconv.Itoa(len(streams)))
	chain := filtergraph.NewChain(merge)
	if rate > 0 {
		chain.Filters = append(chain.Filters,
			filtergraph.NewFilter("aresample", strconv.Itoa(rate)))
	}
	if sampleFmt != "" {
		chain.Filters = append(chain.Filters,
			filtergraph.NewFilter("aformat").WithOption("sample_fmts", sampleFmt))
	}

	g := &filtergraph.Graph{Chains: []*filtergraph.Chain{chain}}
	for i, s := range streams {
		in := filtergraph.PadIndex{Chain: 0, Filter: 0, Pad: i}
		g.Links = append(g.Links, filtergraph.Link{
			Label: strconv.Itoa(s.InputIndex) + ":a",
			In:    &in,
		})
	}
	out := filtergraph.PadIndex{Chain: 0, Filter: len(chain.Filters) - 1, Pad: 0}
	g.Links = append(g.Links, filtergraph.Link{Label: outPad, Out: &out})
	return g
}
