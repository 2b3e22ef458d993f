package resolve

import (
	"strconv"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/presets"
)

// MergeAudioSpec controls optional merging of input audio streams into one
// multi-channel stream during a raw write.
type MergeAudioSpec struct {
	All     bool  // merge every audio input
	Streams []int // or merge only these input indices
	Rate    int   // merged sample rate; 0 uses the first merged stream's
	Fmt     string
	OutPad  string // output pad label; "" defaults to aout
}

func (m MergeAudioSpec) requested() bool { return m.All || len(m.Streams) > 0 }

// InitMediaWrite assembles the argument specification for a raw media
// write: one named-pipe input per logical stream (audio when the stream's
// options carry ar, video when r), every input mapped to the single output
// in order unless the caller maps explicitly, and an optional audio-merge
// filtergraph replacing the merged streams in the map.
func (r *Resolver) InitMediaWrite(url string, inputOpts []*ffargs.Options, merge MergeAudioSpec, extraInputs []ffargs.URLSpec, options *ffargs.Options) (*ffargs.Args, []*NamedPipe, error) {
	if options == nil {
		options = ffargs.NewOptions()
	}
	if options.Has("n") {
		return nil, nil, &IncompatibleOptionError{Option: "n",
			Reason: "cannot limit output file count with pipe-fed inputs"}
	}

	blanket, perInput := ffargs.SplitInputOptions(options)

	a := ffargs.Empty(nil)

	pipes := make([]*NamedPipe, 0, len(inputOpts))
	for _, opts := range inputOpts {
		pipe, err := NewNamedPipe()
		if err != nil {
			closePipes(pipes)
			return nil, nil, err
		}
		pipes = append(pipes, pipe)
		a.AddURL(ffargs.Input, pipe.Path(), blanket.MergedWith(opts), false)
	}
	for idx, opts := range perInput {
		if err := ffargs.MergeUserOptions(a, ffargs.Input, opts, idx); err != nil {
			closePipes(pipes)
			return nil, nil, err
		}
	}

	audioIn := 0
	for i := range a.Inputs {
		if a.Inputs[i].Opts.Has("ar") {
			audioIn++
		}
	}

	// default map: every input, in order
	var streamMap []any
	if v, ok := options.Get("map"); ok {
		streamMap = ffargs.MultiValue(v)
	} else {
		for i := range inputOpts {
			streamMap = append(streamMap, i)
		}
	}

	doMerge := merge.requested() && audioIn > 1
	if doMerge {
		if merge.All && len(merge.Streams) == 0 {
			for i := range inputOpts {
				if a.Inputs[i].Opts.Has("ar") {
					merge.Streams = append(merge.Streams, i)
				}
			}
		}
		for _, i := range merge.Streams {
			if i < 0 || i >= len(inputOpts) || !a.Inputs[i].Opts.Has("ar") {
				closePipes(pipes)
				return nil, nil, &AmbiguousMappingError{Spec: strconv.Itoa(i),
					Reason: "merge list entries must index input audio streams"}
			}
		}

		// the map option value may alias a caller-owned slice
		kept := make([]any, 0, len(streamMap))
		for _, v := range streamMap {
			if i, ok := v.(int); ok && contains(merge.Streams, i) {
				continue
			}
			kept = append(kept, v)
		}
		options.Set("map", kept)
	} else if _, ok := options.Get("map"); !ok {
		options.Set("map", streamMap)
	}

	a.AddURL(ffargs.Output, url, options, false)

	if len(extraInputs) > 0 {
		a.AddURLs(ffargs.Input, extraInputs, false)
	}

	if doMerge {
		streams := make([]presets.MergeAudioStream, len(merge.Streams))
		for i, idx := range merge.Streams {
			opts := a.Inputs[idx].Opts
			streams[i] = presets.MergeAudioStream{
				InputIndex: idx,
				SampleRate: optInt(opts, "ar"),
				SampleFmt:  optString(opts, "sample_fmt"),
			}
		}
		g := presets.MergeAudio(streams, merge.Rate, merge.Fmt, merge.OutPad)
		if err := AddFiltergraph(a, g, nil, true, 0); err != nil {
			closePipes(pipes)
			return nil, nil, err
		}
	}

	ffargs.MoveGlobalOptions(a)
	return a, pipes, nil
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func closePipes(pipes []*NamedPipe) {
	for _, p := range pipes {
		_ = p.Close()
	}
}
