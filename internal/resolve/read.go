package resolve

import (
	"context"
	"fmt"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/filtergraph"
	"github.com/backmassage/rawmux/internal/streamspec"
)

// StreamMap pairs a caller-supplied map option value with optional
// per-stream output options.
type StreamMap struct {
	Spec string
	Opts *ffargs.Options
}

// InitMediaRead assembles the complete argument specification for a raw
// media read: inputs registered and classified, output streams resolved
// (auto-mapped when streams is empty), and every output finalized to raw
// video or pcm audio on a pipe.
//
// Option names suffixed _in route to every input, _in<N> to input N only;
// the remainder apply to each output. options is consumed destructively.
func (r *Resolver) InitMediaRead(ctx context.Context, urls []InputURL, streams []StreamMap, options *ffargs.Options) (*ffargs.Args, []InputSource, []OutputStream, error) {
	if len(urls) == 0 {
		return nil, nil, nil, fmt.Errorf("at least one input must be given")
	}
	if options == nil {
		options = ffargs.NewOptions()
	}
	if options.Has("n") {
		return nil, nil, nil, &IncompatibleOptionError{Option: "n",
			Reason: "cannot limit output file count when writing to pipes"}
	}

	blanket, perInput := ffargs.SplitInputOptions(options)

	a := ffargs.Empty(ffargs.PopGlobalOptions(options))
	a.Global.SetFlag("y")

	if v, ok := a.Global.Get("filter_complex"); ok {
		items := ffargs.MultiValue(v)
		for i, it := range items {
			g, err := filtergraph.AsGraph(it)
			if err != nil {
				return nil, nil, nil, err
			}
			items[i] = g
		}
		a.Global.Set("filter_complex", items)
	}

	inputInfo, err := r.ProcessURLInputs(a, urls, blanket)
	if err != nil {
		return nil, nil, nil, err
	}
	for idx, opts := range perInput {
		if err := ffargs.MergeUserOptions(a, ffargs.Input, opts, idx); err != nil {
			return nil, nil, nil, err
		}
	}

	outputInfo, err := r.ProcessRawOutputs(ctx, a, inputInfo, streams, options)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, inputInfo, outputInfo, nil
}

// ProcessRawOutputs resolves the requested output streams, appends one
// pipe-destined output entry per stream, and finalizes each entry's raw
// format options.
func (r *Resolver) ProcessRawOutputs(ctx context.Context, a *ffargs.Args, inputInfo []InputSource, streams []StreamMap, options *ffargs.Options) ([]OutputStream, error) {
	var resolved []OutputStream
	var err error
	if len(streams) == 0 {
		resolved, err = r.AutoMap(ctx, a, inputInfo)
	} else {
		specs := make([]string, len(streams))
		for i, s := range streams {
			specs[i] = s.Spec
		}
		resolved, err = r.ResolveRawOutputStreams(ctx, a, inputInfo, specs)
	}
	if err != nil {
		return nil, err
	}

	perStream := map[string]*ffargs.Options{}
	for _, s := range streams {
		if s.Opts != nil {
			perStream[s.Spec] = s.Opts
		}
	}

	for i := range resolved {
		opts := options.Clone()
		if extra := perStream[resolved[i].UserMap]; extra != nil {
			opts.Merge(extra)
		}
		opts.Set("map", resolved[i].Key)
		a.AddURL(ffargs.Output, "", opts, false)
	}

	for i := range resolved {
		var media *MediaInfo
		if resolved[i].MediaType == streamspec.MediaAudio {
			media, err = r.FinalizeAudioReadOpts(ctx, a, i, inputInfo)
		} else {
			media, err = r.FinalizeVideoReadOpts(ctx, a, i, inputInfo)
		}
		if err != nil {
			return nil, err
		}
		resolved[i].Media = media
	}
	return resolved, nil
}
