package resolve

import (
	"fmt"
	"io"
	"strings"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/filtergraph"
	"github.com/backmassage/rawmux/internal/rawformat"
	"github.com/backmassage/rawmux/internal/streamspec"
)

// SourceKind classifies how an input's data physically arrives. One
// classification pass produces it; everything downstream switches on it
// exhaustively.
type SourceKind string

const (
	SourcePath        SourceKind = "path"        // url or local file, opened by the external tool
	SourceBuffer      SourceKind = "buffer"      // in-memory bytes, delivered via pipe
	SourceHandle      SourceKind = "handle"      // open reader, delivered via pipe
	SourceFiltergraph SourceKind = "filtergraph" // synthetic lavfi source
	SourceConcat      SourceKind = "concat"      // concat listing, delivered via pipe
	SourcePipe        SourceKind = "pipe"        // raw samples fed by the caller after start
)

// InputSource records how one registered input is supplied, plus whatever
// is needed later to feed it.
type InputSource struct {
	Kind      SourceKind
	Buffer    []byte    // SourceBuffer and SourceConcat
	Handle    io.Reader // SourceHandle
	MediaType streamspec.MediaType // SourcePipe only
}

// Concat is a concat-demuxer source assembled from file entries. Its
// listing travels to the external tool through a pipe.
type Concat struct {
	Files []string
}

// Listing renders the ffconcat file list.
func (c *Concat) Listing() []byte {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, f := range c.Files {
		b.WriteString("file " + f + "\n")
	}
	return []byte(b.String())
}

// InputURL is the caller-facing input description: exactly one of URL,
// Graph, Buffer, Handle, or Concat is set, with optional per-input options.
type InputURL struct {
	URL    string
	Graph  filtergraph.Expr
	Buffer []byte
	Handle io.Reader
	Concat *Concat
	Opts   *ffargs.Options
}

// Path names an input by url or file path.
func Path(url string) InputURL { return InputURL{URL: url} }

// PathOpts names an input by url with options.
func PathOpts(url string, opts *ffargs.Options) InputURL {
	return InputURL{URL: url, Opts: opts}
}

// Buffer supplies an input from in-memory bytes.
func Buffer(data []byte) InputURL { return InputURL{Buffer: data} }

// Handle supplies an input from an open reader.
func Handle(r io.Reader) InputURL { return InputURL{Handle: r} }

// Filtergraph supplies a synthetic lavfi input.
func Filtergraph(g filtergraph.Expr) InputURL { return InputURL{Graph: g} }

// ProcessURLInputs classifies and registers the supplied inputs on the
// argument spec. Buffer, handle, and concat inputs register with an empty
// url, to be replaced by a pipe expression once one is allocated.
func (r *Resolver) ProcessURLInputs(a *ffargs.Args, urls []InputURL, defaults *ffargs.Options) ([]InputSource, error) {
	info := make([]InputSource, len(urls))
	for i, u := range urls {
		opts := defaults.MergedWith(u.Opts)

		var url string
		var src InputSource
		switch {
		case u.Graph != nil:
			if f, ok := opts.Get("f"); !ok {
				opts.Set("f", "lavfi")
			} else if f != "lavfi" {
				return nil, &IncompatibleOptionError{Option: "f",
					Reason: "input filtergraph requires the lavfi input format"}
			}
			url = u.Graph.String()
			src = InputSource{Kind: SourceFiltergraph}
		case u.Buffer != nil:
			src = InputSource{Kind: SourceBuffer, Buffer: u.Buffer}
		case u.Handle != nil:
			src = InputSource{Kind: SourceHandle, Handle: u.Handle}
		case u.Concat != nil:
			opts.Set("f", "concat")
			if !opts.Has("safe") {
				opts.Set("safe", 0)
			}
			src = InputSource{Kind: SourceConcat, Buffer: u.Concat.Listing()}
		case u.URL != "":
			if f, _ := opts.Get("f"); f == "lavfi" {
				src = InputSource{Kind: SourceFiltergraph}
			} else {
				src = InputSource{Kind: SourcePath}
			}
			url = u.URL
		default:
			return nil, fmt.Errorf("input #%d: no source given", i)
		}

		a.AddURL(ffargs.Input, url, opts, false)
		info[i] = src
	}
	return info, nil
}

// ProcessRawInputs registers one pipe-fed raw input per option set. An "ar"
// option marks an audio stream, otherwise the stream is video.
func (r *Resolver) ProcessRawInputs(a *ffargs.Args, inputOpts []*ffargs.Options, defaults *ffargs.Options) []InputSource {
	info := make([]InputSource, len(inputOpts))
	for i, opts := range inputOpts {
		merged := defaults.MergedWith(opts)
		a.AddURL(ffargs.Input, "", merged, false)
		mt := streamspec.MediaVideo
		if merged.Has("ar") {
			mt = streamspec.MediaAudio
		}
		info[i] = InputSource{Kind: SourcePipe, MediaType: mt}
	}
	return info
}

// VideoBufferInput builds the input options for raw video frames fed over a
// pipe: rate, pixel format from the element type and component count, and
// frame size.
func VideoBufferInput(rate string, dtype string, width, height, components int, opts *ffargs.Options) (*ffargs.Options, error) {
	if rate == "" && !opts.Has("r") {
		return nil, &IncompatibleOptionError{Option: "r", Reason: "video input rate must be specified"}
	}
	pixFmt, err := rawformat.DtypePixelFmt(dtype, components)
	if err != nil {
		return nil, err
	}
	out := ffargs.NewOptions().
		Set("f", "rawvideo").
		Set("pix_fmt", pixFmt).
		Set("s", [2]int{width, height})
	if rate != "" {
		out.Set("r", rate)
	}
	return out.Merge(opts), nil
}

// AudioBufferInput builds the input options for raw audio samples fed over
// a pipe.
func AudioBufferInput(rate int, dtype string, channels int, opts *ffargs.Options) (*ffargs.Options, error) {
	if rate == 0 && !opts.Has("ar") {
		return nil, &IncompatibleOptionError{Option: "ar", Reason: "audio input rate must be specified"}
	}
	sampleFmt, err := rawformat.DtypeSampleFmt(dtype)
	if err != nil {
		return nil, err
	}
	codec, format, err := rawformat.AudioCodec(sampleFmt)
	if err != nil {
		return nil, err
	}
	out := ffargs.NewOptions().
		Set("f", format).
		Set("c:a", codec).
		Set("sample_fmt", sampleFmt).
		Set("ac", channels)
	if rate != 0 {
		out.Set("ar", rate)
	}
	return out.Merge(opts), nil
}

// ConfigInputFG prepares a filtergraph expression used as an input. When
// the expression is a single source filter, positional args and any keyword
// options matching the filter's catalogue entry are applied to the filter;
// unmatched keywords pass through as ordinary input options. Multi-filter
// expressions and non-source filters reject positional arguments.
func (r *Resolver) ConfigInputFG(expr string, args []string, kwargs *ffargs.Options) (filtergraph.Expr, *ffargs.Options, error) {
	g, err := filtergraph.Parse(expr)
	if err != nil {
		return nil, nil, err
	}

	if len(g.Chains) != 1 || len(g.Chains[0].Filters) != 1 {
		if len(args) > 0 {
			return nil, nil, &IncompatibleOptionError{Option: "args",
				Reason: "a multi-filter input filtergraph cannot take ordered options"}
		}
		return g, kwargs, nil
	}

	f := g.Chains[0].Filters[0]
	info, err := r.cat.Lookup(f.Name)
	if err != nil {
		return nil, nil, err
	}
	if !info.Source() {
		return nil, nil, &IncompatibleOptionError{Option: f.Name,
			Reason: "filter is not a source filter"}
	}

	applied := f.Clone()
	applied.Args = append(applied.Args, args...)

	rest := ffargs.NewOptions()
	for _, k := range kwargs.Keys() {
		v, _ := kwargs.Get(k)
		matched := false
		for _, o := range info.Options {
			if o.Matches(k) {
				applied.WithOption(k, formatScalar(v))
				matched = true
				break
			}
		}
		if !matched {
			rest.Set(k, v)
		}
	}
	return applied, rest, nil
}
