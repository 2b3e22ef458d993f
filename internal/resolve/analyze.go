package resolve

import (
	"context"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/filtergraph"
	"github.com/backmassage/rawmux/internal/probe"
	"github.com/backmassage/rawmux/internal/streamspec"
)

// HasFiltergraph reports whether any filtergraph affecting the given media
// type is in effect: a global complex-filter option, an input typed as a
// lavfi source, or an output filter option (vf/af or filter[:spec]) whose
// stream specifier does not name the opposite media type.
func HasFiltergraph(a *ffargs.Args, media streamspec.MediaType) bool {
	if a.Global.Has("filter_complex") || a.Global.Has("lavfi") {
		return true
	}
	for _, in := range a.Inputs {
		if f, _ := in.Opts.Get("f"); f == "lavfi" {
			return true
		}
	}

	short := "vf"
	other := "a"
	if media == streamspec.MediaAudio {
		short, other = "af", "v"
	}
	for _, out := range a.Outputs {
		for _, k := range out.Opts.Keys() {
			if k == short || k == "filter" {
				return true
			}
			if rest, ok := strings.CutPrefix(k, "filter:"); ok && !strings.HasPrefix(rest, other) {
				return true
			}
		}
	}
	return false
}

var outLabelRe = regexp.MustCompile(`^out(\d+)$`)

// FGOutput is one externally mappable complex-filtergraph output pad.
type FGOutput struct {
	Key       string // map option value, "[label]"
	MediaType streamspec.MediaType
}

// AnalyzeFGOutputs lists the mappable output pads of the complex
// filtergraphs in the global options, auto-labeling any unlabeled output
// pad as out<N> with the smallest unused integer. Existing labels are never
// renumbered, and out-labeled pads consumed as another graph's input are
// not externally mappable. The filter_complex option value is rewritten to
// the parsed graph objects.
func (r *Resolver) AnalyzeFGOutputs(a *ffargs.Args) ([]FGOutput, error) {
	v, ok := a.Global.Get("filter_complex")
	if !ok {
		return nil, nil
	}

	items := ffargs.MultiValue(v)
	graphs := make([]*filtergraph.Graph, len(items))
	for i, it := range items {
		g, err := filtergraph.AsGraph(it)
		if err != nil {
			return nil, err
		}
		graphs[i] = g
	}

	type outPad struct {
		label string
		graph int
		pad   filtergraph.PadIndex
	}
	var labeled []outPad
	usedN := map[int]bool{}
	unlabeledCount := 0
	for gi, g := range graphs {
		pads, err := g.OutputPads(r.cat, false)
		if err != nil {
			return nil, err
		}
		for _, p := range pads {
			label := g.Label(filtergraph.OutputPad, p)
			if label == "" {
				unlabeledCount++
				continue
			}
			if m := outLabelRe.FindStringSubmatch(label); m != nil {
				n, _ := strconv.Atoi(m[1])
				usedN[n] = true
				labeled = append(labeled, outPad{label, gi, p})
			}
		}
	}

	// an out-labeled pad wired into another graph is an internal connection
	if len(graphs) > 1 {
		consumed := map[string]bool{}
		for _, g := range graphs {
			for _, l := range g.InputLabels() {
				consumed[l] = true
			}
		}
		kept := labeled[:0]
		for _, op := range labeled {
			if !consumed[op.label] {
				kept = append(kept, op)
			}
		}
		labeled = kept
	}

	if unlabeledCount > 0 {
		next := 0
		for gi, g := range graphs {
			pads, err := g.OutputPads(r.cat, true)
			if err != nil {
				return nil, err
			}
			for _, p := range pads {
				for usedN[next] {
					next++
				}
				label := "out" + strconv.Itoa(next)
				usedN[next] = true
				if err := g.AddLabel(r.cat, label, filtergraph.OutputPad, p); err != nil {
					return nil, err
				}
				labeled = append(labeled, outPad{label, gi, p})
			}
		}
	}

	out := make([]FGOutput, 0, len(labeled))
	for _, op := range labeled {
		mt, err := graphs[op.graph].PadMediaType(r.cat, filtergraph.OutputPad, op.pad)
		if err != nil {
			return nil, err
		}
		out = append(out, FGOutput{Key: "[" + op.label + "]", MediaType: mt})
	}

	stored := make([]any, len(graphs))
	for i, g := range graphs {
		stored[i] = g
	}
	a.Global.Set("filter_complex", stored)
	return out, nil
}

// AutoMap maps every available stream: all output pads of the complex
// filtergraphs when one is present, otherwise every audio and video stream
// of every input in file order, with per-type counters restarting at zero
// on each file.
func (r *Resolver) AutoMap(ctx context.Context, a *ffargs.Args, inputInfo []InputSource) ([]OutputStream, error) {
	if a.Global.Has("filter_complex") {
		fgOuts, err := r.AnalyzeFGOutputs(a)
		if err != nil {
			return nil, err
		}
		out := make([]OutputStream, len(fgOuts))
		for i, fo := range fgOuts {
			out[i] = OutputStream{
				Key: fo.Key, Dst: DstPipe, MediaType: fo.MediaType,
				FileIndex: NoFile, StreamID: NoFile,
			}
		}
		return out, nil
	}

	var out []OutputStream
	for i := range a.Inputs {
		counters := map[streamspec.MediaType]int{}
		streams := r.retrieveInputStreamIDs(ctx, inputInfo[i], a.Inputs[i].URL, a.Inputs[i].Opts, "")
		for _, s := range streams {
			j := counters[s.mediaType]
			counters[s.mediaType] = j + 1
			key := strconv.Itoa(i) + ":" + streamspec.TypeLetter(s.mediaType) + ":" + strconv.Itoa(j)
			out = append(out, OutputStream{
				Key: key, Dst: DstPipe, MediaType: s.mediaType,
				FileIndex: i, StreamID: s.index,
			})
		}
	}
	return out, nil
}

// ResolveRawOutputStreams resolves caller-supplied map option values into
// output stream descriptions. When every value pins down one concrete
// stream (type letter and index both given), no probing happens; otherwise
// link labels resolve against the complex filtergraphs and partial
// specifiers expand by probing the named input, keying multi-stream matches
// as "file:stream".
func (r *Resolver) ResolveRawOutputStreams(ctx context.Context, a *ffargs.Args, inputInfo []InputSource, streams []string) ([]OutputStream, error) {
	defaultFile := streamspec.NoIndex
	if len(inputInfo) == 1 {
		defaultFile = 0
	}

	maps := make([]streamspec.Map, len(streams))
	allQualified := true
	for i, spec := range streams {
		m, err := streamspec.ParseMap(spec, defaultFile)
		if err != nil {
			return nil, err
		}
		maps[i] = m
		if !m.FullyQualified() {
			allQualified = false
		}
	}

	if allQualified {
		out := make([]OutputStream, len(maps))
		for i, m := range maps {
			if m.FileIndex == streamspec.NoIndex {
				return nil, &AmbiguousMappingError{Spec: streams[i],
					Reason: "no file index given and more than one input defined"}
			}
			mt, _ := m.Stream.MediaType()
			out[i] = OutputStream{
				Key: m.String(), Dst: DstPipe, UserMap: streams[i],
				MediaType: mt, FileIndex: m.FileIndex, StreamID: NoFile,
			}
		}
		return out, nil
	}

	var fgOuts map[string]streamspec.MediaType
	for _, m := range maps {
		if m.IsLink() {
			list, err := r.AnalyzeFGOutputs(a)
			if err != nil {
				return nil, err
			}
			fgOuts = make(map[string]streamspec.MediaType, len(list))
			for _, fo := range list {
				fgOuts[fo.Key] = fo.MediaType
			}
			break
		}
	}

	var out []OutputStream
	for i, m := range maps {
		spec := streams[i]

		if m.IsLink() {
			mt, ok := fgOuts[m.String()]
			if !ok {
				return nil, &filtergraph.PadNotFoundError{Label: m.LinkLabel, Side: filtergraph.OutputPad}
			}
			out = append(out, OutputStream{
				Key: m.String(), Dst: DstPipe, UserMap: spec,
				MediaType: mt, FileIndex: NoFile, StreamID: NoFile,
			})
			continue
		}

		fileIndex := m.FileIndex
		if fileIndex == streamspec.NoIndex {
			return nil, &AmbiguousMappingError{Spec: spec,
				Reason: "no file index given and more than one input defined"}
		}
		if fileIndex >= len(inputInfo) {
			return nil, &AmbiguousMappingError{Spec: spec,
				Reason: "input #" + strconv.Itoa(fileIndex) + " is not defined"}
		}
		matches := r.retrieveInputStreamIDs(ctx, inputInfo[fileIndex],
			a.Inputs[fileIndex].URL, a.Inputs[fileIndex].Opts, m.Stream.String())
		if len(matches) == 0 {
			r.log.Warn("stream specifier matched no streams", "map", spec)
		}
		for _, s := range matches {
			key := spec
			if len(matches) > 1 {
				key = strconv.Itoa(fileIndex) + ":" + strconv.Itoa(s.index)
			}
			out = append(out, OutputStream{
				Key: key, Dst: DstPipe, UserMap: spec,
				MediaType: s.mediaType, FileIndex: fileIndex, StreamID: s.index,
			})
		}
	}
	return out, nil
}

type inputStream struct {
	index     int
	mediaType streamspec.MediaType
}

// retrieveInputStreamIDs probes an input for its audio and video streams.
// Probe failures degrade to an empty result with a warning; resolution
// continues without the streams.
func (r *Resolver) retrieveInputStreamIDs(ctx context.Context, info InputSource, url string, opts *ffargs.Options, selectSpec string) []inputStream {
	src, ok := r.probeSource(info, url, opts)
	if !ok {
		return nil
	}
	basic, err := r.prober.StreamTypes(ctx, src, selectSpec)
	if err != nil {
		r.log.Warn("stream probe failed", "url", url, "error", err)
		return nil
	}
	var out []inputStream
	for _, s := range basic {
		switch s.CodecType {
		case "video":
			out = append(out, inputStream{s.Index, streamspec.MediaVideo})
		case "audio":
			out = append(out, inputStream{s.Index, streamspec.MediaAudio})
		}
	}
	return out
}

// probeSource maps an input source to a probeable description. Pipe-fed raw
// inputs and non-seekable handles cannot be probed.
func (r *Resolver) probeSource(info InputSource, url string, opts *ffargs.Options) (probe.Source, bool) {
	format := ""
	if f, ok := opts.Get("f"); ok {
		if s, ok := f.(string); ok {
			format = s
		}
	}
	switch info.Kind {
	case SourcePath:
		return probe.Source{URL: url, Format: format}, true
	case SourceFiltergraph:
		return probe.Source{URL: url, Format: "lavfi"}, true
	case SourceBuffer, SourceConcat:
		return probe.Source{Format: format, Data: info.Buffer}, true
	case SourceHandle:
		rs, ok := info.Handle.(io.ReadSeeker)
		if !ok {
			r.log.Warn("input handle is not seekable, cannot probe")
			return probe.Source{}, false
		}
		data, err := io.ReadAll(rs)
		if err != nil {
			r.log.Warn("failed to read input handle for probing", "error", err)
			return probe.Source{}, false
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			r.log.Warn("failed to rewind input handle after probing", "error", err)
			return probe.Source{}, false
		}
		return probe.Source{Format: format, Data: data}, true
	default:
		return probe.Source{}, false
	}
}

// AddFiltergraph appends a complex filtergraph to the global options and
// maps its labeled output pads on output ofile. With automap, every output
// label of the graph is mapped; explicit maps override.
func AddFiltergraph(a *ffargs.Args, g *filtergraph.Graph, maps []string, automap bool, ofile int) error {
	if ofile >= len(a.Outputs) {
		return &AmbiguousMappingError{Spec: strconv.Itoa(ofile), Reason: "output is not defined"}
	}

	if automap && maps == nil {
		for _, l := range g.OutputLabels() {
			maps = append(maps, "["+l+"]")
		}
	}

	if existing, ok := a.Global.Get("filter_complex"); ok {
		a.Global.Set("filter_complex", append(ffargs.MultiValue(existing), g))
	} else {
		a.Global.Set("filter_complex", g)
	}

	if len(maps) == 0 {
		return nil
	}
	out := a.Outputs[ofile].Opts
	if out == nil {
		out = ffargs.NewOptions()
		a.Outputs[ofile].Opts = out
	}
	var merged []any
	if existing, ok := out.Get("map"); ok {
		merged = ffargs.MultiValue(existing)
	}
	for _, m := range maps {
		merged = append(merged, m)
	}
	out.Set("map", merged)
	return nil
}
