package resolve

import (
	"context"
	"regexp"
	"strconv"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/ffmpeg"
	"github.com/backmassage/rawmux/internal/filtergraph"
	"github.com/backmassage/rawmux/internal/presets"
	"github.com/backmassage/rawmux/internal/probe"
	"github.com/backmassage/rawmux/internal/rawformat"
	"github.com/backmassage/rawmux/internal/streamspec"
)

// formatScalar renders an option value as option text.
func formatScalar(v any) string {
	if v == nil {
		return ""
	}
	return ffmpeg.FormatValue(v)
}

func optString(o *ffargs.Options, name string) string {
	v, ok := o.Get(name)
	if !ok {
		return ""
	}
	return formatScalar(v)
}

func optInt(o *ffargs.Options, name string) int {
	n, _ := strconv.Atoi(optString(o, name))
	return n
}

var sizeRe = regexp.MustCompile(`^(-?\d+)[x:](-?\d+)$`)

// parseSize interprets an "s" option value: "WxH" text or an integer pair.
func parseSize(v any) (w, h int, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, 0, false
	case [2]int:
		return x[0], x[1], true
	case []int:
		if len(x) == 2 {
			return x[0], x[1], true
		}
		return 0, 0, false
	default:
		m := sizeRe.FindStringSubmatch(formatScalar(v))
		if m == nil {
			return 0, 0, false
		}
		w, _ = strconv.Atoi(m[1])
		h, _ = strconv.Atoi(m[2])
		return w, h, true
	}
}

// firstMapValue returns the output's map option as a single specifier.
func firstMapValue(o *ffargs.Options) string {
	v, ok := o.Get("map")
	if !ok {
		return ""
	}
	vals := ffargs.MultiValue(v)
	if len(vals) == 0 {
		return ""
	}
	return formatScalar(vals[0])
}

// probeVideoStream returns the first video stream matching selectSpec, or
// false on probe failure (logged, not fatal).
func (r *Resolver) probeVideoStream(ctx context.Context, src probe.Source, selectSpec string) (probe.Stream, bool) {
	return r.probeStream(ctx, src, selectSpec, "video")
}

func (r *Resolver) probeAudioStream(ctx context.Context, src probe.Source, selectSpec string) (probe.Stream, bool) {
	return r.probeStream(ctx, src, selectSpec, "audio")
}

func (r *Resolver) probeStream(ctx context.Context, src probe.Source, selectSpec, codecType string) (probe.Stream, bool) {
	streams, err := r.prober.Streams(ctx, src, selectSpec)
	if err != nil {
		r.log.Warn("stream analysis failed", "url", src.URL, "error", err)
		return probe.Stream{}, false
	}
	for _, s := range streams {
		if s.CodecType == codecType {
			return s, true
		}
	}
	return probe.Stream{}, false
}

// BuildBasicVF rewrites plain video-adjustment output options (crop, flip,
// transpose, square_pixels, a negative-dimension s) into filter nodes
// appended to the output's vf chain, optionally followed by the
// alpha-removal overlay. Reports whether the vf option was added or
// changed.
func (r *Resolver) BuildBasicVF(a *ffargs.Args, removeAlpha bool, ofile int) (bool, error) {
	outopts := a.Outputs[ofile].Opts
	if outopts == nil {
		return false, nil
	}

	var fopts presets.VideoBasicOpts
	if v, ok := outopts.Del("crop"); ok {
		crop, err := intList(v)
		if err != nil {
			return false, &IncompatibleOptionError{Option: "crop", Reason: err.Error()}
		}
		fopts.Crop = crop
	}
	if v, ok := outopts.Del("flip"); ok {
		fopts.Flip = formatScalar(v)
	}
	if v, ok := outopts.Del("transpose"); ok {
		fopts.Transpose = formatScalar(v)
	}
	if v, ok := outopts.Del("square_pixels"); ok {
		fopts.SquarePixels = formatScalar(v)
	}

	if v, ok := outopts.Del("remove_alpha"); ok {
		removeAlpha = v == nil || formatScalar(v) != "0"
	}
	fillColor := ""
	if v, ok := outopts.Del("fill_color"); ok {
		fillColor = formatScalar(v)
		removeAlpha = true
	}

	// a non-positive dimension means the scale filter must compute it
	if v, ok := outopts.Get("s"); ok {
		if w, h, ok := parseSize(v); ok && (w <= 0 || h <= 0) {
			outopts.Del("s")
			fopts.Scale = []int{w, h}
		}
	}

	if !fopts.Any() && !removeAlpha {
		return false, nil
	}

	var vf filtergraph.Expr = filtergraph.NewChain()
	if v, ok := outopts.Del("filter:v"); ok {
		expr, err := filtergraph.AsExpr(v)
		if err != nil {
			return false, err
		}
		vf = expr
	} else if v, ok := outopts.Del("vf"); ok {
		expr, err := filtergraph.AsExpr(v)
		if err != nil {
			return false, err
		}
		vf = expr
	}

	if fopts.Any() {
		chain, err := presets.VideoBasicFilter(fopts)
		if err != nil {
			return false, err
		}
		combined, err := filtergraph.Append(r.cat, vf, chain)
		if err != nil {
			return false, err
		}
		vf = combined
	}

	if removeAlpha {
		if fillColor == "" {
			r.log.Warn("fill_color option not specified, using white background")
			fillColor = "white"
		}
		combined, err := filtergraph.Append(r.cat, vf, presets.RemoveVideoAlpha(fillColor))
		if err != nil {
			return false, err
		}
		vf = combined
	}

	outopts.Set("vf", vf)
	return true, nil
}

func intList(v any) ([]int, error) {
	switch x := v.(type) {
	case []int:
		return x, nil
	case [2]int:
		return x[:], nil
	case int:
		return []int{x}, nil
	}
	var out []int
	for _, part := range regexp.MustCompile(`[:x,]`).Split(formatScalar(v), -1) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// FinalizeVideoReadOpts completes output ofile for a raw video read: pixel
// format, frame size, and rate fill from explicit output options, then
// input options, then a live probe of the mapped input stream, then a
// synthetic source chain probed through any simple per-output filter. The
// output format is forced to rawvideo, and an alpha-removal filter is
// appended when the requested pixel format drops the input's alpha channel.
func (r *Resolver) FinalizeVideoReadOpts(ctx context.Context, a *ffargs.Args, ofile int, inputInfo []InputSource) (*MediaInfo, error) {
	outopts := a.Outputs[ofile].Opts
	outmap := firstMapValue(outopts)
	m, err := streamspec.ParseMap(outmap, 0)
	if err != nil {
		return nil, err
	}
	hasSimpleFilter := outopts.Has("vf") || outopts.Has("filter:v")

	rate := optString(outopts, "r")
	pixFmt := optString(outopts, "pix_fmt")
	outW, outH, haveSize := parseSize(func() any { v, _ := outopts.Get("s"); return v }())

	var inRate, inPix string
	var inW, inH int
	var fillColor string
	var alphaRequested, alphaDisabled bool
	if m.IsLink() {
		r.log.Warn("pre-analysis of complex filtergraph outputs is not available", "map", outmap)
	} else {
		// alpha handling is decided once, after the pixel formats are
		// known; stash the caller's request so the first rewrite pass
		// cannot consume it early
		if v, ok := outopts.Del("remove_alpha"); ok {
			if v == nil || formatScalar(v) != "0" {
				alphaRequested = true
			} else {
				alphaDisabled = true
			}
		}
		if v, ok := outopts.Del("fill_color"); ok {
			fillColor = formatScalar(v)
			alphaRequested = true
		}
		if _, err := r.BuildBasicVF(a, false, ofile); err != nil {
			return nil, err
		}

		ifile := m.FileIndex
		if ifile == streamspec.NoIndex {
			ifile = 0
		}
		inopts := a.Inputs[ifile].Opts
		inRate = optString(inopts, "r")
		inPix = optString(inopts, "pix_fmt")
		inW, inH, _ = parseSize(func() any { v, _ := inopts.Get("s"); return v }())

		if inRate == "" || inPix == "" || inW == 0 || inH == 0 {
			if src, ok := r.probeSource(inputInfo[ifile], a.Inputs[ifile].URL, inopts); ok {
				if st, ok := r.probeVideoStream(ctx, src, m.Stream.String()); ok {
					if inRate == "" {
						inRate = st.FrameRate()
					}
					if inPix == "" {
						inPix = st.PixFmt
					}
					if inW == 0 || inH == 0 {
						inW, inH = st.Width, st.Height
					}
				}
			}
		}

		if hasSimpleFilter {
			fv, ok := outopts.Get("filter:v")
			if !ok {
				fv, _ = outopts.Get("vf")
			}
			expr, err := filtergraph.AsExpr(fv)
			if err != nil {
				return nil, err
			}
			combined, err := filtergraph.Append(r.cat, presets.TempVideoSrc(inRate, inPix, inW, inH), expr)
			if err != nil {
				return nil, err
			}
			g, err := filtergraph.AsGraph(combined)
			if err != nil {
				return nil, err
			}
			if pads, err := g.OutputPads(r.cat, true); err == nil && len(pads) > 0 {
				if err := g.AddLabel(r.cat, "out0", filtergraph.OutputPad, pads[0]); err != nil {
					return nil, err
				}
			}
			if st, ok := r.probeVideoStream(ctx, probe.Filtergraph(g.String()), "0"); ok {
				inRate = st.FrameRate()
				inPix = st.PixFmt
				inW, inH = st.Width, st.Height
			}
		}
	}

	var dtype string
	ncomp := 0
	if pixFmt == "" {
		if inPix != "" {
			if pf, _, err := rawformat.PixelConfig(inPix, ""); err == nil {
				outopts.Set("pix_fmt", pf.Name)
				dtype, ncomp = pf.Dtype, pf.Components
			}
		}
	} else if inPix == "" {
		if pf, ok := rawformat.LookupPixelFormat(pixFmt); ok {
			dtype, ncomp = pf.Dtype, pf.Components
		}
	} else {
		pf, removeAlpha, err := rawformat.PixelConfig(inPix, pixFmt)
		if err != nil {
			return nil, err
		}
		dtype, ncomp = pf.Dtype, pf.Components
		if removeAlpha {
			alphaRequested = true
		}
	}

	if alphaRequested && !alphaDisabled {
		if fillColor != "" {
			outopts.Set("fill_color", fillColor)
		}
		if _, err := r.BuildBasicVF(a, true, ofile); err != nil {
			return nil, err
		}
	}

	outopts.Set("f", "rawvideo")

	if rate == "" {
		rate = inRate
	}
	if !haveSize || outW <= 0 || outH <= 0 {
		outW, outH = inW, inH
	}

	info := &MediaInfo{Dtype: dtype, Rate: rate}
	if outW > 0 && outH > 0 && ncomp > 0 {
		info.Shape = []int{outH, outW, ncomp}
	}
	return info, nil
}

// FinalizeAudioReadOpts completes output ofile for a raw audio read: sample
// rate, sample format, and channel count fill with the same priority order
// as video. A planar sample format downgrades to its interleaved
// equivalent, a missing format defaults to dbl, and the codec and raw
// container format derive from the final sample format.
func (r *Resolver) FinalizeAudioReadOpts(ctx context.Context, a *ffargs.Args, ofile int, inputInfo []InputSource) (*MediaInfo, error) {
	outopts := a.Outputs[ofile].Opts
	outmap := firstMapValue(outopts)
	m, err := streamspec.ParseMap(outmap, 0)
	if err != nil {
		return nil, err
	}

	rate := optString(outopts, "ar")
	sampleFmt := optString(outopts, "sample_fmt")
	channels := optInt(outopts, "ac")

	if rate == "" || sampleFmt == "" || channels == 0 {
		if m.IsLink() {
			r.log.Warn("pre-analysis of complex filtergraph outputs is not available", "map", outmap)
		} else {
			ifile := m.FileIndex
			if ifile == streamspec.NoIndex {
				ifile = 0
			}
			inopts := a.Inputs[ifile].Opts
			inRate := optString(inopts, "ar")
			inFmt := optString(inopts, "sample_fmt")
			inCh := optInt(inopts, "ac")

			if inRate == "" || inFmt == "" || inCh == 0 {
				if src, ok := r.probeSource(inputInfo[ifile], a.Inputs[ifile].URL, inopts); ok {
					if st, ok := r.probeAudioStream(ctx, src, m.Stream.String()); ok {
						if inRate == "" && st.SampleRate > 0 {
							inRate = strconv.Itoa(st.SampleRate)
						}
						if inFmt == "" {
							inFmt = st.SampleFmt
						}
						if inCh == 0 {
							inCh = st.Channels
						}
					}
				}
			}

			if outopts.Has("af") || outopts.Has("filter:a") {
				fv, ok := outopts.Get("filter:a")
				if !ok {
					fv, _ = outopts.Get("af")
				}
				expr, err := filtergraph.AsExpr(fv)
				if err != nil {
					return nil, err
				}
				inRateN, _ := strconv.Atoi(inRate)
				combined, err := filtergraph.Append(r.cat, presets.TempAudioSrc(inRateN, inFmt, inCh), expr)
				if err != nil {
					return nil, err
				}
				g, err := filtergraph.AsGraph(combined)
				if err != nil {
					return nil, err
				}
				if st, ok := r.probeAudioStream(ctx, probe.Filtergraph(g.String()), "0"); ok {
					if st.SampleRate > 0 {
						inRate = strconv.Itoa(st.SampleRate)
					}
					inFmt = st.SampleFmt
					inCh = st.Channels
				}
			}

			if rate == "" {
				rate = inRate
			}
			if sampleFmt == "" {
				sampleFmt = inFmt
			}
			if channels == 0 {
				channels = inCh
			}
		}
	}

	if sampleFmt == "" {
		r.log.Warn("sample format could not be determined, using dbl", "map", outmap)
		sampleFmt = "dbl"
		outopts.Set("sample_fmt", sampleFmt)
	} else if packed, planar := rawformat.Interleaved(sampleFmt); planar {
		r.log.Warn("planar sample format is not supported for raw audio, downgrading",
			"map", outmap, "from", sampleFmt, "to", packed)
		sampleFmt = packed
		outopts.Set("sample_fmt", sampleFmt)
	}

	codec, format, err := rawformat.AudioCodec(sampleFmt)
	if err != nil {
		return nil, err
	}
	outopts.Set("c:a", codec)
	outopts.Set("f", format)

	dtype, err := rawformat.AudioDtype(sampleFmt)
	if err != nil {
		return nil, err
	}

	info := &MediaInfo{Dtype: dtype, Rate: rate}
	if channels > 0 {
		info.Shape = []int{channels}
	}
	return info, nil
}

// FinalizeAVIReadOpts completes the first output for a multi-stream
// interleaved read: rawvideo in an avi container with per-stream pcm audio
// codecs. Reports whether grayscale streams carry an alpha channel, which
// decides the pixel format the reader must expect. Grayscale formats with
// and without alpha cannot be mixed in one container.
func (r *Resolver) FinalizeAVIReadOpts(a *ffargs.Args) (bool, error) {
	options := a.Outputs[0].Opts

	gray, ya := 0, 0
	for _, k := range options.FindStreamOptions("pix_fmt") {
		switch optString(options, k) {
		case "gray16le", "grayf32le":
			gray++
		case "ya8", "ya16le":
			ya++
		}
	}
	if gray > 0 && ya > 0 {
		return false, &IncompatibleOptionError{Option: "pix_fmt",
			Reason: "grayscale formats with and without alpha cannot be mixed"}
	}

	if !options.Has("pix_fmt") {
		options.Set("pix_fmt", "rgb24")
	}
	if !options.Has("sample_fmt") {
		options.Set("sample_fmt", "s16")
	}

	options.Set("f", "avi")
	options.Set("c:v", "rawvideo")

	for _, k := range options.FindStreamOptions("sample_fmt") {
		fmtName, rewritten := rawformat.Interleaved(optString(options, k))
		if rewritten {
			options.Set(k, fmtName)
		}
		codec, _, err := rawformat.AudioCodec(fmtName)
		if err != nil {
			return false, err
		}
		options.Set("c:a"+k[len("sample_fmt"):], codec)
	}

	return ya > 0, nil
}
