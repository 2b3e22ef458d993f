package filtergraph

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/backmassage/rawmux/internal/streamspec"
)

// Dynamic marks a pad count that depends on the node's option values.
const Dynamic = -1

// MediaType aliases the streamspec media type for pad typing.
type MediaType = streamspec.MediaType

// OptionInfo describes one declared option of a filter, in declaration
// order, so positional arguments can be matched to option names.
type OptionInfo struct {
	Name    string
	Aliases []string
	Default string
}

// Matches reports whether name is the option's canonical name or an alias.
func (o OptionInfo) Matches(name string) bool {
	if o.Name == name {
		return true
	}
	for _, a := range o.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// padCount describes how an option-dependent pad count is resolved: the
// option (by any of its names, or positionally) holds an integer, with a
// default when absent and a constant offset (e.g. afir adds one filter input
// on top of nbirs).
type padCount struct {
	names []string
	pos   int
	def   int
	add   int
}

// FilterInfo is the immutable catalogue record of one filter.
type FilterInfo struct {
	Name    string
	In, Out int // fixed pad counts, or Dynamic
	TypeIn  streamspec.MediaType
	TypeOut streamspec.MediaType
	InOpt   padCount
	OutOpt  padCount
	Options []OptionInfo
}

// Source reports whether the filter generates output with no input pads.
func (fi FilterInfo) Source() bool { return fi.In == 0 }

// Catalogue is a read-only lookup table of filter metadata keyed by
// canonical filter name. Load one from the external tool's self-description
// with ParseDescription, or use Default.
type Catalogue struct {
	byName map[string]FilterInfo
}

// Lookup returns the catalogue record for name.
func (c *Catalogue) Lookup(name string) (FilterInfo, error) {
	fi, ok := c.byName[name]
	if !ok {
		return FilterInfo{}, &UnknownFilterError{Name: name}
	}
	return fi, nil
}

// NumInputs resolves the input pad count of a filter node.
func (c *Catalogue) NumInputs(f *Filter) (int, error) {
	fi, err := c.Lookup(f.Name)
	if err != nil {
		return 0, err
	}
	if f.Name == "concat" {
		return concatSegments(f) * concatPerSegment(f), nil
	}
	if fi.In != Dynamic {
		return fi.In, nil
	}
	return resolvePadCount(f, fi.InOpt), nil
}

// NumOutputs resolves the output pad count of a filter node.
func (c *Catalogue) NumOutputs(f *Filter) (int, error) {
	fi, err := c.Lookup(f.Name)
	if err != nil {
		return 0, err
	}
	if f.Name == "concat" {
		return concatPerSegment(f), nil
	}
	if fi.Out != Dynamic {
		return fi.Out, nil
	}
	return resolvePadCount(f, fi.OutOpt), nil
}

// PadMediaType reports the media type a filter node consumes or emits on the
// given side. An empty type means the filter is media-agnostic.
func (c *Catalogue) PadMediaType(f *Filter, side PadSide) (streamspec.MediaType, error) {
	fi, err := c.Lookup(f.Name)
	if err != nil {
		return "", err
	}
	if side == InputPad {
		return fi.TypeIn, nil
	}
	return fi.TypeOut, nil
}

func resolvePadCount(f *Filter, pc padCount) int {
	n := pc.def
	if v, ok := f.Option(pc.pos, pc.names...); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			n = i
		}
	}
	return n + pc.add
}

// concat wires n segments of (v video + a audio) streams each: n*(v+a)
// inputs, v+a outputs.
func concatSegments(f *Filter) int {
	n := 2
	if v, ok := f.Option(0, "n"); ok {
		if i, err := strconv.Atoi(v); err == nil {
			n = i
		}
	}
	return n
}

func concatPerSegment(f *Filter) int {
	v, a := 1, 0
	if s, ok := f.Option(1, "v"); ok {
		if i, err := strconv.Atoi(s); err == nil {
			v = i
		}
	}
	if s, ok := f.Option(2, "a"); ok {
		if i, err := strconv.Atoi(s); err == nil {
			a = i
		}
	}
	return v + a
}

// count builds a padCount; the first name doubles as the canonical option.
func count(pos, def, add int, names ...string) padCount {
	return padCount{names: names, pos: pos, def: def, add: add}
}

func opt(name string, def string, aliases ...string) OptionInfo {
	return OptionInfo{Name: name, Aliases: aliases, Default: def}
}

const (
	video = streamspec.MediaVideo
	audio = streamspec.MediaAudio
)

// builtin is the fallback catalogue covering the filters the resolution
// engine and presets rely on. ParseDescription overlays live data on top.
var builtin = map[string]FilterInfo{
	// sources
	"color": {In: 0, Out: 1, TypeOut: video, Options: []OptionInfo{
		opt("color", "black", "c"), opt("size", "320x240", "s"),
		opt("rate", "25", "r"), opt("duration", "-0.000001", "d"), opt("sar", "1/1"),
	}},
	"testsrc": {In: 0, Out: 1, TypeOut: video, Options: []OptionInfo{
		opt("size", "320x240", "s"), opt("rate", "25", "r"),
		opt("duration", "-0.000001", "d"), opt("sar", "1/1"), opt("decimals", "0", "n"),
	}},
	"testsrc2": {In: 0, Out: 1, TypeOut: video, Options: []OptionInfo{
		opt("size", "320x240", "s"), opt("rate", "25", "r"),
		opt("duration", "-0.000001", "d"), opt("sar", "1/1"), opt("alpha", "255"),
	}},
	"smptebars": {In: 0, Out: 1, TypeOut: video, Options: []OptionInfo{
		opt("size", "320x240", "s"), opt("rate", "25", "r"),
		opt("duration", "-0.000001", "d"), opt("sar", "1/1"),
	}},
	"anullsrc": {In: 0, Out: 1, TypeOut: audio, Options: []OptionInfo{
		opt("channel_layout", "stereo", "cl"), opt("sample_rate", "44100", "r"),
		opt("nb_samples", "1024", "n"), opt("duration", "-0.000001", "d"),
	}},
	"sine": {In: 0, Out: 1, TypeOut: audio, Options: []OptionInfo{
		opt("frequency", "440", "f"), opt("beep_factor", "0", "b"),
		opt("sample_rate", "44100", "r"), opt("duration", "0", "d"),
		opt("samples_per_frame", "1024"),
	}},
	"anoisesrc": {In: 0, Out: 1, TypeOut: audio, Options: []OptionInfo{
		opt("sample_rate", "48000", "r"), opt("amplitude", "1", "a"),
		opt("duration", "0", "d"), opt("color", "white", "colour", "c"),
		opt("seed", "-1", "s"), opt("nb_samples", "1024", "n"),
	}},

	// video, fixed pads
	"scale":     {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"crop":      {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"pad":       {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"hflip":     {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"vflip":     {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"transpose": {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"setsar":    {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"setdar":    {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"format":    {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"negate":    {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"yadif":     {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"fps":       {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"trim":      {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"setpts":    {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"null":      {In: 1, Out: 1, TypeIn: video, TypeOut: video},
	"overlay":   {In: 2, Out: 1, TypeIn: video, TypeOut: video},
	"scale2ref": {In: 2, Out: 2, TypeIn: video, TypeOut: video},

	// audio, fixed pads
	"aformat":   {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},
	"aresample": {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},
	"atrim":     {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},
	"asetpts":   {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},
	"volume":    {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},
	"loudnorm":  {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},
	"pan":       {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},
	"anull":     {In: 1, Out: 1, TypeIn: audio, TypeOut: audio},

	// option-dependent pad counts
	"split":       {In: 1, Out: Dynamic, TypeIn: video, TypeOut: video, OutOpt: count(0, 2, 0, "outputs")},
	"asplit":      {In: 1, Out: Dynamic, TypeIn: audio, TypeOut: audio, OutOpt: count(0, 2, 0, "outputs")},
	"hstack":      {In: Dynamic, Out: 1, TypeIn: video, TypeOut: video, InOpt: count(0, 2, 0, "inputs")},
	"vstack":      {In: Dynamic, Out: 1, TypeIn: video, TypeOut: video, InOpt: count(0, 2, 0, "inputs")},
	"xstack":      {In: Dynamic, Out: 1, TypeIn: video, TypeOut: video, InOpt: count(0, 2, 0, "inputs")},
	"amix":        {In: Dynamic, Out: 1, TypeIn: audio, TypeOut: audio, InOpt: count(0, 2, 0, "inputs")},
	"amerge":      {In: Dynamic, Out: 1, TypeIn: audio, TypeOut: audio, InOpt: count(0, 2, 0, "inputs")},
	"interleave":  {In: Dynamic, Out: 1, TypeIn: video, TypeOut: video, InOpt: count(0, 2, 0, "nb_inputs", "n")},
	"ainterleave": {In: Dynamic, Out: 1, TypeIn: audio, TypeOut: audio, InOpt: count(0, 2, 0, "nb_inputs", "n")},
	"afir":        {In: Dynamic, Out: 1, TypeIn: audio, TypeOut: audio, InOpt: count(-1, 1, 1, "nbirs")},
	"concat":      {In: Dynamic, Out: Dynamic},
}

var defaultCatalogue = func() *Catalogue {
	m := make(map[string]FilterInfo, len(builtin))
	for name, fi := range builtin {
		fi.Name = name
		m[name] = fi
	}
	return &Catalogue{byName: m}
}()

// Default returns the built-in catalogue.
func Default() *Catalogue { return defaultCatalogue }

// descLine matches one filter line of `ffmpeg -filters` output, e.g.
// " T.C scale            V->V    Scale the input video size and/or convert the image format."
var descLine = regexp.MustCompile(`^\s*[TSC.]{3}\s+(\w+)\s+([AVN|]+)->([AVN|]+)\s`)

// ParseDescription builds a catalogue from the text of `ffmpeg -filters`,
// overlaying the pad-side data it reports onto the built-in option metadata.
// Filters the description does not mention remain available from the
// built-in table.
func ParseDescription(text string) *Catalogue {
	m := make(map[string]FilterInfo, len(builtin))
	for name, fi := range builtin {
		fi.Name = name
		m[name] = fi
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		g := descLine.FindStringSubmatch(sc.Text())
		if g == nil {
			continue
		}
		name := g[1]
		fi, known := m[name]
		if !known {
			fi = FilterInfo{Name: name}
			fi.In, fi.TypeIn = parsePadSpec(g[2])
			fi.Out, fi.TypeOut = parsePadSpec(g[3])
			if fi.In == Dynamic && fi.InOpt.names == nil {
				fi.InOpt = count(0, 2, 0, "inputs")
			}
			if fi.Out == Dynamic && fi.OutOpt.names == nil {
				fi.OutOpt = count(0, 2, 0, "outputs")
			}
		}
		m[name] = fi
	}
	return &Catalogue{byName: m}
}

// parsePadSpec decodes one side of the "V->V" pad notation: "|" no pads,
// "N" option-dependent, otherwise one letter per pad.
func parsePadSpec(s string) (int, streamspec.MediaType) {
	if s == "|" {
		return 0, ""
	}
	if strings.Contains(s, "N") {
		return Dynamic, ""
	}
	var t streamspec.MediaType
	switch {
	case strings.Count(s, "V") == len(s):
		t = video
	case strings.Count(s, "A") == len(s):
		t = audio
	}
	return len(s), t
}
