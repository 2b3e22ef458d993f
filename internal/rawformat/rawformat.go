// Package rawformat maps between ffmpeg raw pixel/sample formats and the
// element type and shape of the buffers they occupy.
package rawformat

import (
	"fmt"
	"strings"
)

// PixelFormat describes one rawvideo pixel format the reader can deliver.
type PixelFormat struct {
	Name       string
	Components int
	Dtype      string // element type tag: u8, u16, f32
	HasAlpha   bool
}

// pixelFormats is keyed by ffmpeg pix_fmt name. Only formats that map to a
// dense component-per-sample layout are listed; everything else must be
// converted before rawvideo output.
var pixelFormats = map[string]PixelFormat{
	"gray":      {"gray", 1, "u8", false},
	"ya8":       {"ya8", 2, "u8", true},
	"gray16le":  {"gray16le", 1, "u16", false},
	"ya16le":    {"ya16le", 2, "u16", true},
	"grayf32le": {"grayf32le", 1, "f32", false},
	"rgb24":     {"rgb24", 3, "u8", false},
	"rgba":      {"rgba", 4, "u8", true},
	"rgb48le":   {"rgb48le", 3, "u16", false},
	"rgba64le":  {"rgba64le", 4, "u16", true},
}

// withoutAlpha maps an alpha-carrying format to its opaque counterpart.
var withoutAlpha = map[string]string{
	"ya8":      "gray",
	"ya16le":   "gray16le",
	"rgba":     "rgb24",
	"rgba64le": "rgb48le",
}

// LookupPixelFormat returns the descriptor for a supported raw pixel format.
func LookupPixelFormat(name string) (PixelFormat, bool) {
	pf, ok := pixelFormats[name]
	return pf, ok
}

// alphaFamilies are the pix_fmt name stems that carry an alpha plane.
var alphaFamilies = []string{"rgba", "bgra", "argb", "abgr", "yuva", "gbrap", "ya"}

// HasAlpha reports whether the pixel format carries an alpha component.
// Formats outside the raw table fall back to matching the ffmpeg naming
// families that denote alpha planes.
func HasAlpha(name string) bool {
	if pf, ok := pixelFormats[name]; ok {
		return pf.HasAlpha
	}
	for _, fam := range alphaFamilies {
		if strings.HasPrefix(name, fam) {
			return true
		}
	}
	return false
}

// PixelConfig resolves the output pixel format for a raw read. inFmt is the
// format the source decodes to; outFmt is the caller's requested format, or
// "" to derive one from inFmt. It reports whether an alpha-removal filter
// must be inserted to honor the request.
func PixelConfig(inFmt, outFmt string) (pf PixelFormat, removeAlpha bool, err error) {
	if outFmt == "" {
		outFmt = deriveOutFormat(inFmt)
	}
	pf, ok := pixelFormats[outFmt]
	if !ok {
		return PixelFormat{}, false, fmt.Errorf("unsupported raw pixel format %q", outFmt)
	}
	removeAlpha = HasAlpha(inFmt) && !pf.HasAlpha
	return pf, removeAlpha, nil
}

// deriveOutFormat picks the closest raw format for an arbitrary decoder
// format: grayscale stays grayscale, alpha is preserved, everything else
// becomes packed RGB.
func deriveOutFormat(inFmt string) string {
	if _, ok := pixelFormats[inFmt]; ok {
		return inFmt
	}
	switch {
	case strings.HasPrefix(inFmt, "gray"):
		return "gray"
	case HasAlpha(inFmt):
		return "rgba"
	default:
		return "rgb24"
	}
}

// audioFormats maps interleaved sample formats to their pcm codec, rawaudio
// container format, and element type.
var audioFormats = map[string]struct {
	codec  string
	format string
	dtype  string
}{
	"u8":  {"pcm_u8", "u8", "u8"},
	"s16": {"pcm_s16le", "s16le", "i16"},
	"s32": {"pcm_s32le", "s32le", "i32"},
	"s64": {"pcm_s64le", "s64le", "i64"},
	"flt": {"pcm_f32le", "f32le", "f32"},
	"dbl": {"pcm_f64le", "f64le", "f64"},
}

// planarToPacked rewrites a planar sample format to its interleaved
// counterpart; raw pcm output is always interleaved.
var planarToPacked = map[string]string{
	"u8p":  "u8",
	"s16p": "s16",
	"s32p": "s32",
	"s64p": "s64",
	"fltp": "flt",
	"dblp": "dbl",
}

// Interleaved returns the interleaved form of a sample format and whether a
// planar-to-packed rewrite happened.
func Interleaved(sampleFmt string) (string, bool) {
	if packed, ok := planarToPacked[sampleFmt]; ok {
		return packed, true
	}
	return sampleFmt, false
}

// AudioCodec returns the pcm codec and container format for an interleaved
// sample format.
func AudioCodec(sampleFmt string) (codec, format string, err error) {
	af, ok := audioFormats[sampleFmt]
	if !ok {
		return "", "", fmt.Errorf("unsupported raw sample format %q", sampleFmt)
	}
	return af.codec, af.format, nil
}

// AudioDtype returns the element type tag for an interleaved sample format.
func AudioDtype(sampleFmt string) (string, error) {
	af, ok := audioFormats[sampleFmt]
	if !ok {
		return "", fmt.Errorf("unsupported raw sample format %q", sampleFmt)
	}
	return af.dtype, nil
}

// DtypeSampleFmt is the inverse of AudioDtype, used when the caller
// describes a buffer by element type instead of ffmpeg format name.
func DtypeSampleFmt(dtype string) (string, error) {
	for fmtName, af := range audioFormats {
		if af.dtype == dtype {
			return fmtName, nil
		}
	}
	return "", fmt.Errorf("no raw sample format for element type %q", dtype)
}

// ItemSize returns the width in bytes of one element of the given type tag
// (u8, i16, u16, i32, f32, i64, f64), or 0 for an unknown tag.
func ItemSize(dtype string) int {
	switch dtype {
	case "u8", "i8":
		return 1
	case "u16", "i16":
		return 2
	case "u32", "i32", "f32":
		return 4
	case "u64", "i64", "f64":
		return 8
	default:
		return 0
	}
}

// DtypePixelFmt picks the pixel format for a raw video buffer described by
// element type and component count.
func DtypePixelFmt(dtype string, components int) (string, error) {
	for name, pf := range pixelFormats {
		if pf.Dtype == dtype && pf.Components == components {
			return name, nil
		}
	}
	return "", fmt.Errorf("no raw pixel format for %d x %s components", components, dtype)
}
