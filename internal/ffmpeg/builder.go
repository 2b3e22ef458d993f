package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/rawmux/internal/ffargs"
)

// Build serializes a completed argument specification into the ffmpeg
// command line: global options first, then each input's options followed by
// its -i url, then each output's options followed by its url.
func Build(a *ffargs.Args) []string {
	args := make([]string, 0, 64)

	args = appendOpts(args, a.Global)
	for i := range a.Inputs {
		args = appendOpts(args, a.Inputs[i].Opts)
		args = append(args, "-i", a.Inputs[i].URL)
	}
	for i := range a.Outputs {
		args = appendOpts(args, a.Outputs[i].Opts)
		args = append(args, a.Outputs[i].URL)
	}
	return args
}

func appendOpts(args []string, o *ffargs.Options) []string {
	for _, name := range o.Keys() {
		v, _ := o.Get(name)
		if v == nil {
			args = append(args, "-"+name)
			continue
		}
		// multi-valued options repeat the flag
		if vs, ok := v.([]any); ok {
			for _, e := range vs {
				args = append(args, "-"+name, FormatValue(e))
			}
			continue
		}
		if vs, ok := v.([]string); ok {
			for _, e := range vs {
				args = append(args, "-"+name, e)
			}
			continue
		}
		args = append(args, "-"+name, FormatValue(v))
	}
	return args
}

// FormatValue renders a single option value the way ffmpeg expects it on the
// command line. Integer pairs become WxH; filtergraph values use their
// textual form via Stringer.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case [2]int:
		return strconv.Itoa(x[0]) + "x" + strconv.Itoa(x[1])
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, "x")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
