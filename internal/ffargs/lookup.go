package ffargs

import (
	"fmt"
	"strconv"
	"strings"
)

// NoStream marks an absent stream index in option queries.
const NoStream = -1

// StreamGet looks up a possibly stream-qualified option by decreasing
// specificity: "name:type:index", "name:type", then "name". The first
// present value wins. streamType "" or streamIndex NoStream drop the
// corresponding levels.
func (o *Options) StreamGet(name, streamType string, streamIndex int) (any, bool) {
	if o == nil {
		return nil, false
	}
	if streamType != "" {
		if streamIndex != NoStream {
			if v, ok := o.Get(name + ":" + streamType + ":" + strconv.Itoa(streamIndex)); ok {
				return v, true
			}
		}
		if v, ok := o.Get(name + ":" + streamType); ok {
			return v, true
		}
	}
	return o.Get(name)
}

// GetOption retrieves an option from the command specification. For
// Global the file and stream qualifiers are ignored. Returns nil when the
// option is absent anywhere along the specificity chain.
func GetOption(a *Args, t Target, name string, fileID int, streamType string, streamIndex int) any {
	if a == nil {
		return nil
	}
	if t == Global {
		v, _ := a.Global.Get(name)
		return v
	}
	files := *a.list(t)
	if fileID < 0 || fileID >= len(files) {
		return nil
	}
	v, _ := files[fileID].Opts.StreamGet(name, streamType, streamIndex)
	return v
}

// MergeUserOptions shallow-merges caller-supplied options into the global
// option set or into the options of file fileIndex; caller's values win on
// collision. Keys not mentioned keep their value and position.
func MergeUserOptions(a *Args, t Target, user *Options, fileIndex int) error {
	if t == Global {
		a.Global = a.Global.MergedWith(user)
		return nil
	}
	files := a.list(t)
	if fileIndex < 0 || fileIndex >= len(*files) {
		return fmt.Errorf("%ss list does not have file #%d", t, fileIndex)
	}
	e := &(*files)[fileIndex]
	e.Opts = e.Opts.MergedWith(user)
	return nil
}

// FindStreamOptions returns, in insertion order, every key equal to name or
// qualified from it by a stream specifier ("name", "name:a", "name:a:2").
func (o *Options) FindStreamOptions(name string) []string {
	if o == nil {
		return nil
	}
	var keys []string
	for _, k := range o.keys {
		if k == name || strings.HasPrefix(k, name+":") {
			keys = append(keys, k)
		}
	}
	return keys
}

// inputSuffix is the caller-facing naming convention routing keyword options
// to inputs: "ss_in" applies to every input, "ss_in2" to input #2 only.
const inputSuffix = "_in"

// SplitInputOptions removes every "_in"/"_in<N>"-suffixed option from opts
// and returns the blanket input options and the per-input overrides keyed by
// input index. opts is modified in place.
func SplitInputOptions(opts *Options) (blanket *Options, perInput map[int]*Options) {
	blanket = NewOptions()
	perInput = map[int]*Options{}
	if opts == nil {
		return blanket, perInput
	}
	for _, k := range opts.Keys() {
		i := strings.LastIndex(k, inputSuffix)
		if i <= 0 {
			continue
		}
		base, tail := k[:i], k[i+len(inputSuffix):]
		if tail == "" {
			v, _ := opts.Del(k)
			blanket.Set(base, v)
			continue
		}
		if n, err := strconv.Atoi(tail); err == nil && n >= 0 {
			v, _ := opts.Del(k)
			if perInput[n] == nil {
				perInput[n] = NewOptions()
			}
			perInput[n].Set(base, v)
		}
	}
	return blanket, perInput
}

// PopGlobalOptions removes known global option names from opts and returns
// them as a new option set.
func PopGlobalOptions(opts *Options) *Options {
	global := NewOptions()
	if opts == nil {
		return global
	}
	for _, k := range opts.Keys() {
		if globalOptionNames[k] {
			v, _ := opts.Del(k)
			global.Set(k, v)
		}
	}
	return global
}
