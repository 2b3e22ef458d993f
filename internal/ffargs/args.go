package ffargs

import "fmt"

// Target selects which section of the command specification an operation
// applies to.
type Target string

const (
	Input  Target = "input"
	Output Target = "output"
	Global Target = "global"
)

// Entry is one input or output: a url (or "" when the data travels through a
// pipe assigned later) and its option map (possibly nil).
type Entry struct {
	URL  string
	Opts *Options
}

// Args is the root command specification. Input and output order is
// significant: it fixes the numeric file indices that stream specifiers
// refer to.
type Args struct {
	Inputs  []Entry
	Outputs []Entry
	Global  *Options
}

// Empty returns a fresh Args with the given global options (nil for none).
func Empty(global *Options) *Args {
	if global == nil {
		global = NewOptions()
	}
	return &Args{Global: global}
}

func (a *Args) list(t Target) *[]Entry {
	if t == Output {
		return &a.Outputs
	}
	return &a.Inputs
}

// AddURL appends a new url to the input or output list, or, when update is
// true and the url already exists, merges opts into the existing entry.
// Returns the file index and a pointer to the entry.
func (a *Args) AddURL(t Target, url string, opts *Options, update bool) (int, *Entry) {
	files := a.list(t)

	if update {
		for i := range *files {
			if (*files)[i].URL == url {
				e := &(*files)[i]
				if opts != nil {
					if e.Opts == nil {
						e.Opts = opts.Clone()
					} else {
						e.Opts.Merge(opts)
					}
				}
				return i, e
			}
		}
	}

	*files = append(*files, Entry{URL: url, Opts: opts.Clone()})
	return len(*files) - 1, &(*files)[len(*files)-1]
}

// URLSpec pairs a url with its options for batch insertion.
type URLSpec struct {
	URL  string
	Opts *Options
}

// AddURLs adds several urls at once, returning their file indices in order.
func (a *Args) AddURLs(t Target, urls []URLSpec, update bool) []int {
	ids := make([]int, len(urls))
	for i, u := range urls {
		ids[i], _ = a.AddURL(t, u.URL, u.Opts, update)
	}
	return ids
}

// AssignInputURL replaces the url of input ifile, keeping its options.
// Used to attach a pipe path once the pipe has been allocated.
func (a *Args) AssignInputURL(ifile int, url string) error {
	if ifile < 0 || ifile >= len(a.Inputs) {
		return fmt.Errorf("input #%d is not defined", ifile)
	}
	a.Inputs[ifile].URL = url
	return nil
}

// AssignOutputURL replaces the url of output ofile, keeping its options.
func (a *Args) AssignOutputURL(ofile int, url string) error {
	if ofile < 0 || ofile >= len(a.Outputs) {
		return fmt.Errorf("output #%d is not defined", ofile)
	}
	a.Outputs[ofile].URL = url
	return nil
}

// globalOptionNames are option names that FFmpeg only accepts at the global
// position. MoveGlobalOptions relocates them when callers supply them as
// input or output options.
var globalOptionNames = map[string]bool{
	"y": true, "n": true, "loglevel": true, "v": true,
	"hide_banner": true, "nostdin": true, "stats": true, "nostats": true,
	"report": true, "benchmark": true, "filter_complex": true,
	"filter_complex_threads": true, "lavfi": true, "filter_threads": true,
	"overwrite": true, "abort_on": true, "max_error_rate": true,
}

// MoveGlobalOptions relocates known global option names found in input or
// output option sets into the global option set. Returns the same Args.
func MoveGlobalOptions(a *Args) *Args {
	move := func(opts *Options) {
		if opts == nil {
			return
		}
		for _, k := range opts.Keys() {
			if globalOptionNames[k] {
				v, _ := opts.Del(k)
				if a.Global == nil {
					a.Global = NewOptions()
				}
				a.Global.Set(k, v)
			}
		}
	}
	for i := range a.Inputs {
		move(a.Inputs[i].Opts)
	}
	for i := range a.Outputs {
		move(a.Outputs[i].Opts)
	}
	return a
}

// ClearLogLevel drops a caller-supplied loglevel global option, reporting
// whether one was removed so the caller can log the override.
func ClearLogLevel(a *Args) bool {
	if a.Global == nil {
		return false
	}
	_, ok := a.Global.Del("loglevel")
	return ok
}
