// Package jobfile loads TOML job descriptions: a declarative form of a
// media read or write request that the CLI resolves into a full command
// specification.
package jobfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/backmassage/rawmux/internal/ffargs"
	"github.com/backmassage/rawmux/internal/resolve"
)

// Input is one input entry of a job.
type Input struct {
	URL     string         `toml:"url"`
	Format  string         `toml:"format,omitempty"`
	Options map[string]any `toml:"options,omitempty"`
}

// Stream is one requested output stream.
type Stream struct {
	Map     string         `toml:"map"`
	Options map[string]any `toml:"options,omitempty"`
}

// Job is the root of a TOML job file.
type Job struct {
	Inputs  []Input        `toml:"inputs"`
	Streams []Stream       `toml:"streams,omitempty"`
	Options map[string]any `toml:"options,omitempty"`
}

// Load reads and decodes a job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML job document.
func Parse(data []byte) (*Job, error) {
	var j Job
	if err := toml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if len(j.Inputs) == 0 {
		return nil, fmt.Errorf("job file defines no inputs")
	}
	return &j, nil
}

// ReadRequest converts the job into the argument set of a media read.
func (j *Job) ReadRequest() ([]resolve.InputURL, []resolve.StreamMap, *ffargs.Options) {
	inputs := make([]resolve.InputURL, len(j.Inputs))
	for i, in := range j.Inputs {
		opts := toOptions(in.Options)
		if in.Format != "" {
			if opts == nil {
				opts = ffargs.NewOptions()
			}
			opts.Set("f", in.Format)
		}
		inputs[i] = resolve.PathOpts(in.URL, opts)
	}

	streams := make([]resolve.StreamMap, len(j.Streams))
	for i, s := range j.Streams {
		streams[i] = resolve.StreamMap{Spec: s.Map, Opts: toOptions(s.Options)}
	}

	return inputs, streams, toOptions(j.Options)
}

// toOptions converts a decoded TOML table to an option map. TOML tables
// carry no key order, so keys sort lexically for deterministic output.
func toOptions(m map[string]any) *ffargs.Options {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o := ffargs.NewOptions()
	for _, k := range keys {
		v := m[k]
		if b, ok := v.(bool); ok && b {
			o.SetFlag(k)
			continue
		}
		o.Set(k, v)
	}
	return o
}
