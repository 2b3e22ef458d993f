// Package filtergraph models FFmpeg filtergraphs: filter nodes with
// positional and named options, linear chains, and graphs of chains wired
// together by link labels. The textual forms parsed and emitted here are
// exactly the grammar FFmpeg accepts for -vf/-af/-filter_complex values.
package filtergraph

import (
	"strings"
)

// FilterOption is one named option of a filter node.
type FilterOption struct {
	Name  string
	Value string
}

// Filter is a single filter node: a name, ordered positional arguments, and
// ordered named options. Pad counts are not stored on the node; they are
// derived from the catalogue, consulting the node's options when the filter
// has an option-dependent pad count.
type Filter struct {
	Name string
	Args []string
	Opts []FilterOption
}

// NewFilter builds a filter node with positional arguments.
func NewFilter(name string, args ...string) *Filter {
	return &Filter{Name: name, Args: args}
}

// WithOption appends a named option and returns the node for chaining.
func (f *Filter) WithOption(name, value string) *Filter {
	f.Opts = append(f.Opts, FilterOption{Name: name, Value: value})
	return f
}

// Option returns the value of a named option, searching names first and then
// falling back to the positional argument at pos (pos < 0 disables the
// positional fallback).
func (f *Filter) Option(pos int, names ...string) (string, bool) {
	for _, o := range f.Opts {
		for _, n := range names {
			if o.Name == n {
				return o.Value, true
			}
		}
	}
	if pos >= 0 && pos < len(f.Args) {
		return f.Args[pos], true
	}
	return "", false
}

// Clone returns a deep copy of the node.
func (f *Filter) Clone() *Filter {
	c := &Filter{Name: f.Name}
	c.Args = append([]string(nil), f.Args...)
	c.Opts = append([]FilterOption(nil), f.Opts...)
	return c
}

// String composes the node in filter grammar: name=arg1:arg2:opt=value with
// value escaping.
func (f *Filter) String() string {
	var b strings.Builder
	b.WriteString(f.Name)
	sep := "="
	for _, a := range f.Args {
		b.WriteString(sep)
		b.WriteString(escapeValue(a))
		sep = ":"
	}
	for _, o := range f.Opts {
		b.WriteString(sep)
		b.WriteString(o.Name)
		b.WriteByte('=')
		b.WriteString(escapeValue(o.Value))
		sep = ":"
	}
	return b.String()
}

// escapeValue backslash-escapes the characters that terminate or structure a
// filter argument in graph grammar.
func escapeValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '\'', ':', ',', ';', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
