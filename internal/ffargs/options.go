// Package ffargs holds the FFmpeg command specification: an ordered list of
// input entries, an ordered list of output entries, and a set of global
// options. The resolve package mutates a single Args value in place until it
// is complete, then hands it to the ffmpeg package for serialization.
package ffargs

import "reflect"

// Options is an ordered FFmpeg option map. Keys are option names, optionally
// qualified by a stream specifier (e.g. "c:v:0"). A nil value marks a
// flag-only option, a []any value a multi-valued option (e.g. several
// filtergraphs); everything else is a scalar.
//
// Insertion order is preserved; Set on an existing key updates the value
// without reordering it.
type Options struct {
	keys []string
	vals map[string]any
}

// NewOptions returns an empty option map.
func NewOptions() *Options {
	return &Options{vals: map[string]any{}}
}

// Len reports the number of options. Safe on a nil receiver.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Has reports whether name is present. Safe on a nil receiver.
func (o *Options) Has(name string) bool {
	if o == nil {
		return false
	}
	_, ok := o.vals[name]
	return ok
}

// Get returns the value stored under name. Safe on a nil receiver.
func (o *Options) Get(name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[name]
	return v, ok
}

// Set stores value under name, appending the key if new. Returns the
// receiver for chaining.
func (o *Options) Set(name string, value any) *Options {
	if _, ok := o.vals[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.vals[name] = value
	return o
}

// SetFlag stores a flag-only option (nil value).
func (o *Options) SetFlag(name string) *Options {
	return o.Set(name, nil)
}

// Del removes name and returns its previous value.
func (o *Options) Del(name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[name]
	if !ok {
		return nil, false
	}
	delete(o.vals, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns the option names in insertion order. The slice is a copy.
func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Clone returns a shallow copy. A nil receiver yields nil.
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	c := &Options{keys: make([]string, len(o.keys)), vals: make(map[string]any, len(o.vals))}
	copy(c.keys, o.keys)
	for k, v := range o.vals {
		c.vals[k] = v
	}
	return c
}

// Merge shallow-merges other into o; other's values win on key collision.
// Keys already present keep their position, new keys append in other's
// order. A nil other is a no-op.
func (o *Options) Merge(other *Options) *Options {
	if other == nil {
		return o
	}
	for _, k := range other.keys {
		o.Set(k, other.vals[k])
	}
	return o
}

// MergedWith returns a merged copy, treating a nil receiver as empty.
func (o *Options) MergedWith(other *Options) *Options {
	if o == nil {
		if other == nil {
			return NewOptions()
		}
		return other.Clone()
	}
	return o.Clone().Merge(other)
}

// Equal reports whether two option maps hold the same keys, in the same
// order, with equal scalar values. Nil receivers compare equal to empty maps
// only when both are nil.
func (o *Options) Equal(other *Options) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i, k := range o.keys {
		if other.keys[i] != k {
			return false
		}
		if !reflect.DeepEqual(o.vals[k], other.vals[k]) {
			return false
		}
	}
	return true
}

// MultiValue normalizes a possibly multi-valued option value to a slice.
// Scalars wrap into a one-element slice; nil yields nil.
func MultiValue(v any) []any {
	switch vv := v.(type) {
	case nil:
		return nil
	case []any:
		return vv
	case []string:
		out := make([]any, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
