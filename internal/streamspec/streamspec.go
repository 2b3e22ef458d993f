// Package streamspec parses and composes FFmpeg's compact stream-specifier
// and map-option grammar. Parse and String are mutual inverses for every
// representable value, modulo omission of defaulted fields.
package streamspec

import (
	"fmt"
	"strconv"
	"strings"
)

// MediaType names the content carried by a stream.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// TypeLetter returns the stream-type letter of a media type ("v" or "a").
func TypeLetter(t MediaType) string {
	if t == MediaAudio {
		return "a"
	}
	return "v"
}

// MediaTypeOf maps a stream-type letter to its media type. V selects video
// streams excluding attached pictures but still carries video.
func MediaTypeOf(letter string) (MediaType, bool) {
	switch letter {
	case "v", "V":
		return MediaVideo, true
	case "a":
		return MediaAudio, true
	}
	return "", false
}

// MalformedSpecifierError reports text that matches neither the concrete
// stream grammar nor the link-label grammar.
type MalformedSpecifierError struct {
	Text   string
	Reason string
}

func (e *MalformedSpecifierError) Error() string {
	return fmt.Sprintf("malformed stream specifier %q: %s", e.Text, e.Reason)
}

// NoIndex marks an absent per-type or file index.
const NoIndex = -1

// Spec is a within-file stream specifier: an optional stream-type letter and
// an optional index. With a type the index counts per type; without one it
// is the absolute stream index.
type Spec struct {
	Type  string // "v", "a", "V", or "" when absent
	Index int    // NoIndex when absent
}

// IsZero reports whether the specifier selects every stream.
func (s Spec) IsZero() bool { return s.Type == "" && s.Index == NoIndex }

// String composes the textual form ("v", "a:1", "2", or "").
func (s Spec) String() string {
	switch {
	case s.Type == "" && s.Index == NoIndex:
		return ""
	case s.Type == "":
		return strconv.Itoa(s.Index)
	case s.Index == NoIndex:
		return s.Type
	default:
		return s.Type + ":" + strconv.Itoa(s.Index)
	}
}

// MediaType reports the media type selected by the type letter, if any.
func (s Spec) MediaType() (MediaType, bool) { return MediaTypeOf(s.Type) }

// ParseSpec parses a within-file stream specifier. The empty string selects
// every stream.
func ParseSpec(text string) (Spec, error) {
	s := Spec{Index: NoIndex}
	if text == "" {
		return s, nil
	}
	parts := strings.Split(text, ":")
	if len(parts) > 2 {
		return s, &MalformedSpecifierError{Text: text, Reason: "too many fields"}
	}
	if _, ok := MediaTypeOf(parts[0]); ok {
		s.Type = parts[0]
		if len(parts) == 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 0 {
				return s, &MalformedSpecifierError{Text: text, Reason: "stream index must be a non-negative integer"}
			}
			s.Index = n
		}
		return s, nil
	}
	if len(parts) != 1 {
		return s, &MalformedSpecifierError{Text: text, Reason: "unknown stream type " + strconv.Quote(parts[0])}
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return s, &MalformedSpecifierError{Text: text, Reason: "expected stream type letter or index"}
	}
	s.Index = n
	return s, nil
}
