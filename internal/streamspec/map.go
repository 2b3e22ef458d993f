package streamspec

import (
	"strconv"
	"strings"
)

// Map is a parsed map-option value: either a filtergraph link label
// ("[label]" form) or a concrete stream reference
// ("file[:type[:index]]" form).
type Map struct {
	LinkLabel string // without brackets; "" for concrete streams
	FileIndex int    // NoIndex when omitted and no default applied
	Stream    Spec
}

// IsLink reports whether the map names a filtergraph output pad.
func (m Map) IsLink() bool { return m.LinkLabel != "" }

// String composes the canonical textual form. A link label renders as
// "[label]"; a concrete stream as "file[:type[:index]]", omitting absent
// fields.
func (m Map) String() string {
	if m.IsLink() {
		return "[" + m.LinkLabel + "]"
	}
	s := ""
	if m.FileIndex != NoIndex {
		s = strconv.Itoa(m.FileIndex)
	}
	if spec := m.Stream.String(); spec != "" {
		if s != "" {
			s += ":"
		}
		s += spec
	}
	return s
}

// ParseMap parses a map-option value. defaultFile (NoIndex for none) is
// substituted when the text omits the file index; resolving the ambiguity of
// an omitted file index against multiple inputs is the caller's concern.
func ParseMap(text string, defaultFile int) (Map, error) {
	m := Map{FileIndex: NoIndex, Stream: Spec{Index: NoIndex}}

	if strings.HasPrefix(text, "[") {
		if !strings.HasSuffix(text, "]") || len(text) < 3 {
			return m, &MalformedSpecifierError{Text: text, Reason: "unterminated link label"}
		}
		m.LinkLabel = text[1 : len(text)-1]
		return m, nil
	}
	if text == "" {
		return m, &MalformedSpecifierError{Text: text, Reason: "empty specifier"}
	}

	rest := text
	head, tail, cut := strings.Cut(text, ":")
	if n, err := strconv.Atoi(head); err == nil {
		if n < 0 {
			return m, &MalformedSpecifierError{Text: text, Reason: "file index must be non-negative"}
		}
		m.FileIndex = n
		if !cut {
			return m, nil
		}
		rest = tail
	} else if _, ok := MediaTypeOf(head); !ok {
		return m, &MalformedSpecifierError{Text: text, Reason: "file index is not an integer"}
	} else {
		m.FileIndex = defaultFile
	}

	spec, err := ParseSpec(rest)
	if err != nil {
		return m, err
	}
	m.Stream = spec
	return m, nil
}

// FullyQualified reports whether the map pins down exactly one concrete
// stream without probing: both the stream-type letter and the per-type
// index are present.
func (m Map) FullyQualified() bool {
	return !m.IsLink() && m.Stream.Type != "" && m.Stream.Index != NoIndex
}
