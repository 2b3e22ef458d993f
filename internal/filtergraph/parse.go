package filtergraph

import (
	"fmt"
	"regexp"
	"strings"
)

// Parse builds a Graph from a textual filtergraph expression: chain filters
// joined by ",", chains joined by ";", pads labeled with bracketed
// identifiers. Labels may appear before a chain's first filter (input pads)
// and after its last (output pads); a label produced by one chain and
// consumed by another becomes an internal connection.
func Parse(text string) (*Graph, error) {
	g := &Graph{}

	type pending struct {
		label string
		side  PadSide
		pad   PadIndex
	}
	var labels []pending

	for ci, chainText := range splitTop(text, ';') {
		chainText = strings.TrimSpace(chainText)
		if chainText == "" {
			return nil, fmt.Errorf("filtergraph %q: empty chain", text)
		}
		chain := &Chain{}

		for fi, seg := range splitTop(chainText, ',') {
			seg = strings.TrimSpace(seg)
			head, body, tail, err := stripLabels(seg)
			if err != nil {
				return nil, fmt.Errorf("filtergraph %q: %w", text, err)
			}
			if len(head) > 0 && fi != 0 {
				return nil, fmt.Errorf("filtergraph %q: input labels allowed only before a chain's first filter", text)
			}
			if body == "" {
				return nil, fmt.Errorf("filtergraph %q: missing filter name", text)
			}
			f, err := parseFilter(body)
			if err != nil {
				return nil, fmt.Errorf("filtergraph %q: %w", text, err)
			}
			chain.Filters = append(chain.Filters, f)
			for p, l := range head {
				labels = append(labels, pending{l, InputPad, PadIndex{ci, fi, p}})
			}
			for p, l := range tail {
				labels = append(labels, pending{l, OutputPad, PadIndex{ci, fi, p}})
			}
		}

		// trailing labels bind to the last filter of the chain; reject any
		// that landed mid-chain
		for _, pl := range labels {
			if pl.side == OutputPad && pl.pad.Chain == ci && pl.pad.Filter != len(chain.Filters)-1 {
				return nil, fmt.Errorf("filtergraph %q: output labels allowed only after a chain's last filter", text)
			}
		}
		g.Chains = append(g.Chains, chain)
	}

	// wire labels: a label seen on an output pad and later on an input pad
	// (or vice versa) is one internal connection
	for _, pl := range labels {
		pad := pl.pad
		merged := false
		for i := range g.Links {
			l := &g.Links[i]
			if l.Label != pl.label {
				continue
			}
			if pl.side == InputPad && l.In == nil {
				l.In = &pad
				merged = true
			} else if pl.side == OutputPad && l.Out == nil {
				l.Out = &pad
				merged = true
			}
			if merged {
				break
			}
		}
		if !merged {
			l := Link{Label: pl.label}
			if pl.side == InputPad {
				l.In = &pad
			} else {
				l.Out = &pad
			}
			g.Links = append(g.Links, l)
		}
	}
	return g, nil
}

// splitTop splits s on sep at the top level, honoring backslash escapes,
// single quotes, and bracketed labels.
func splitTop(s string, sep byte) []string {
	var parts []string
	var quoted, escaped, bracket bool
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case quoted:
			quoted = c != '\''
		case c == '\'':
			quoted = true
		case c == '[':
			bracket = true
		case c == ']':
			bracket = false
		case c == sep && !bracket:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

var labelRe = regexp.MustCompile(`^\s*\[([^\[\]]+)\]`)

// stripLabels separates leading and trailing bracketed labels from a filter
// segment.
func stripLabels(seg string) (head []string, body string, tail []string, err error) {
	for {
		m := labelRe.FindStringSubmatch(seg)
		if m == nil {
			break
		}
		head = append(head, m[1])
		seg = seg[len(m[0]):]
	}
	seg = strings.TrimSpace(seg)

	for {
		i := lastTopLevelBracket(seg)
		if i < 0 {
			break
		}
		if !strings.HasSuffix(seg, "]") {
			return nil, "", nil, fmt.Errorf("unterminated label in %q", seg)
		}
		tail = append([]string{seg[i+1 : len(seg)-1]}, tail...)
		seg = strings.TrimSpace(seg[:i])
	}
	return head, seg, tail, nil
}

// lastTopLevelBracket finds the opening bracket of a trailing label,
// ignoring escaped brackets inside filter arguments.
func lastTopLevelBracket(s string) int {
	if !strings.HasSuffix(s, "]") {
		return -1
	}
	i := strings.LastIndexByte(s[:len(s)-1], '[')
	if i <= 0 {
		return i
	}
	if s[i-1] == '\\' {
		return -1
	}
	return i
}

var optNameRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)=`)

// parseFilter parses "name" or "name=arg1:arg2:opt=value".
func parseFilter(body string) (*Filter, error) {
	name, argText, hasArgs := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return nil, fmt.Errorf("invalid filter name %q", name)
	}
	f := &Filter{Name: name}
	if !hasArgs {
		return f, nil
	}
	if strings.TrimSpace(argText) == "" {
		return nil, fmt.Errorf("filter %q: empty argument list", name)
	}
	named := false
	for _, arg := range splitTop(argText, ':') {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			return nil, fmt.Errorf("filter %q: empty argument", name)
		}
		if m := optNameRe.FindStringSubmatch(arg); m != nil {
			f.Opts = append(f.Opts, FilterOption{Name: m[1], Value: unescapeValue(arg[len(m[0]):])})
			named = true
			continue
		}
		if named {
			return nil, fmt.Errorf("filter %q: positional argument after named option", name)
		}
		f.Args = append(f.Args, unescapeValue(arg))
	}
	return f, nil
}

// unescapeValue reverses escapeValue: drops backslashes and unwraps single
// quotes.
func unescapeValue(s string) string {
	var b strings.Builder
	var escaped, quoted bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '\'' && !quoted:
			quoted = true
		case c == '\'' && quoted:
			quoted = false
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
