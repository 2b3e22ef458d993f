package filtergraph

import (
	"fmt"
	"strconv"
	"strings"
)

// PadSide distinguishes the input and output side of a filter node.
type PadSide string

const (
	InputPad  PadSide = "input"
	OutputPad PadSide = "output"
)

// PadIndex addresses one pad: chain index, filter index within the chain,
// pad index within the filter's side.
type PadIndex struct {
	Chain, Filter, Pad int
}

// Link attaches a label to one or two boundary pads of a graph. A link with
// only Out set is an external output pad; only In set is an external input
// (including stream-specifier feeds like "0:v"); both set is an internal
// connection between two chains.
type Link struct {
	Label string
	In    *PadIndex
	Out   *PadIndex
}

// Chain is a linear sequence of filters connected pad-to-pad front to back.
type Chain struct {
	Filters []*Filter
}

// NewChain builds a chain from filters in order.
func NewChain(filters ...*Filter) *Chain {
	return &Chain{Filters: filters}
}

// Empty reports whether the chain has no filters.
func (c *Chain) Empty() bool { return c == nil || len(c.Filters) == 0 }

// Clone returns a deep copy.
func (c *Chain) Clone() *Chain {
	n := &Chain{Filters: make([]*Filter, len(c.Filters))}
	for i, f := range c.Filters {
		n.Filters[i] = f.Clone()
	}
	return n
}

// Append returns a new chain with other's filters concatenated after c's.
func (c *Chain) Append(other *Chain) *Chain {
	n := c.Clone()
	for _, f := range other.Filters {
		n.Filters = append(n.Filters, f.Clone())
	}
	return n
}

// String composes the chain in graph grammar: filters joined by ",".
func (c *Chain) String() string {
	parts := make([]string, len(c.Filters))
	for i, f := range c.Filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, ",")
}

func (c *Chain) toGraph() *Graph {
	return &Graph{Chains: []*Chain{c.Clone()}}
}

// Graph is a set of chains plus the link labels wiring chain boundaries
// together and naming external pads. Labels attach only at chain
// boundaries: input pads of a chain's first filter and output pads of its
// last filter, matching the linear-chain rule of the textual grammar.
type Graph struct {
	Chains []*Chain
	Links  []Link
}

// Expr is any filtergraph object: *Filter, *Chain, or *Graph.
type Expr interface {
	String() string
	toGraph() *Graph
}

func (f *Filter) toGraph() *Graph {
	return NewChain(f.Clone()).toGraph()
}

// FromChain wraps a chain into a single-chain graph.
func FromChain(c *Chain) *Graph { return c.toGraph() }

// AsExpr converts an option value to a filtergraph object: strings are
// parsed, filtergraph objects pass through.
func AsExpr(v any) (Expr, error) {
	switch t := v.(type) {
	case string:
		return Parse(t)
	case *Filter:
		return t, nil
	case *Chain:
		return t, nil
	case *Graph:
		return t, nil
	}
	return nil, fmt.Errorf("value of type %T is not a filtergraph", v)
}

// AsGraph converts an option value to a Graph, parsing strings and
// promoting filters and chains.
func AsGraph(v any) (*Graph, error) {
	e, err := AsExpr(v)
	if err != nil {
		return nil, err
	}
	return e.toGraph(), nil
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	n := &Graph{Chains: make([]*Chain, len(g.Chains)), Links: make([]Link, len(g.Links))}
	for i, c := range g.Chains {
		n.Chains[i] = c.Clone()
	}
	for i, l := range g.Links {
		n.Links[i] = Link{Label: l.Label, In: clonePad(l.In), Out: clonePad(l.Out)}
	}
	return n
}

func clonePad(p *PadIndex) *PadIndex {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (g *Graph) toGraph() *Graph { return g.Clone() }

// String composes the graph: chains joined by ";" with input labels before
// the first filter and output labels after the last.
func (g *Graph) String() string {
	parts := make([]string, len(g.Chains))
	for ci, c := range g.Chains {
		var b strings.Builder
		last := len(c.Filters) - 1
		for _, l := range g.padLabels(InputPad, ci, 0) {
			b.WriteString("[" + l + "]")
		}
		b.WriteString(c.String())
		for _, l := range g.padLabels(OutputPad, ci, last) {
			b.WriteString("[" + l + "]")
		}
		parts[ci] = b.String()
	}
	return strings.Join(parts, ";")
}

// padLabels lists the labels on one filter's pads of a side, in pad order.
func (g *Graph) padLabels(side PadSide, chain, filter int) []string {
	type lab struct {
		pad int
		s   string
	}
	var found []lab
	for _, l := range g.Links {
		p := l.In
		if side == OutputPad {
			p = l.Out
		}
		if p != nil && p.Chain == chain && p.Filter == filter {
			found = append(found, lab{p.Pad, l.Label})
		}
	}
	// insertion sort by pad index; label lists are tiny
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j-1].pad > found[j].pad; j-- {
			found[j-1], found[j] = found[j], found[j-1]
		}
	}
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.s
	}
	return out
}

func (g *Graph) linkAt(side PadSide, p PadIndex) *Link {
	for i := range g.Links {
		l := &g.Links[i]
		q := l.In
		if side == OutputPad {
			q = l.Out
		}
		if q != nil && *q == p {
			return l
		}
	}
	return nil
}

// InputPads lists the external input pads of the graph in (chain, pad)
// order: input pads of each chain's first filter not consumed by an
// internal link. With unlabeledOnly, labeled external pads are skipped too.
func (g *Graph) InputPads(cat *Catalogue, unlabeledOnly bool) ([]PadIndex, error) {
	return g.boundaryPads(cat, InputPad, unlabeledOnly)
}

// OutputPads lists the external output pads of the graph, symmetrically to
// InputPads.
func (g *Graph) OutputPads(cat *Catalogue, unlabeledOnly bool) ([]PadIndex, error) {
	return g.boundaryPads(cat, OutputPad, unlabeledOnly)
}

func (g *Graph) boundaryPads(cat *Catalogue, side PadSide, unlabeledOnly bool) ([]PadIndex, error) {
	var pads []PadIndex
	for ci, c := range g.Chains {
		if len(c.Filters) == 0 {
			continue
		}
		fi := 0
		if side == OutputPad {
			fi = len(c.Filters) - 1
		}
		f := c.Filters[fi]
		var n int
		var err error
		if side == InputPad {
			n, err = cat.NumInputs(f)
		} else {
			n, err = cat.NumOutputs(f)
		}
		if err != nil {
			return nil, err
		}
		for p := 0; p < n; p++ {
			idx := PadIndex{Chain: ci, Filter: fi, Pad: p}
			l := g.linkAt(side, idx)
			if l != nil && l.In != nil && l.Out != nil {
				continue // internal connection
			}
			if unlabeledOnly && l != nil {
				continue
			}
			pads = append(pads, idx)
		}
	}
	return pads, nil
}

// Label returns the label attached to a pad on the given side, or "".
func (g *Graph) Label(side PadSide, p PadIndex) string {
	if l := g.linkAt(side, p); l != nil {
		return l.Label
	}
	return ""
}

// AddLabel attaches label to an unlabeled boundary pad. Labels already
// assigned are never overwritten.
func (g *Graph) AddLabel(cat *Catalogue, label string, side PadSide, p PadIndex) error {
	if err := g.checkPad(cat, side, p); err != nil {
		return err
	}
	if g.linkAt(side, p) != nil {
		return fmt.Errorf("pad %d:%d:%d already labeled or connected", p.Chain, p.Filter, p.Pad)
	}
	l := Link{Label: label}
	if side == InputPad {
		l.In = &p
	} else {
		l.Out = &p
	}
	g.Links = append(g.Links, l)
	return nil
}

func (g *Graph) checkPad(cat *Catalogue, side PadSide, p PadIndex) error {
	if p.Chain < 0 || p.Chain >= len(g.Chains) {
		return &PadNotFoundError{Pad: p, Side: side}
	}
	c := g.Chains[p.Chain]
	if p.Filter < 0 || p.Filter >= len(c.Filters) {
		return &PadNotFoundError{Pad: p, Side: side}
	}
	f := c.Filters[p.Filter]
	var n int
	var err error
	if side == InputPad {
		n, err = cat.NumInputs(f)
	} else {
		n, err = cat.NumOutputs(f)
	}
	if err != nil {
		return err
	}
	if p.Pad < 0 || p.Pad >= n {
		return &PadNotFoundError{Pad: p, Side: side}
	}
	return nil
}

// OutputPadByLabel locates the output pad carrying label.
func (g *Graph) OutputPadByLabel(label string) (PadIndex, error) {
	for _, l := range g.Links {
		if l.Label == label && l.Out != nil {
			return *l.Out, nil
		}
	}
	return PadIndex{}, &PadNotFoundError{Label: label, Side: OutputPad}
}

// InputLabels lists the labels naming external input pads (no producer
// inside this graph).
func (g *Graph) InputLabels() []string {
	var out []string
	for _, l := range g.Links {
		if l.In != nil && l.Out == nil {
			out = append(out, l.Label)
		}
	}
	return out
}

// OutputLabels lists the labels naming external output pads.
func (g *Graph) OutputLabels() []string {
	var out []string
	for _, l := range g.Links {
		if l.Out != nil && l.In == nil {
			out = append(out, l.Label)
		}
	}
	return out
}

// FilterAt returns the filter node at (chain, filter).
func (g *Graph) FilterAt(chain, filter int) (*Filter, error) {
	if chain < 0 || chain >= len(g.Chains) {
		return nil, &PadNotFoundError{Pad: PadIndex{Chain: chain, Filter: filter}}
	}
	c := g.Chains[chain]
	if filter < 0 || filter >= len(c.Filters) {
		return nil, &PadNotFoundError{Pad: PadIndex{Chain: chain, Filter: filter}}
	}
	return c.Filters[filter], nil
}

// PadMediaType reports the media type the filter at the pad consumes
// (input side) or emits (output side).
func (g *Graph) PadMediaType(cat *Catalogue, side PadSide, p PadIndex) (MediaType, error) {
	if err := g.checkPad(cat, side, p); err != nil {
		return "", err
	}
	f := g.Chains[p.Chain].Filters[p.Filter]
	return cat.PadMediaType(f, side)
}

// usedLabels collects every label in use on the graph.
func (g *Graph) usedLabels(into map[string]bool) {
	for _, l := range g.Links {
		into[l.Label] = true
	}
}

// nextFreeLabel picks prefix+N with the smallest non-colliding integer N.
func nextFreeLabel(prefix string, used map[string]bool) string {
	for n := 0; ; n++ {
		label := prefix + strconv.Itoa(n)
		if !used[label] {
			return label
		}
	}
}

// renameCollidingLabels rewrites gb labels that gb defines (an output pad or
// internal connection) and ga already uses; the merged graph would otherwise
// declare the same label twice. Labels gb only consumes, such as stream
// feeds like "0:v", keep their names.
func renameCollidingLabels(ga, gb *Graph, used map[string]bool) {
	inA := map[string]bool{}
	ga.usedLabels(inA)
	defined := map[string]bool{}
	for _, l := range gb.Links {
		if l.Out != nil {
			defined[l.Label] = true
		}
	}
	renamed := map[string]string{}
	for i := range gb.Links {
		l := &gb.Links[i]
		if !inA[l.Label] || !defined[l.Label] {
			continue
		}
		fresh, ok := renamed[l.Label]
		if !ok {
			fresh = nextFreeLabel("l", used)
			used[fresh] = true
			renamed[l.Label] = fresh
		}
		l.Label = fresh
	}
}

// Append sequentially composes two filtergraph objects: b's unlabeled input
// pads bind to a's unlabeled output pads in pad order, truncated by the
// shorter side. Chain-to-chain composition stays a chain; otherwise the
// bound pads materialize as generated internal link labels so the result
// round-trips through the textual grammar. An empty chain operand yields
// the other operand unchanged.
func Append(cat *Catalogue, a, b Expr) (Expr, error) {
	if ac, ok := a.(*Chain); ok {
		if ac.Empty() {
			return b, nil
		}
		if bc, ok := b.(*Chain); ok {
			return ac.Append(bc), nil
		}
	}
	if bc, ok := b.(*Chain); ok && bc.Empty() {
		return a, nil
	}
	if af, ok := a.(*Filter); ok {
		a = NewChain(af)
	}
	if bf, ok := b.(*Filter); ok {
		b = NewChain(bf)
	}
	if ac, ok := a.(*Chain); ok {
		if bc, ok := b.(*Chain); ok {
			return ac.Append(bc), nil
		}
	}

	ga, gb := a.toGraph(), b.toGraph()

	outs, err := ga.OutputPads(cat, true)
	if err != nil {
		return nil, err
	}
	ins, err := gb.InputPads(cat, true)
	if err != nil {
		return nil, err
	}

	used := map[string]bool{}
	ga.usedLabels(used)
	gb.usedLabels(used)
	renameCollidingLabels(ga, gb, used)

	offset := len(ga.Chains)
	merged := &Graph{Chains: append(ga.Chains, gb.Chains...), Links: ga.Links}
	for _, l := range gb.Links {
		if l.In != nil {
			l.In.Chain += offset
		}
		if l.Out != nil {
			l.Out.Chain += offset
		}
		merged.Links = append(merged.Links, l)
	}

	n := len(outs)
	if len(ins) < n {
		n = len(ins)
	}
	for i := 0; i < n; i++ {
		in := ins[i]
		in.Chain += offset
		label := nextFreeLabel("l", used)
		used[label] = true
		merged.Links = append(merged.Links, Link{Label: label, In: &in, Out: &outs[i]})
	}
	return merged, nil
}

// Stack composes two filtergraph objects in parallel: chains and labels
// concatenate, no pads are bound.
func Stack(a, b Expr) *Graph {
	ga, gb := a.toGraph(), b.toGraph()
	offset := len(ga.Chains)
	out := &Graph{Chains: append(ga.Chains, gb.Chains...), Links: ga.Links}
	for _, l := range gb.Links {
		if l.In != nil {
			l.In.Chain += offset
		}
		if l.Out != nil {
			l.Out.Chain += offset
		}
		out.Links = append(out.Links, l)
	}
	return out
}
