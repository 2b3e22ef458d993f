package filtergraph

import "fmt"

// UnknownFilterError reports a filter name absent from the catalogue.
type UnknownFilterError struct {
	Name string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("unknown filter %q", e.Name)
}

// PadNotFoundError reports a pad index or link label that does not exist on
// the graph it was looked up on.
type PadNotFoundError struct {
	Label string
	Pad   PadIndex
	Side  PadSide
}

func (e *PadNotFoundError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("filtergraph has no %s pad labeled %q", e.Side, e.Label)
	}
	return fmt.Sprintf("filtergraph has no %s pad %d:%d:%d", e.Side, e.Pad.Chain, e.Pad.Filter, e.Pad.Pad)
}
