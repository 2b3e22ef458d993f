// Package resolve is the argument resolution engine: it takes a partially
// specified description of inputs, outputs, stream maps, and filtergraphs
// and completes it into an internally consistent ffargs.Args — picking
// stream indices, inferring pixel and sample formats, auto-labeling
// filtergraph outputs, and inserting implicit filters where the requested
// raw formats demand them.
package resolve

import (
	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rawmux/internal/filtergraph"
	"github.com/backmassage/rawmux/internal/probe"
	"github.com/backmassage/rawmux/internal/streamspec"
)

// NoFile marks an absent input file or stream reference on a resolved
// output (the source is a filtergraph output pad).
const NoFile = -1

// DstKind says where a resolved output stream's data goes.
type DstKind string

const (
	DstPipe DstKind = "pipe"
	DstFile DstKind = "file"
)

// MediaInfo describes the raw data layout of a finalized stream: buffer
// element type, per-frame (video) or per-sample-block (audio) shape, and
// rate. Zero fields mean the value could not be determined.
type MediaInfo struct {
	Dtype string
	Shape []int
	Rate  string
}

// OutputStream is the resolved description of one requested output stream.
type OutputStream struct {
	Key       string // unique map option value used for this output
	Dst       DstKind
	UserMap   string // caller-supplied map text; "" when auto-mapped
	MediaType streamspec.MediaType
	FileIndex int // input file index, NoFile for filtergraph outputs
	StreamID  int // absolute input stream index, NoFile when not resolved
	Media     *MediaInfo
}

// Resolver carries the collaborators every resolution call needs. It holds
// no per-call state; a single Resolver serves any number of sequential
// resolutions.
type Resolver struct {
	log    hclog.Logger
	prober probe.Prober
	cat    *filtergraph.Catalogue
}

// New builds a Resolver. A nil catalogue falls back to the built-in filter
// table.
func New(log hclog.Logger, prober probe.Prober, cat *filtergraph.Catalogue) *Resolver {
	if cat == nil {
		cat = filtergraph.Default()
	}
	return &Resolver{log: log.Named("resolve"), prober: prober, cat: cat}
}
