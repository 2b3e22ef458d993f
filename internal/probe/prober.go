package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rawmux/internal/config"
)

// Source identifies what ffprobe should inspect: a URL or path, optionally
// forced to a demuxer format, or an in-memory buffer fed over stdin.
type Source struct {
	URL    string
	Format string // -f value, e.g. "lavfi" for filtergraph sources
	Data   []byte // when non-nil, piped to ffprobe's stdin and URL is ignored
}

// Filtergraph wraps a filtergraph expression as a probeable lavfi source.
func Filtergraph(expr string) Source {
	return Source{URL: expr, Format: "lavfi"}
}

// Prober answers stream queries. The resolution engine takes this interface
// so tests can substitute canned results for a live ffprobe binary.
type Prober interface {
	// StreamTypes returns the index and codec type of each stream,
	// optionally narrowed by a -select_streams specifier ("" selects all).
	StreamTypes(ctx context.Context, src Source, selectSpec string) ([]BasicStream, error)
	// Streams returns full stream details under the same selection rules.
	Streams(ctx context.Context, src Source, selectSpec string) ([]Stream, error)
}

// FFProbe runs the ffprobe binary configured in config.Tools.
type FFProbe struct {
	log hclog.Logger
}

// New returns a Prober backed by the ffprobe executable.
func New(log hclog.Logger) *FFProbe {
	return &FFProbe{log: log.Named("probe")}
}

func (p *FFProbe) StreamTypes(ctx context.Context, src Source, selectSpec string) ([]BasicStream, error) {
	out, err := p.run(ctx, src, selectSpec, "-show_entries", "stream=index,codec_type")
	if err != nil {
		return nil, err
	}
	streams, err := ParseJSON(out)
	if err != nil {
		return nil, err
	}
	basic := make([]BasicStream, len(streams))
	for i, s := range streams {
		basic[i] = BasicStream{Index: s.Index, CodecType: s.CodecType}
	}
	return basic, nil
}

func (p *FFProbe) Streams(ctx context.Context, src Source, selectSpec string) ([]Stream, error) {
	out, err := p.run(ctx, src, selectSpec, "-show_streams")
	if err != nil {
		return nil, err
	}
	return ParseJSON(out)
}

func (p *FFProbe) run(ctx context.Context, src Source, selectSpec string, show ...string) ([]byte, error) {
	args := []string{"-v", "quiet", "-print_format", "json"}
	args = append(args, show...)
	if selectSpec != "" {
		args = append(args, "-select_streams", selectSpec)
	}
	if src.Format != "" {
		args = append(args, "-f", src.Format)
	}
	url := src.URL
	if src.Data != nil {
		url = "pipe:0"
	}
	args = append(args, url)

	p.log.Debug("running ffprobe", "url", url, "format", src.Format, "select", selectSpec)

	cmd := exec.CommandContext(ctx, config.Tools.FFprobe, args...)
	if src.Data != nil {
		cmd.Stdin = bytes.NewReader(src.Data)
	}
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", url, err)
	}
	return out, nil
}

// ParseJSON converts raw ffprobe JSON output into stream records.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) ([]Stream, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	streams := make([]Stream, len(raw.Streams))
	for i := range raw.Streams {
		streams[i] = convertStream(&raw.Streams[i])
	}
	return streams, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	PixFmt        string `json:"pix_fmt"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	RFrameRate    string `json:"r_frame_rate"`
	AvgFrameRate  string `json:"avg_frame_rate"`
	SampleFmt     string `json:"sample_fmt"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
	Duration      string `json:"duration"`
	BitRate       string `json:"bit_rate"`
}

func convertStream(s *ffprobeStream) Stream {
	return Stream{
		Index:         s.Index,
		CodecType:     s.CodecType,
		CodecName:     s.CodecName,
		PixFmt:        s.PixFmt,
		Width:         s.Width,
		Height:        s.Height,
		RFrameRate:    s.RFrameRate,
		AvgFrameRate:  s.AvgFrameRate,
		SampleFmt:     s.SampleFmt,
		SampleRate:    parseInt(s.SampleRate),
		Channels:      s.Channels,
		ChannelLayout: s.ChannelLayout,
		Duration:      parseFloat(s.Duration),
		BitRate:       parseInt64(s.BitRate),
	}
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	n, _ := strconv.Atoi(s)
	return n
}
