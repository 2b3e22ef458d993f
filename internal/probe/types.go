package probe

// BasicStream is the minimal per-stream record from a type-only query.
type BasicStream struct {
	Index     int
	CodecType string
}

// Stream holds the parsed properties of a single media stream. Fields not
// applicable to the stream's codec type are zero.
type Stream struct {
	Index         int
	CodecType     string
	CodecName     string
	PixFmt        string
	Width         int
	Height        int
	RFrameRate    string
	AvgFrameRate  string
	SampleFmt     string
	SampleRate    int
	Channels      int
	ChannelLayout string
	Duration      float64
	BitRate       int64
}

// FrameRate returns the stream's real frame rate, falling back to the
// average rate when ffprobe reports r_frame_rate as "0/0".
func (s *Stream) FrameRate() string {
	if s.RFrameRate != "" && s.RFrameRate != "0/0" {
		return s.RFrameRate
	}
	return s.AvgFrameRate
}
