// Package audio stitches per-chunk audio segments into one continuous
// output stream.
package audio

// Format identifies the audio container a synthesis engine produces.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	default:
		return "audio/wav"
	}
}

// Segment is the synthesized audio for one text chunk, tagged with the
// 1-based chunk index it came from. Segments are transient: they exist
// only between synthesis and stitching.
type Segment struct {
	Index int
	Data  []byte
}
