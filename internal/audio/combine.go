package audio

import (
	"context"
	"errors"
	"fmt"
)

// ErrCombineUnavailable is returned when the concatenation capability for
// a format cannot be used (for MP3, when ffmpeg is not installed). The
// pipeline treats it as a policy signal, not a fatal error: it falls back
// to a truncated single-chunk conversion.
var ErrCombineUnavailable = errors.New("audio concatenation unavailable")

// Combiner concatenates ordered audio segments into one stream.
type Combiner interface {
	// Available reports whether the concatenation capability can be used.
	// A non-nil error wraps ErrCombineUnavailable.
	Available() error

	// Combine joins segments in index order, inserting pauseMS of silence
	// between each pair of adjacent segments (never before the first or
	// after the last). A single segment is returned unchanged.
	Combine(ctx context.Context, segments []Segment, pauseMS int) ([]byte, error)
}

// CombinerFor returns the stitcher for the given audio format.
func CombinerFor(f Format) (Combiner, error) {
	switch f {
	case FormatWAV:
		return &WAVCombiner{}, nil
	case FormatMP3:
		return &FFmpegCombiner{}, nil
	default:
		return nil, fmt.Errorf("no combiner for format %q", f)
	}
}
