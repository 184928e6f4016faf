package audio

import (
	"context"
	"errors"
	"fmt"
)

// WAVCombiner stitches WAV segments natively by concatenating their PCM
// sample streams with runs of zero samples as silence. It is always
// available: no external tooling is involved.
type WAVCombiner struct{}

func (*WAVCombiner) Available() error { return nil }

func (*WAVCombiner) Combine(_ context.Context, segments []Segment, pauseMS int) ([]byte, error) {
	if len(segments) == 0 {
		return nil, errors.New("no segments to combine")
	}
	if len(segments) == 1 {
		return segments[0].Data, nil
	}

	silence := SilenceSamples(pauseMS)

	var merged []float32
	for i, seg := range segments {
		samples, err := DecodeWAV(seg.Data)
		if err != nil {
			return nil, fmt.Errorf("decode segment %d: %w", seg.Index, err)
		}
		if i > 0 {
			merged = append(merged, silence...)
		}
		merged = append(merged, samples...)
	}

	out, err := EncodeWAV(merged)
	if err != nil {
		return nil, fmt.Errorf("encode combined WAV: %w", err)
	}
	return out, nil
}

// SilenceSamples returns pauseMS worth of zero samples at the package
// sample rate.
func SilenceSamples(pauseMS int) []float32 {
	if pauseMS <= 0 {
		return nil
	}
	return make([]float32, SampleRate*pauseMS/1000)
}
