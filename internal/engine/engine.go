// Package engine provides the speech-synthesis backends the conversion
// pipeline drives. Every backend is an opaque adapter behind the same
// function-shaped contract: text in, one audio segment out.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-voice-reader/internal/audio"
)

// Rate selects the speaking speed.
type Rate string

const (
	RateNormal Rate = "normal"
	RateSlow   Rate = "slow"
)

// Options carries the synthesis parameters shared by all engines.
type Options struct {
	Language string
	Rate     Rate
}

// Engine converts one chunk of text into one audio segment. Synthesis may
// be slow and may fail per call; the pipeline decides what a failure means.
type Engine interface {
	Name() string
	Format() audio.Format

	// Available reports whether the engine can be used at all (binary on
	// PATH, and so on). A non-nil error wraps ErrUnavailable.
	Available() error

	Synthesize(ctx context.Context, text string, opts Options) ([]byte, error)
}

// ErrUnavailable is wrapped by Available when an engine cannot run.
var ErrUnavailable = errors.New("engine unavailable")

// New constructs the engine for a normalized engine name.
// espeakCommand optionally overrides the espeak invocation.
func New(name, espeakCommand string) (Engine, error) {
	switch name {
	case "gtts":
		return NewGTTS(), nil
	case "espeak":
		return &ESpeak{Command: espeakCommand}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}
