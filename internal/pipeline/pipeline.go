// Package pipeline turns a text into a single audio file: segment, speak
// each chunk in order, stitch the results with short pauses.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/go-voice-reader/internal/audio"
	"github.com/example/go-voice-reader/internal/engine"
	"github.com/example/go-voice-reader/internal/text"
)

// Pipeline drives one conversion end to end. Engine and Combiner are
// required; Log defaults to slog.Default.
type Pipeline struct {
	Engine   engine.Engine
	Combiner audio.Combiner
	Log      *slog.Logger

	MaxChunkChars int
	PauseMS       int
	Options       engine.Options
}

// Result summarizes a finished conversion.
type Result struct {
	OutputPath   string
	ChunkCount   int
	TotalChars   int
	UsedChunking bool
}

// ChunkError reports which chunk of a multi-chunk conversion failed.
type ChunkError struct {
	Index int
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d/%d: %v", e.Index, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Run synthesizes input and returns the finished audio stream. Text that
// fits in one chunk goes straight through the engine. Longer text is split,
// synthesized chunk by chunk in order, and stitched; when stitching is not
// available for the engine's format the run degrades to the first chunk
// only, so some audio is still produced.
func (p *Pipeline) Run(ctx context.Context, input string) ([]byte, Result, error) {
	normalized, err := text.Normalize(input)
	if err != nil {
		return nil, Result{}, err
	}

	if err := p.Engine.Available(); err != nil {
		return nil, Result{}, fmt.Errorf("engine %s: %w", p.Engine.Name(), err)
	}

	res := Result{TotalChars: len(normalized)}

	chunks := text.Segment(normalized, p.MaxChunkChars)
	if len(chunks) == 1 {
		data, err := p.synthesizeChunk(ctx, chunks[0])
		if err != nil {
			return nil, Result{}, err
		}

		res.ChunkCount = 1

		return data, res, nil
	}

	if err := p.Combiner.Available(); err != nil {
		kept := chunks[0]
		p.logger().Warn("cannot stitch audio, converting a truncated text instead",
			"engine", p.Engine.Name(),
			"format", string(p.Engine.Format()),
			"chunks", len(chunks),
			"kept_chars", kept.Length,
			"total_chars", res.TotalChars,
			"error", err)

		data, err := p.synthesizeChunk(ctx, kept)
		if err != nil {
			return nil, Result{}, err
		}

		res.ChunkCount = 1

		return data, res, nil
	}

	segments := make([]audio.Segment, len(chunks))
	for i, c := range chunks {
		data, err := p.synthesizeChunk(ctx, c)
		if err != nil {
			return nil, Result{}, err
		}

		segments[i] = audio.Segment{Index: c.Index, Data: data}
	}

	combined, err := p.Combiner.Combine(ctx, segments, p.PauseMS)
	if err != nil {
		return nil, Result{}, fmt.Errorf("stitch %d segments: %w", len(segments), err)
	}

	res.ChunkCount = len(chunks)
	res.UsedChunking = true

	return combined, res, nil
}

func (p *Pipeline) synthesizeChunk(ctx context.Context, c text.Chunk) ([]byte, error) {
	p.logger().Info("synthesizing chunk",
		"engine", p.Engine.Name(),
		"chunk", c.Index,
		"total", c.Total,
		"chars", c.Length)

	data, err := p.Engine.Synthesize(ctx, c.Text, p.Options)
	if err != nil {
		return nil, &ChunkError{Index: c.Index, Total: c.Total, Err: err}
	}
	if len(data) == 0 {
		return nil, &ChunkError{Index: c.Index, Total: c.Total, Err: fmt.Errorf("engine produced no audio")}
	}

	return data, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}

	return slog.Default()
}
