package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegCombiner stitches MP3 segments by shelling out to ffmpeg: each
// segment is written to a scratch directory, a silence clip of the
// requested pause length is generated once, and a concat list interleaving
// segments and silence is re-encoded into the final stream. The capability
// is available only when ffmpeg is on PATH.
type FFmpegCombiner struct {
	// FFmpegPath overrides the ffmpeg executable name.
	FFmpegPath string
}

// Seams for stubbing the external tool in tests.
var (
	lookFFmpeg = exec.LookPath
	runFFmpeg  = runFFmpegCmd
)

func runFFmpegCmd(ctx context.Context, exe string, args ...string) error {
	cmd := exec.CommandContext(ctx, exe, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func (c *FFmpegCombiner) exe() string {
	if c.FFmpegPath != "" {
		return c.FFmpegPath
	}
	return "ffmpeg"
}

func (c *FFmpegCombiner) Available() error {
	if _, err := lookFFmpeg(c.exe()); err != nil {
		return fmt.Errorf("%w: %v", ErrCombineUnavailable, err)
	}
	return nil
}

func (c *FFmpegCombiner) Combine(ctx context.Context, segments []Segment, pauseMS int) ([]byte, error) {
	if len(segments) == 0 {
		return nil, errors.New("no segments to combine")
	}
	if len(segments) == 1 {
		return segments[0].Data, nil
	}
	if err := c.Available(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "voicereader-stitch-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	segPaths := make([]string, len(segments))
	for i, seg := range segments {
		p := filepath.Join(dir, fmt.Sprintf("seg-%04d.mp3", i))
		if err := os.WriteFile(p, seg.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write segment %d: %w", seg.Index, err)
		}
		segPaths[i] = p
	}

	silencePath := ""
	if pauseMS > 0 {
		silencePath = filepath.Join(dir, "silence.mp3")
		err := runFFmpeg(ctx, c.exe(),
			"-f", "lavfi",
			"-i", "anullsrc=r=24000:cl=mono",
			"-t", fmt.Sprintf("%.3f", float64(pauseMS)/1000),
			"-q:a", "9",
			"-y", silencePath,
		)
		if err != nil {
			return nil, fmt.Errorf("generate %dms silence: %w", pauseMS, err)
		}
	}

	listPath := filepath.Join(dir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(concatList(segPaths, silencePath)), 0o644); err != nil {
		return nil, fmt.Errorf("write concat list: %w", err)
	}

	outPath := filepath.Join(dir, "combined.mp3")
	err = runFFmpeg(ctx, c.exe(),
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-codec:a", "libmp3lame",
		"-q:a", "4",
		"-y", outPath,
	)
	if err != nil {
		return nil, fmt.Errorf("concatenate %d segments: %w", len(segments), err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read combined output: %w", err)
	}
	return out, nil
}

// concatList renders an ffmpeg concat-demuxer list interleaving the
// silence clip between adjacent segments: N segments produce exactly N-1
// silence entries, none before the first or after the last.
func concatList(segPaths []string, silencePath string) string {
	var b strings.Builder
	for i, p := range segPaths {
		if i > 0 && silencePath != "" {
			fmt.Fprintf(&b, "file '%s'\n", silencePath)
		}
		fmt.Fprintf(&b, "file '%s'\n", p)
	}
	return b.String()
}
