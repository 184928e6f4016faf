package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/go-voice-reader/internal/audio"
	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
)

// Words-per-minute settings for the two supported speech rates.
const (
	espeakWPMNormal = 175
	espeakWPMSlow   = 110
)

// ESpeak synthesizes speech offline through an espeak-ng subprocess,
// producing 22050 Hz mono 16-bit WAV. Text is piped on stdin and audio is
// written to a scratch file, which is removed on every exit path.
type ESpeak struct {
	// Command optionally overrides the espeak invocation, e.g.
	// "espeak-ng -p 40". It is split with shell-style word rules.
	Command string
}

var lookESpeak = exec.LookPath

func (*ESpeak) Name() string { return "espeak" }

func (*ESpeak) Format() audio.Format { return audio.FormatWAV }

func (e *ESpeak) Available() error {
	argv, err := e.argv()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := lookESpeak(argv[0]); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (e *ESpeak) Synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("espeak: empty input text")
	}

	argv, err := e.argv()
	if err != nil {
		return nil, err
	}

	wpm := espeakWPMNormal
	if opts.Rate == RateSlow {
		wpm = espeakWPMSlow
	}

	outPath := filepath.Join(os.TempDir(), "voicereader-"+uuid.NewString()+".wav")
	defer func() { _ = os.Remove(outPath) }()

	args := append(argv[1:],
		"-s", strconv.Itoa(wpm),
		"-w", outPath,
		"--stdin",
	)
	if opts.Language != "" {
		args = append(args, "-v", opts.Language)
	}

	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("espeak: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("espeak: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("espeak: read output: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("espeak: produced no audio")
	}

	return data, nil
}

// argv resolves the espeak command line. With no override it prefers
// espeak-ng and falls back to the older espeak binary name.
func (e *ESpeak) argv() ([]string, error) {
	if e.Command != "" {
		args, err := shellwords.Parse(e.Command)
		if err != nil {
			return nil, fmt.Errorf("parse espeak command: %w", err)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("espeak command is empty")
		}
		return args, nil
	}

	if _, err := lookESpeak("espeak-ng"); err == nil {
		return []string{"espeak-ng"}, nil
	}
	return []string{"espeak"}, nil
}
