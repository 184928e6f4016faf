// Package doctor provides environment preflight checks for voicereader.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// ProbeFunc reports whether an external dependency is reachable.
type ProbeFunc func() error

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// ESpeakVersion returns the output of `espeak-ng --version`.
	ESpeakVersion VersionFunc
	// SkipESpeak skips the espeak check (gtts-only setups).
	SkipESpeak bool
	// FFmpegVersion returns the output of `ffmpeg -version`.
	FFmpegVersion VersionFunc
	// SkipFFmpeg skips the ffmpeg check (espeak/WAV-only setups).
	SkipFFmpeg bool
	// Network probes the Google Translate TTS endpoint.
	Network ProbeFunc
	// SkipNetwork skips the network probe (espeak-only setups).
	SkipNetwork bool
	// OutputDir is verified to be creatable and writable when non-empty.
	OutputDir string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark. ffmpeg missing is
// reported but conversions still work in truncated single-chunk mode, so
// the message says so.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- espeak binary ----------------------------------------------------
	if cfg.SkipESpeak {
		fmt.Fprintf(w, "%s espeak binary: skipped\n", PassMark)
	} else {
		ver, err := cfg.ESpeakVersion()
		if err != nil {
			res.fail(fmt.Sprintf("espeak binary: %v", err))
			fmt.Fprintf(w, "%s espeak binary: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s espeak binary: %s\n", PassMark, ver)
		}
	}

	// ---- ffmpeg binary ----------------------------------------------------
	if cfg.SkipFFmpeg {
		fmt.Fprintf(w, "%s ffmpeg binary: skipped\n", PassMark)
	} else {
		ver, err := cfg.FFmpegVersion()
		if err != nil {
			res.fail(fmt.Sprintf("ffmpeg binary: %v", err))
			fmt.Fprintf(w, "%s ffmpeg binary: not found, long texts will be truncated (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s ffmpeg binary: %s\n", PassMark, ver)
		}
	}

	// ---- network ----------------------------------------------------------
	if cfg.SkipNetwork {
		fmt.Fprintf(w, "%s speech service reachable: skipped\n", PassMark)
	} else {
		if err := cfg.Network(); err != nil {
			res.fail(fmt.Sprintf("speech service: %v", err))
			fmt.Fprintf(w, "%s speech service reachable: no (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s speech service reachable: yes\n", PassMark)
		}
	}

	// ---- output directory -------------------------------------------------
	if cfg.OutputDir != "" {
		if err := checkWritableDir(cfg.OutputDir); err != nil {
			res.fail(fmt.Sprintf("output directory %q: %v", cfg.OutputDir, err))
			fmt.Fprintf(w, "%s output directory %s: %v\n", FailMark, cfg.OutputDir, err)
		} else {
			fmt.Fprintf(w, "%s output directory writable: %s\n", PassMark, cfg.OutputDir)
		}
	}

	return res
}

// checkWritableDir verifies dir can be created and written to, by creating
// and removing a probe file.
func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create: %w", err)
	}

	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("cannot write: %w", err)
	}

	return os.Remove(probe)
}
