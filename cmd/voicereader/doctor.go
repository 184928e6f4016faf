package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/example/go-voice-reader/internal/config"
	"github.com/example/go-voice-reader/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var checkAll bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local environment checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			engineName, err := config.NormalizeEngine(cfg.TTS.Engine)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "engine: %s\n", engineName)

			// gtts needs the network and ffmpeg (MP3 stitching); espeak
			// needs only its own binary, WAV stitching is built in.
			gttsMode := engineName == config.EngineGTTS

			dcfg := doctor.Config{
				ESpeakVersion: func() (string, error) {
					return probeESpeakVersion(cfg.TTS.ESpeakCommand)
				},
				SkipESpeak:    gttsMode && !checkAll,
				FFmpegVersion: probeFFmpegVersion,
				SkipFFmpeg:    !gttsMode && !checkAll,
				Network:       probeSpeechService,
				SkipNetwork:   !gttsMode && !checkAll,
				OutputDir:     cfg.Output.Dir,
			}

			result := doctor.Run(dcfg, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	cmd.Flags().BoolVar(&checkAll, "all", false, "Check every engine's dependencies, not just the configured one")

	return cmd
}

// probeESpeakVersion runs `<espeak> --version` and returns its first line.
func probeESpeakVersion(override string) (string, error) {
	candidates := []string{"espeak-ng", "espeak"}
	if cmd := strings.TrimSpace(override); cmd != "" {
		candidates = []string{strings.Fields(cmd)[0]}
	}

	var lastErr error
	for _, bin := range candidates {
		out, err := exec.CommandContext(context.Background(), bin, "--version").Output()
		if err != nil {
			lastErr = fmt.Errorf("%s --version failed: %w", bin, err)
			continue
		}

		return firstLine(string(out)), nil
	}

	return "", lastErr
}

// probeFFmpegVersion runs `ffmpeg -version` and returns its first line.
func probeFFmpegVersion() (string, error) {
	out, err := exec.CommandContext(context.Background(), "ffmpeg", "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg -version failed: %w", err)
	}

	return firstLine(string(out)), nil
}

// probeSpeechService checks TCP reachability of the Google Translate TTS host.
func probeSpeechService() error {
	conn, err := net.DialTimeout("tcp", "translate.google.com:443", 3*time.Second)
	if err != nil {
		return err
	}

	return conn.Close()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}

	return strings.TrimSpace(s)
}
