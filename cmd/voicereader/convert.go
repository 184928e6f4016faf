package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/example/go-voice-reader/internal/audio"
	"github.com/example/go-voice-reader/internal/config"
	"github.com/example/go-voice-reader/internal/document"
	"github.com/example/go-voice-reader/internal/engine"
	"github.com/example/go-voice-reader/internal/pipeline"
	textpkg "github.com/example/go-voice-reader/internal/text"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var engineName string
	var output string
	var language string
	var rate string
	var maxChunkChars int
	var pauseMS int

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert a document to a spoken audio file",
		Long: `Convert reads a document (.txt, .md, .docx, or '-' for text on stdin),
synthesizes it with the selected speech engine, and writes a single audio
file. Long texts are split at natural boundaries, synthesized chunk by
chunk, and stitched back together with short pauses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			name := engineName
			if name == "" {
				name = cfg.TTS.Engine
			}
			name, err = config.NormalizeEngine(name)
			if err != nil {
				return err
			}

			selectedRate := rate
			if selectedRate == "" {
				selectedRate = cfg.TTS.Rate
			}
			selectedRate, err = config.NormalizeRate(selectedRate)
			if err != nil {
				return err
			}

			lang := language
			if lang == "" {
				lang = cfg.TTS.Language
			}

			limit := cfg.TTS.MaxChunkChars
			if cmd.Flags().Changed("max-chunk-chars") {
				limit = maxChunkChars
			}

			pause := cfg.TTS.PauseMS
			if cmd.Flags().Changed("pause-ms") {
				pause = pauseMS
			}

			doc, err := readConvertInput(args[0], os.Stdin)
			if err != nil {
				return err
			}

			eng, err := engine.New(name, cfg.TTS.ESpeakCommand)
			if err != nil {
				return err
			}

			combiner, err := audio.CombinerFor(eng.Format())
			if err != nil {
				return err
			}

			outPath := output
			if outPath == "" {
				outPath = defaultOutputPath(cfg.Output.Dir, doc.SourceName, eng.Format())
			}

			p := &pipeline.Pipeline{
				Engine:        eng,
				Combiner:      combiner,
				Log:           slog.Default(),
				MaxChunkChars: limit,
				PauseMS:       pause,
				Options: engine.Options{
					Language: lang,
					Rate:     engine.Rate(selectedRate),
				},
			}

			res, err := p.Convert(cmd.Context(), doc.Text, outPath)
			if err != nil {
				return mapConvertError(name, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d chars, %d chunks)\n",
				res.OutputPath, res.TotalChars, res.ChunkCount)

			return nil
		},
	}

	cmd.Flags().StringVar(&engineName, "engine", "", "Speech engine (gtts|espeak; overrides config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output audio path (default out/<input-stem>.<mp3|wav>)")
	cmd.Flags().StringVar(&language, "language", "", "Language code passed to the engine (overrides config)")
	cmd.Flags().StringVar(&rate, "rate", "", "Speech rate (normal|slow; overrides config)")
	cmd.Flags().IntVar(&maxChunkChars, "max-chunk-chars", 5000, "Maximum characters per synthesis chunk")
	cmd.Flags().IntVar(&pauseMS, "pause-ms", 300, "Silence between stitched chunks in milliseconds")

	return cmd
}

// readConvertInput loads the document for a convert run. "-" reads plain
// text from stdin; anything else goes through the format-detecting loader.
func readConvertInput(arg string, stdin io.Reader) (document.Document, error) {
	if arg != "-" {
		return document.Load(arg)
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return document.Document{}, fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return document.Document{}, fmt.Errorf("no text on stdin")
	}

	return document.Document{Text: string(b), SourceName: "stdin"}, nil
}

// defaultOutputPath mirrors the conventional layout: out/<stem>.<ext>.
func defaultOutputPath(dir, sourceName string, format audio.Format) string {
	stem := strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName))
	if stem == "" {
		stem = "speech"
	}

	return filepath.Join(dir, stem+format.Ext())
}

// mapConvertError rewrites low-level failures into actionable CLI messages.
func mapConvertError(engineName string, err error) error {
	var ce *pipeline.ChunkError
	if errors.As(err, &ce) {
		return fmt.Errorf("conversion failed at chunk %d of %d: %w", ce.Index, ce.Total, ce.Err)
	}

	if errors.Is(err, engine.ErrUnavailable) {
		if engineName == config.EngineESpeak {
			return fmt.Errorf("espeak binary not found; install espeak-ng or set --tts-espeak-command: %w", err)
		}
		return fmt.Errorf("engine %q is not available: %w", engineName, err)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("a required external program was not found on PATH: %w", err)
	}

	if errors.Is(err, textpkg.ErrEmptyText) {
		return fmt.Errorf("the document contains no speakable text: %w", err)
	}

	return err
}
