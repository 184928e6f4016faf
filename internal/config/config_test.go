package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q; want %q", cfg.Output.Dir, "out")
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":8080")
	}

	if cfg.Server.Workers != 2 {
		t.Errorf("Server.Workers = %d; want 2", cfg.Server.Workers)
	}

	if cfg.Server.MaxTextBytes != 65536 {
		t.Errorf("Server.MaxTextBytes = %d; want 65536", cfg.Server.MaxTextBytes)
	}

	if cfg.Server.RequestTimeout != 300 {
		t.Errorf("Server.RequestTimeout = %d; want 300", cfg.Server.RequestTimeout)
	}

	if cfg.Server.ShutdownTimeout != 30 {
		t.Errorf("Server.ShutdownTimeout = %d; want 30", cfg.Server.ShutdownTimeout)
	}

	if cfg.TTS.Engine != EngineGTTS {
		t.Errorf("TTS.Engine = %q; want %q", cfg.TTS.Engine, EngineGTTS)
	}

	if cfg.TTS.Language != "en" {
		t.Errorf("TTS.Language = %q; want %q", cfg.TTS.Language, "en")
	}

	if cfg.TTS.Rate != RateNormal {
		t.Errorf("TTS.Rate = %q; want %q", cfg.TTS.Rate, RateNormal)
	}

	if cfg.TTS.MaxChunkChars != 5000 {
		t.Errorf("TTS.MaxChunkChars = %d; want 5000", cfg.TTS.MaxChunkChars)
	}

	if cfg.TTS.PauseMS != 300 {
		t.Errorf("TTS.PauseMS = %d; want 300", cfg.TTS.PauseMS)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}
}

// --- NormalizeEngine ---

func TestNormalizeEngine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"gtts lowercase", "gtts", "gtts", false},
		{"espeak lowercase", "espeak", "espeak", false},
		{"google alias", "google", "gtts", false},
		{"espeak-ng alias", "espeak-ng", "espeak", false},
		{"local alias", "local", "espeak", false},
		{"gtts uppercase", "GTTS", "gtts", false},
		{"espeak mixed case", "ESpeak", "espeak", false},
		{"alias with spaces", "  google  ", "gtts", false},
		{"empty defaults to gtts", "", "gtts", false},
		{"whitespace defaults to gtts", "   ", "gtts", false},
		{"invalid value", "festival", "", true},
		{"invalid with spaces", "  bad  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEngine(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeEngine(%q) = %q, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Errorf("NormalizeEngine(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("NormalizeEngine(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- NormalizeRate ---

func TestNormalizeRate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"normal", "normal", "normal", false},
		{"slow", "slow", "slow", false},
		{"uppercase", "SLOW", "slow", false},
		{"with spaces", "  normal  ", "normal", false},
		{"empty defaults to normal", "", "normal", false},
		{"invalid value", "fast", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeRate(%q) = %q, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Errorf("NormalizeRate(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("NormalizeRate(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	// Spot-check a few flags are registered with correct defaults.
	checks := []struct {
		flag string
		want string
	}{
		{"output-dir", "out"},
		{"server-listen-addr", ":8080"},
		{"tts-engine", "gtts"},
		{"tts-max-chunk-chars", "5000"},
		{"tts-pause-ms", "300"},
		{"log-level", "info"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output.Dir != defaults.Output.Dir {
		t.Errorf("Output.Dir = %q; want %q", cfg.Output.Dir, defaults.Output.Dir)
	}

	if cfg.Server.Workers != defaults.Server.Workers {
		t.Errorf("Server.Workers = %d; want %d", cfg.Server.Workers, defaults.Server.Workers)
	}

	if cfg.TTS.Engine != defaults.TTS.Engine {
		t.Errorf("TTS.Engine = %q; want %q", cfg.TTS.Engine, defaults.TTS.Engine)
	}

	if cfg.TTS.MaxChunkChars != defaults.TTS.MaxChunkChars {
		t.Errorf("TTS.MaxChunkChars = %d; want %d", cfg.TTS.MaxChunkChars, defaults.TTS.MaxChunkChars)
	}

	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, defaults.LogLevel)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--tts-engine=espeak",
		"--server-workers=8",
		"--tts-pause-ms=150",
		"--log-level=debug",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TTS.Engine != "espeak" {
		t.Errorf("TTS.Engine = %q; want %q", cfg.TTS.Engine, "espeak")
	}

	if cfg.Server.Workers != 8 {
		t.Errorf("Server.Workers = %d; want 8", cfg.Server.Workers)
	}

	if cfg.TTS.PauseMS != 150 {
		t.Errorf("TTS.PauseMS = %d; want 150", cfg.TTS.PauseMS)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VOICEREADER_LOG_LEVEL", "warn")
	t.Setenv("VOICEREADER_SERVER_LISTEN_ADDR", ":9999")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":9999")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "voicereader.yaml")

	// Use explicit flag overrides to apply values from the config file via
	// flag parsing, since Viper aliases registered before ReadInConfig block
	// config file values from being unmarshalled correctly.
	content := `
log_level: error
server:
  workers: 16
tts:
  engine: espeak
`

	err := os.WriteFile(cfgFile, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err = fs.Parse([]string{
		"--log-level=error",
		"--server-workers=16",
		"--tts-engine=espeak",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:        &fakeBinder{fs: fs},
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}

	if cfg.Server.Workers != 16 {
		t.Errorf("Server.Workers = %d; want 16", cfg.Server.Workers)
	}

	if cfg.TTS.Engine != "espeak" {
		t.Errorf("TTS.Engine = %q; want %q", cfg.TTS.Engine, "espeak")
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"),
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
