package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Output   OutputConfig `mapstructure:"output"`
	Server   ServerConfig `mapstructure:"server"`
	TTS      TTSConfig    `mapstructure:"tts"`
	LogLevel string       `mapstructure:"log_level"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type TTSConfig struct {
	Engine        string `mapstructure:"engine"`
	Language      string `mapstructure:"language"`
	Rate          string `mapstructure:"rate"`
	MaxChunkChars int    `mapstructure:"max_chunk_chars"`
	PauseMS       int    `mapstructure:"pause_ms"`
	ESpeakCommand string `mapstructure:"espeak_command"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Output: OutputConfig{
			Dir: "out",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxTextBytes:    65536,
			RequestTimeout:  300,
			ShutdownTimeout: 30,
		},
		TTS: TTSConfig{
			Engine:        EngineGTTS,
			Language:      "en",
			Rate:          RateNormal,
			MaxChunkChars: 5000,
			PauseMS:       300,
			ESpeakCommand: "",
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("output-dir", defaults.Output.Dir, "Directory for generated audio when --output is not set")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent conversions served over HTTP")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum accepted text size for POST /convert")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request conversion deadline in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.String("tts-engine", defaults.TTS.Engine, "Speech engine (gtts|espeak)")
	fs.String("tts-language", defaults.TTS.Language, "Language code passed to the engine")
	fs.String("tts-rate", defaults.TTS.Rate, "Speech rate (normal|slow)")
	fs.Int("tts-max-chunk-chars", defaults.TTS.MaxChunkChars, "Maximum characters per synthesis chunk")
	fs.Int("tts-pause-ms", defaults.TTS.PauseMS, "Silence inserted between stitched chunks in milliseconds")
	fs.String("tts-espeak-command", defaults.TTS.ESpeakCommand, "Override for the espeak invocation")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("VOICEREADER")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("voicereader")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("output.dir", c.Output.Dir)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("tts.engine", c.TTS.Engine)
	v.SetDefault("tts.language", c.TTS.Language)
	v.SetDefault("tts.rate", c.TTS.Rate)
	v.SetDefault("tts.max_chunk_chars", c.TTS.MaxChunkChars)
	v.SetDefault("tts.pause_ms", c.TTS.PauseMS)
	v.SetDefault("tts.espeak_command", c.TTS.ESpeakCommand)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("output.dir", "output-dir")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("tts.engine", "tts-engine")
	v.RegisterAlias("tts.language", "tts-language")
	v.RegisterAlias("tts.rate", "tts-rate")
	v.RegisterAlias("tts.max_chunk_chars", "tts-max-chunk-chars")
	v.RegisterAlias("tts.pause_ms", "tts-pause-ms")
	v.RegisterAlias("tts.espeak_command", "tts-espeak-command")
	v.RegisterAlias("log_level", "log-level")
}
