package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-voice-reader/internal/audio"
	"github.com/example/go-voice-reader/internal/config"
	"github.com/example/go-voice-reader/internal/engine"
	"github.com/example/go-voice-reader/internal/pipeline"
	"github.com/example/go-voice-reader/internal/text"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Converter produces a finished audio stream from text.
type Converter interface {
	Convert(ctx context.Context, input string, opts engine.Options) ([]byte, error)
}

// Backend is one selectable speech engine exposed over HTTP.
type Backend struct {
	Name      string
	Format    audio.Format
	Converter Converter
	Available func() error
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   65536,
		workers:        2,
		requestTimeout: 300 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /convert.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent conversions.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request conversion deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	backends      map[string]*Backend
	defaultEngine string
	opts          options
	sem           chan struct{} // semaphore for worker pool
	log           *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /engines, and
// POST /convert. defaultEngine selects the backend used when a request
// names none.
func NewHandler(backends []*Backend, defaultEngine string, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		backends:      make(map[string]*Backend, len(backends)),
		defaultEngine: defaultEngine,
		opts:          opts,
		log:           opts.logger,
	}
	for _, b := range backends {
		h.backends[b.Name] = b
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/engines", h.handleEngines)
	mux.HandleFunc("/convert", h.handleConvert)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type engineInfo struct {
	Name      string `json:"name"`
	Format    string `json:"format"`
	Available bool   `json:"available"`
	Default   bool   `json:"default"`
}

func (h *handler) handleEngines(w http.ResponseWriter, _ *http.Request) {
	infos := make([]engineInfo, 0, len(h.backends))
	for _, name := range []string{config.EngineGTTS, config.EngineESpeak} {
		b, ok := h.backends[name]
		if !ok {
			continue
		}
		infos = append(infos, engineInfo{
			Name:      b.Name,
			Format:    string(b.Format),
			Available: b.Available() == nil,
			Default:   b.Name == h.defaultEngine,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

type convertRequest struct {
	Text     string `json:"text"`
	Engine   string `json:"engine"`
	Language string `json:"language"`
	Rate     string `json:"rate"`
}

func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	name := req.Engine
	if name == "" {
		name = h.defaultEngine
	}
	name, err := config.NormalizeEngine(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	backend, ok := h.backends[name]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("engine %q is not configured", name))
		return
	}

	rate, err := config.NormalizeRate(req.Rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Acquire a worker slot — honour context cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	// Apply per-request timeout.
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	opts := engine.Options{
		Language: req.Language,
		Rate:     engine.Rate(rate),
	}

	start := time.Now()
	data, err := backend.Converter.Convert(ctx, req.Text, opts)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			h.log.WarnContext(r.Context(), "conversion timed out",
				slog.String("engine", name),
				slog.Int("text_len", len(req.Text)),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusGatewayTimeout, "conversion timed out")
		case errors.Is(err, text.ErrEmptyText):
			writeError(w, http.StatusBadRequest, "text contains no speakable content")
		case errors.Is(err, engine.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("engine %q is not available", name))
		default:
			h.log.ErrorContext(r.Context(), "conversion failed",
				slog.String("engine", name),
				slog.Int("text_len", len(req.Text)),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.log.InfoContext(r.Context(), "conversion complete",
		slog.String("engine", name),
		slog.Int("text_len", len(req.Text)),
		slog.Int64("duration_ms", durationMS),
		slog.Int("audio_bytes", len(data)),
	)

	w.Header().Set("Content-Type", backend.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	log             *slog.Logger
	shutdownTimeout time.Duration
}

func New(cfg config.Config, log *slog.Logger) *Server {
	timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:             cfg,
		log:             log,
		shutdownTimeout: timeout,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	defaultEngine, err := config.NormalizeEngine(s.cfg.TTS.Engine)
	if err != nil {
		return err
	}

	backends, err := s.buildBackends()
	if err != nil {
		return err
	}

	handlerOpts := []Option{
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout) * time.Second),
		WithLogger(s.log),
	}

	h := NewHandler(backends, defaultEngine, handlerOpts...)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}

// buildBackends constructs one pipeline-backed Backend per known engine,
// so a single server can convert with either.
func (s *Server) buildBackends() ([]*Backend, error) {
	names := []string{config.EngineGTTS, config.EngineESpeak}

	backends := make([]*Backend, 0, len(names))
	for _, name := range names {
		eng, err := engine.New(name, s.cfg.TTS.ESpeakCommand)
		if err != nil {
			return nil, err
		}

		combiner, err := audio.CombinerFor(eng.Format())
		if err != nil {
			return nil, err
		}

		backends = append(backends, &Backend{
			Name:      name,
			Format:    eng.Format(),
			Available: eng.Available,
			Converter: &pipelineConverter{
				engine:        eng,
				combiner:      combiner,
				log:           s.log,
				maxChunkChars: s.cfg.TTS.MaxChunkChars,
				pauseMS:       s.cfg.TTS.PauseMS,
				language:      s.cfg.TTS.Language,
			},
		})
	}

	return backends, nil
}

// pipelineConverter adapts the conversion pipeline to the Converter
// contract, applying per-request options over configured defaults.
type pipelineConverter struct {
	engine        engine.Engine
	combiner      audio.Combiner
	log           *slog.Logger
	maxChunkChars int
	pauseMS       int
	language      string
}

func (c *pipelineConverter) Convert(ctx context.Context, input string, opts engine.Options) ([]byte, error) {
	if opts.Language == "" {
		opts.Language = c.language
	}
	if opts.Rate == "" {
		opts.Rate = engine.RateNormal
	}

	p := &pipeline.Pipeline{
		Engine:        c.engine,
		Combiner:      c.combiner,
		Log:           c.log,
		MaxChunkChars: c.maxChunkChars,
		PauseMS:       c.pauseMS,
		Options:       opts,
	}

	data, _, err := p.Run(ctx, input)
	return data, err
}
