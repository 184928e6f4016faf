package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/go-voice-reader/internal/audio"
)

const gttsDefaultBaseURL = "https://translate.google.com"

// GTTS synthesizes speech through the Google Translate TTS web endpoint.
// It needs network access and returns MP3 audio. The endpoint enforces no
// authentication but does require a browser-ish User-Agent.
type GTTS struct {
	BaseURL string
	Client  *http.Client
}

func NewGTTS() *GTTS {
	return &GTTS{
		BaseURL: gttsDefaultBaseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (*GTTS) Name() string { return "gtts" }

func (*GTTS) Format() audio.Format { return audio.FormatMP3 }

// Available always reports ready: network reachability is only knowable
// per request, so connection failures surface as synthesis errors instead.
func (*GTTS) Available() error { return nil }

func (g *GTTS) Synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("gtts: empty input text")
	}

	lang := opts.Language
	if lang == "" {
		lang = "en"
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)
	if opts.Rate == RateSlow {
		q.Set("ttsspeed", "0.3")
	} else {
		q.Set("ttsspeed", "1")
	}

	reqURL := g.BaseURL + "/translate_tts?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("gtts: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtts: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtts: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gtts: read response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("gtts: empty audio response")
	}

	return data, nil
}
