package config

import (
	"fmt"
	"strings"
)

const (
	EngineGTTS   = "gtts"
	EngineESpeak = "espeak"
)

const (
	RateNormal = "normal"
	RateSlow   = "slow"
)

// NormalizeEngine canonicalizes an engine name, accepting common aliases.
func NormalizeEngine(raw string) (string, error) {
	engine := strings.ToLower(strings.TrimSpace(raw))
	if engine == "" {
		engine = EngineGTTS
	}
	switch engine {
	case EngineGTTS, EngineESpeak:
		return engine, nil
	case "google":
		return EngineGTTS, nil
	case "espeak-ng", "local":
		return EngineESpeak, nil
	default:
		return "", fmt.Errorf("invalid engine %q (expected %s|%s)", raw, EngineGTTS, EngineESpeak)
	}
}

// NormalizeRate canonicalizes a speech-rate name.
func NormalizeRate(raw string) (string, error) {
	rate := strings.ToLower(strings.TrimSpace(raw))
	if rate == "" {
		rate = RateNormal
	}
	switch rate {
	case RateNormal, RateSlow:
		return rate, nil
	default:
		return "", fmt.Errorf("invalid rate %q (expected %s|%s)", raw, RateNormal, RateSlow)
	}
}
