// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the
// named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
package testutil

import (
	"net"
	"os"
	"os/exec"
	"testing"
	"time"
)

// RequireESpeak skips the test unless an espeak binary is available,
// either espeak-ng or espeak on PATH, or the path given by the
// VOICEREADER_ESPEAK environment variable.
func RequireESpeak(tb testing.TB) {
	tb.Helper()

	if exe := os.Getenv("VOICEREADER_ESPEAK"); exe != "" {
		if _, err := exec.LookPath(exe); err != nil {
			tb.Skipf("espeak binary %q from VOICEREADER_ESPEAK not found", exe)
		}
		return
	}

	for _, exe := range []string{"espeak-ng", "espeak"} {
		if _, err := exec.LookPath(exe); err == nil {
			return
		}
	}
	tb.Skip("espeak-ng/espeak not available in PATH")
}

// RequireFFmpeg skips the test if ffmpeg is not found in PATH.
func RequireFFmpeg(tb testing.TB) {
	tb.Helper()

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		tb.Skip("ffmpeg not available in PATH")
	}
}

// RequireNetwork skips the test when outbound network access appears to
// be unavailable.
func RequireNetwork(tb testing.TB) {
	tb.Helper()

	conn, err := net.DialTimeout("tcp", "translate.google.com:443", 3*time.Second)
	if err != nil {
		tb.Skipf("network unavailable: %v", err)
	}
	_ = conn.Close()
}
