package testutil

import (
	"os/exec"
	"testing"
)

// The helpers must either pass straight through (prerequisite present) or
// skip; they must never fail the test.
func TestRequireFFmpeg_skipsOrPasses(t *testing.T) {
	t.Run("probe", func(t *testing.T) {
		RequireFFmpeg(t)

		if _, err := exec.LookPath("ffmpeg"); err != nil {
			t.Error("RequireFFmpeg passed but ffmpeg is not on PATH")
		}
	})
}

func TestRequireESpeak_skipsOrPasses(t *testing.T) {
	t.Run("probe", func(t *testing.T) {
		RequireESpeak(t)
	})
}
