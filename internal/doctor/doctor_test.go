package doctor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func okVersion(v string) VersionFunc {
	return func() (string, error) { return v, nil }
}

func failVersion(msg string) VersionFunc {
	return func() (string, error) { return "", fmt.Errorf("%s", msg) }
}

func allChecksPass(t *testing.T) Config {
	t.Helper()

	return Config{
		ESpeakVersion: okVersion("eSpeak NG 1.51"),
		FFmpegVersion: okVersion("ffmpeg version 6.1.1"),
		Network:       func() error { return nil },
		OutputDir:     t.TempDir(),
	}
}

func TestRun_AllPass(t *testing.T) {
	var buf bytes.Buffer

	res := Run(allChecksPass(t), &buf)
	if res.Failed() {
		t.Fatalf("unexpected failures: %v", res.Failures())
	}

	out := buf.String()
	if strings.Contains(out, FailMark) {
		t.Errorf("output contains a fail mark:\n%s", out)
	}

	for _, want := range []string{"eSpeak NG 1.51", "ffmpeg version 6.1.1", "speech service reachable: yes", "output directory writable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_ESpeakMissing(t *testing.T) {
	cfg := allChecksPass(t)
	cfg.ESpeakVersion = failVersion("not on PATH")

	var buf bytes.Buffer

	res := Run(cfg, &buf)
	if !res.Failed() {
		t.Fatal("expected failure")
	}

	if len(res.Failures()) != 1 {
		t.Errorf("Failures() = %v; want one entry", res.Failures())
	}

	if !strings.Contains(buf.String(), FailMark+" espeak binary") {
		t.Errorf("output missing espeak failure line:\n%s", buf.String())
	}
}

func TestRun_FFmpegMissingMentionsTruncation(t *testing.T) {
	cfg := allChecksPass(t)
	cfg.FFmpegVersion = failVersion("exec: ffmpeg: not found")

	var buf bytes.Buffer

	res := Run(cfg, &buf)
	if !res.Failed() {
		t.Fatal("expected failure")
	}

	if !strings.Contains(buf.String(), "long texts will be truncated") {
		t.Errorf("output missing truncation note:\n%s", buf.String())
	}
}

func TestRun_NetworkUnreachable(t *testing.T) {
	cfg := allChecksPass(t)
	cfg.Network = func() error { return fmt.Errorf("dial tcp: timeout") }

	var buf bytes.Buffer

	res := Run(cfg, &buf)
	if !res.Failed() {
		t.Fatal("expected failure")
	}

	if !strings.Contains(buf.String(), FailMark+" speech service reachable: no") {
		t.Errorf("output missing network failure line:\n%s", buf.String())
	}
}

func TestRun_Skips(t *testing.T) {
	cfg := Config{
		SkipESpeak:  true,
		SkipFFmpeg:  true,
		SkipNetwork: true,
	}

	var buf bytes.Buffer

	res := Run(cfg, &buf)
	if res.Failed() {
		t.Fatalf("unexpected failures: %v", res.Failures())
	}

	out := buf.String()
	if got := strings.Count(out, "skipped"); got != 3 {
		t.Errorf("skipped lines = %d; want 3:\n%s", got, out)
	}
}

func TestRun_OutputDirNotWritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, directory permissions are not enforced")
	}

	parent := t.TempDir()
	if err := os.Chmod(parent, 0o555); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	cfg := allChecksPass(t)
	cfg.OutputDir = filepath.Join(parent, "out")

	var buf bytes.Buffer

	res := Run(cfg, &buf)
	if !res.Failed() {
		t.Fatal("expected failure")
	}

	if !strings.Contains(buf.String(), FailMark+" output directory") {
		t.Errorf("output missing directory failure line:\n%s", buf.String())
	}
}

func TestCheckWritableDir_CreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := checkWritableDir(dir); err != nil {
		t.Fatalf("checkWritableDir: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}
