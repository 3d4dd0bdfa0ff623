package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lorestream/internal/logging"
	"lorestream/internal/services"
)

func TestNewWritesConsoleLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "stream.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "sequencer")
	component.Info("frames emitted", logging.Int("frames", 15), logging.String("era", "Bronze Age"))
	component.Debug("suppressed at info level")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO sequencer: frames emitted") {
		t.Fatalf("missing component line, got: %s", out)
	}
	if !strings.Contains(out, "frames=15") {
		t.Fatalf("missing attribute, got: %s", out)
	}
	if !strings.Contains(out, `era="Bronze Age"`) {
		t.Fatalf("expected quoted attr value, got: %s", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Fatalf("debug line should be suppressed: %s", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "stream.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithSessionID(context.Background(), "abc123")
	ctx = services.WithSlideIndex(ctx, 7)
	ctx = services.WithStage(ctx, "streaming")

	logging.WithContext(ctx, logger).Info("slide committed")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"session_id=abc123", "slide_index=7", "stage=streaming"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output: %s", want, out)
		}
	}
}
