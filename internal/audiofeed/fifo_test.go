package audiofeed_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lorestream/internal/audiofeed"
	"lorestream/internal/services"
)

func TestEnsureFifoCreatesPipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.pcm")
	if err := audiofeed.EnsureFifo(path); err != nil {
		t.Fatalf("EnsureFifo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		t.Fatalf("expected named pipe, got mode %v", info.Mode())
	}
}

func TestEnsureFifoReplacesStalePipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.pcm")
	if err := audiofeed.EnsureFifo(path); err != nil {
		t.Fatal(err)
	}
	if err := audiofeed.EnsureFifo(path); err != nil {
		t.Fatalf("EnsureFifo over stale pipe: %v", err)
	}
}

func TestEnsureFifoRejectsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.pcm")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := audiofeed.EnsureFifo(path)
	if err == nil {
		t.Fatal("expected error for regular file at pipe path")
	}
	// Pipe setup failures classify like the rest of the run's errors.
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration classification", err)
	}
	if !services.Fatal(err) {
		t.Fatalf("err = %v, must be fatal", err)
	}
}

func TestRemoveFifoMissingIsFine(t *testing.T) {
	if err := audiofeed.RemoveFifo(filepath.Join(t.TempDir(), "absent.pcm")); err != nil {
		t.Fatalf("RemoveFifo: %v", err)
	}
}
