package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lorestream/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDataset := filepath.Join(tempHome, ".local", "share", "lorestream", "assets", "full_years.csv")
	if cfg.Paths.DatasetFile != wantDataset {
		t.Fatalf("unexpected dataset file: got %q want %q", cfg.Paths.DatasetFile, wantDataset)
	}
	if cfg.Stream.Width != 1920 || cfg.Stream.Height != 1080 || cfg.Stream.FPS != 30 {
		t.Fatalf("unexpected stream defaults: %+v", cfg.Stream)
	}
	if cfg.Stream.CrossfadeDuration != 0.5 {
		t.Fatalf("unexpected crossfade default: %v", cfg.Stream.CrossfadeDuration)
	}
	if !cfg.StreamsToFile() {
		t.Fatal("default destination should be a local file")
	}
	if cfg.Announce.Mode != "none" {
		t.Fatalf("announcements without a webhook must normalize to none, got %q", cfg.Announce.Mode)
	}
	if got := cfg.ResumeFile(); !strings.HasSuffix(got, filepath.Join("state", "last_index.txt")) {
		t.Fatalf("unexpected resume file: %q", got)
	}
}

func TestLoadParsesFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lorestream.toml")
	content := `
[stream]
destination = "rtmp://a.rtmp.youtube.com/live2/key"
fps = 10

[announce]
webhook_url = "https://example.com/hook"
mode = "special"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.StreamsToFile() {
		t.Fatal("rtmp destination should not be treated as a file")
	}
	if cfg.Stream.FPS != 10 {
		t.Fatalf("fps not applied: %d", cfg.Stream.FPS)
	}
	if cfg.Announce.Mode != "special" {
		t.Fatalf("announce mode not applied: %q", cfg.Announce.Mode)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"odd width", "[stream]\nwidth = 1921\n"},
		{"zero fps", "[stream]\nfps = 0\n"},
		{"bad announce mode", "[announce]\nwebhook_url = \"https://x\"\nmode = \"sometimes\"\n"},
		{"bad channels", "[audio]\nchannels = 6\n"},
		{"overlay window too large", "[overlay]\nevery_slides = 2\nshow_slides = 5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config should exist")
	}
	if cfg.Overlay.EverySlides != 50 || cfg.Overlay.ShowSlides != 4 {
		t.Fatalf("unexpected overlay schedule: %+v", cfg.Overlay)
	}
}
