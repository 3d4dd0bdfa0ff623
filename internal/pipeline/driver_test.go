package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lorestream/internal/announce"
	"lorestream/internal/config"
	"lorestream/internal/journal"
	"lorestream/internal/pipeline"
	"lorestream/internal/resume"
)

// stubEncoder writes a shell script that swallows stdin like ffmpeg would,
// so the full pipeline can run without a real encoder.
func stubEncoder(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\ncat > /dev/null\nexit 0\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	csv := filepath.Join(dir, "full_years.csv")
	data := "year,label,era,image,fact,isSpecial\n" +
		"1969,1969,Space Age,,Moon landing,true\n" +
		"1970,1970,Space Age,,,false\n"
	if err := os.WriteFile(csv, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Paths.DatasetFile = csv
	cfg.Paths.DurationFile = filepath.Join(dir, "absent_durations.txt")
	cfg.Paths.MusicDir = filepath.Join(dir, "absent_music")
	cfg.Paths.DefaultMusic = ""
	cfg.Paths.FontSemibold = ""
	cfg.Paths.FontRegular = ""
	cfg.Paths.FontMedium = ""
	cfg.Paths.PromoDir = filepath.Join(dir, "absent_promos")
	cfg.Paths.SponsorDir = filepath.Join(dir, "absent_sponsors")
	cfg.Paths.StateDir = dir
	cfg.Paths.LogDir = dir

	cfg.Stream.Width = 64
	cfg.Stream.Height = 36
	cfg.Stream.FPS = 4
	cfg.Stream.SlideDuration = 0.5
	cfg.Stream.SpecialMinDuration = 0.5
	cfg.Stream.CrossfadeDuration = 0.25
	cfg.Stream.IntroEnabled = false
	cfg.Stream.OutroEnabled = false
	cfg.Stream.Destination = filepath.Join(dir, "out.mp4")

	// Small PCM volume so the unread pipe buffer never fills during a test.
	cfg.Audio.SampleRate = 8000
	cfg.Audio.Channels = 1
	cfg.Audio.FifoPath = filepath.Join(dir, "audio.pcm")

	cfg.Encoder.Binary = stubEncoder(t, dir)
	return &cfg
}

func TestRunPlaysDatasetToCompletion(t *testing.T) {
	cfg := testConfig(t)
	store, err := journal.Open(cfg.JournalFile())
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	defer store.Close()

	driver := pipeline.New(cfg, store, announce.NewService(cfg, nil), "sess-1", nil)
	result := driver.Run(context.Background())

	if result.Err != nil {
		t.Fatalf("run error: %v", result.Err)
	}
	if result.Status != journal.StatusDone || result.ExitCode() != 0 {
		t.Fatalf("status = %q exit = %d", result.Status, result.ExitCode())
	}
	if result.NextIndex != 2 {
		t.Fatalf("next index = %d, want 2", result.NextIndex)
	}
	// Two slides at 0.5s and 4 fps: 1 hold + 1 blend frame, then 2 hold
	// frames for the final slide.
	if result.Frames != 4 {
		t.Fatalf("frames = %d, want 4", result.Frames)
	}

	// A clean finish clears the resume point.
	if got := resume.NewLedger(cfg.ResumeFile(), nil).Read(); got != 0 {
		t.Fatalf("resume after done = %d, want 0", got)
	}

	sessions, err := store.RecentSessions(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Status != journal.StatusDone {
		t.Fatalf("journal sessions = %+v", sessions)
	}
	if sessions[0].Slides != 2 {
		t.Fatalf("journaled slides = %d, want 2", sessions[0].Slides)
	}
}

func TestRunInterruptedByCancel(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := pipeline.New(cfg, nil, announce.NewService(cfg, nil), "sess-1", nil)
	result := driver.Run(ctx)

	if result.Status != journal.StatusInterrupted {
		t.Fatalf("status = %q, want interrupted", result.Status)
	}
	if result.ExitCode() != 2 {
		t.Fatalf("exit = %d, want 2", result.ExitCode())
	}
}

func TestRunFailsOnMissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.DatasetFile = filepath.Join(t.TempDir(), "absent.csv")

	driver := pipeline.New(cfg, nil, announce.NewService(cfg, nil), "sess-1", nil)
	result := driver.Run(context.Background())

	if result.Status != journal.StatusFailed || result.ExitCode() != 1 {
		t.Fatalf("status = %q exit = %d", result.Status, result.ExitCode())
	}
	if result.Err == nil {
		t.Fatal("expected dataset load error")
	}
}

func TestRunResumesFromLedger(t *testing.T) {
	cfg := testConfig(t)
	if err := resume.NewLedger(cfg.ResumeFile(), nil).Commit(1); err != nil {
		t.Fatal(err)
	}

	store, err := journal.Open(cfg.JournalFile())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	driver := pipeline.New(cfg, store, announce.NewService(cfg, nil), "sess-1", nil)
	result := driver.Run(context.Background())

	if result.Err != nil {
		t.Fatalf("run error: %v", result.Err)
	}
	// Only the second slide plays: 2 hold frames, no blend.
	if result.Frames != 2 {
		t.Fatalf("frames = %d, want 2", result.Frames)
	}
	sessions, err := store.RecentSessions(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if sessions[0].StartIndex != 1 || sessions[0].Slides != 1 {
		t.Fatalf("session = %+v, want start 1 with one slide", sessions[0])
	}
}

func TestRunRestartsWhenResumePastEnd(t *testing.T) {
	cfg := testConfig(t)
	if err := resume.NewLedger(cfg.ResumeFile(), nil).Commit(99); err != nil {
		t.Fatal(err)
	}

	driver := pipeline.New(cfg, nil, announce.NewService(cfg, nil), "sess-1", nil)
	result := driver.Run(context.Background())

	if result.Err != nil {
		t.Fatalf("run error: %v", result.Err)
	}
	if result.Frames != 4 {
		t.Fatalf("frames = %d, want full dataset replay of 4", result.Frames)
	}
}
