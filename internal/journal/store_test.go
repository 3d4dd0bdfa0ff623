package journal_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lorestream/internal/dataset"
	"lorestream/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.StartSession(ctx, "sess-1", "rtmp://live/app", 10); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	record := dataset.Record{Year: "1969", Label: "1969", Era: "Space Age", IsSpecial: true}
	if err := store.RecordSlide(ctx, "sess-1", 10, record, 5*time.Second); err != nil {
		t.Fatalf("RecordSlide: %v", err)
	}
	if err := store.RecordSlide(ctx, "sess-1", 11, dataset.Record{Year: "1970", Label: "1970"}, 4*time.Second); err != nil {
		t.Fatalf("RecordSlide: %v", err)
	}

	if err := store.FinishSession(ctx, "sess-1", journal.StatusDone, 12, 3600); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}

	sessions, err := store.RecentSessions(ctx, 5)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	sess := sessions[0]
	if sess.ID != "sess-1" || sess.Status != journal.StatusDone {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Slides != 2 {
		t.Fatalf("slide count = %d, want 2", sess.Slides)
	}
	if !sess.EndIndex.Valid || sess.EndIndex.Int64 != 12 {
		t.Fatalf("end index = %+v, want 12", sess.EndIndex)
	}
	if sess.Frames != 3600 {
		t.Fatalf("frames = %d, want 3600", sess.Frames)
	}
	if !sess.EndedAt.Valid {
		t.Fatal("ended_at not set")
	}
}

func TestRecentSessionsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.StartSession(ctx, "older", "out.mp4", 0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := store.StartSession(ctx, "newer", "out.mp4", 0); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.RecentSessions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].ID != "newer" {
		t.Fatalf("expected newest session first, got %+v", sessions)
	}
}

func TestMusicMissesDeduplicated(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.StartSession(ctx, "sess-1", "out.mp4", 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := store.RecordMusicMiss(ctx, "sess-1", "Space Age"); err != nil {
			t.Fatalf("RecordMusicMiss: %v", err)
		}
	}
	if err := store.RecordMusicMiss(ctx, "sess-1", "Atomic Age"); err != nil {
		t.Fatal(err)
	}

	misses, err := store.MusicMisses(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(misses) != 2 || misses[0] != "Atomic Age" || misses[1] != "Space Age" {
		t.Fatalf("misses = %v", misses)
	}
}

func TestReopenExistingJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.StartSession(context.Background(), "sess-1", "out.mp4", 0); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	sessions, err := reopened.RecentSessions(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions after reopen, want 1", len(sessions))
	}
}
