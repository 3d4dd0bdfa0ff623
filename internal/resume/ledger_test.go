package resume_test

import (
	"os"
	"path/filepath"
	"testing"

	"lorestream/internal/resume"
)

func TestReadMissingFileStartsAtZero(t *testing.T) {
	ledger := resume.NewLedger(filepath.Join(t.TempDir(), "last_index.txt"), nil)
	if got := ledger.Read(); got != 0 {
		t.Fatalf("Read = %d, want 0", got)
	}
}

func TestCommitThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_index.txt")
	ledger := resume.NewLedger(path, nil)
	if err := ledger.Commit(42); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := resume.NewLedger(path, nil).Read(); got != 42 {
		t.Fatalf("Read after commit = %d, want 42", got)
	}
}

func TestCommitIsMonotonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_index.txt")
	ledger := resume.NewLedger(path, nil)
	for _, idx := range []int{5, 3, 5, 4} {
		if err := ledger.Commit(idx); err != nil {
			t.Fatalf("Commit(%d): %v", idx, err)
		}
	}
	if got := ledger.Read(); got != 5 {
		t.Fatalf("Read = %d, want 5 (earlier indices must not rewind)", got)
	}
}

func TestReadCorruptFileStartsAtZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_index.txt")
	if err := os.WriteFile(path, []byte("not a number\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := resume.NewLedger(path, nil).Read(); got != 0 {
		t.Fatalf("Read = %d, want 0 for corrupt file", got)
	}
}

func TestReadNegativeValueStartsAtZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_index.txt")
	if err := os.WriteFile(path, []byte("-3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := resume.NewLedger(path, nil).Read(); got != 0 {
		t.Fatalf("Read = %d, want 0 for negative index", got)
	}
}

func TestClearRemovesResumePoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_index.txt")
	ledger := resume.NewLedger(path, nil)
	if err := ledger.Commit(7); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := ledger.Read(); got != 0 {
		t.Fatalf("Read after Clear = %d, want 0", got)
	}
	if err := ledger.Clear(); err != nil {
		t.Fatalf("Clear on missing file must succeed: %v", err)
	}
}

func TestCommitLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "last_index.txt")
	if err := resume.NewLedger(path, nil).Commit(9); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind after commit")
	}
}
