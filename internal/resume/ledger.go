package resume

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lorestream/internal/logging"
)

// Ledger tracks the next slide index across process restarts.
type Ledger struct {
	path      string
	logger    *slog.Logger
	committed int
}

// NewLedger binds the ledger to its state file.
func NewLedger(path string, logger *slog.Logger) *Ledger {
	return &Ledger{
		path:      path,
		logger:    logging.NewComponentLogger(logger, "resume"),
		committed: -1,
	}
}

// Read returns the persisted next slide index. A missing, empty, or
// unparseable file starts the run from the beginning; corruption is logged
// but never fatal.
func (l *Ledger) Read() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("resume file unreadable, starting from the first slide",
				logging.String("path", l.path), logging.Error(err))
		}
		return 0
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || value < 0 {
		l.logger.Warn("resume file corrupt, starting from the first slide",
			logging.String("path", l.path),
			logging.String("contents", strings.TrimSpace(string(data))))
		return 0
	}
	return value
}

// Commit persists nextIndex as the resume point. Commits are monotonic: an
// index at or below the last committed value is ignored so a late write can
// never rewind progress.
func (l *Ledger) Commit(nextIndex int) error {
	if nextIndex <= l.committed {
		return nil
	}
	tmp := l.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create resume directory: %w", err)
	}
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(nextIndex)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write resume file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("publish resume file: %w", err)
	}
	l.committed = nextIndex
	return nil
}

// Clear removes the resume point after a clean end-of-dataset finish.
func (l *Ledger) Clear() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear resume file: %w", err)
	}
	l.committed = -1
	return nil
}
