package audiofeed

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"lorestream/internal/services"
)

// EnsureFifo creates the named pipe, replacing a stale pipe left by a
// previous run. A regular file at the path is an error rather than
// something to silently delete.
func EnsureFifo(path string) error {
	if info, err := os.Stat(path); err == nil {
		if info.Mode()&os.ModeNamedPipe == 0 {
			return services.Wrap(services.ErrConfiguration, "audiofeed", "ensure_fifo",
				fmt.Sprintf("path %q exists and is not a pipe", path), nil)
		}
		if err := os.Remove(path); err != nil {
			return services.Wrap(services.ErrEncoder, "audiofeed", "ensure_fifo",
				"remove stale audio pipe", err)
		}
	} else if !os.IsNotExist(err) {
		return services.Wrap(services.ErrEncoder, "audiofeed", "ensure_fifo",
			"stat audio pipe", err)
	}
	if err := unix.Mkfifo(path, 0o644); err != nil {
		return services.Wrap(services.ErrEncoder, "audiofeed", "ensure_fifo",
			fmt.Sprintf("create audio pipe %q", path), err)
	}
	return nil
}

// OpenFifoWriter opens the pipe for writing. Read-write mode keeps the open
// from blocking until the encoder attaches as the reader.
func OpenFifoWriter(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, services.Wrap(services.ErrEncoder, "audiofeed", "open_fifo",
			fmt.Sprintf("open audio pipe %q", path), err)
	}
	return file, nil
}

// RemoveFifo deletes the pipe after the run. Missing is fine.
func RemoveFifo(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrEncoder, "audiofeed", "remove_fifo",
			"remove audio pipe", err)
	}
	return nil
}
