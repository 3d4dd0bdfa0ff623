package music

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhowden/tag"

	"lorestream/internal/logging"
	"lorestream/internal/textutil"
)

// Index maps normalized era keys to resolved music asset paths. Built once
// by scanning the music directory; read-only afterwards apart from the miss
// bookkeeping, which is guarded for the diagnostics reader.
type Index struct {
	logger       *slog.Logger
	tracks       map[string]string
	fallbackPath string

	mu     sync.Mutex
	misses map[string]struct{}
}

// NewIndex scans musicDir for .mp3 files and builds the lookup index.
// A missing or empty directory is not an error; every era then resolves to
// the fallback track.
func NewIndex(musicDir, fallbackPath string, logger *slog.Logger) (*Index, error) {
	logger = logging.NewComponentLogger(logger, "music")
	idx := &Index{
		logger:       logger,
		tracks:       make(map[string]string),
		fallbackPath: fallbackPath,
		misses:       make(map[string]struct{}),
	}

	entries, err := os.ReadDir(musicDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("music directory missing, all eras use the fallback track",
				logging.String("dir", musicDir))
			return idx, nil
		}
		return nil, fmt.Errorf("scan music directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			continue
		}
		path := filepath.Join(musicDir, entry.Name())
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		key := textutil.NormalizeKey(stem)
		if key == "" {
			continue
		}
		idx.tracks[key] = path
		names = append(names, entry.Name())
		idx.logTrackMetadata(path, entry.Name())
	}
	sort.Strings(names)
	logger.Info("music index built",
		logging.Int("tracks", len(idx.tracks)),
		logging.String("dir", musicDir),
		logging.String("files", strings.Join(names, ", ")))
	return idx, nil
}

// logTrackMetadata reads ID3 tags so operators can spot mislabeled files in
// the startup log. Tag failures are ignored; the filename is what matters.
func (idx *Index) logTrackMetadata(path, name string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()
	meta, err := tag.ReadFrom(file)
	if err != nil {
		return
	}
	if title := strings.TrimSpace(meta.Title()); title != "" {
		idx.logger.Debug("indexed track",
			logging.String("file", name),
			logging.String("title", title),
			logging.String("artist", meta.Artist()))
	}
}

// Resolve maps an era label to a music asset path. Matching rules in order,
// first hit wins:
//  1. the label as written
//  2. the label without a trailing parenthetical date range
//  3. the base label with a leading "The " toggled
//  4. the base label with a trailing " Era" toggled
//
// No hit resolves to the fallback track and records the miss once per
// distinct label.
func (idx *Index) Resolve(eraLabel string) string {
	raw := strings.TrimSpace(eraLabel)
	if raw == "" {
		return idx.fallbackPath
	}
	base := textutil.StripDateRange(raw)

	candidates := make([]string, 0, 4)
	appendCandidate := func(label string) {
		key := textutil.NormalizeKey(label)
		if key == "" {
			return
		}
		for _, existing := range candidates {
			if existing == key {
				return
			}
		}
		candidates = append(candidates, key)
	}
	appendCandidate(raw)
	appendCandidate(base)
	if strings.HasPrefix(base, "The ") {
		appendCandidate(strings.TrimPrefix(base, "The "))
	} else {
		appendCandidate("The " + base)
	}
	if strings.HasSuffix(base, " Era") {
		appendCandidate(strings.TrimSuffix(base, " Era"))
	} else {
		appendCandidate(base + " Era")
	}

	for _, key := range candidates {
		if path, ok := idx.tracks[key]; ok {
			return path
		}
	}

	idx.recordMiss(raw)
	return idx.fallbackPath
}

func (idx *Index) recordMiss(label string) {
	idx.mu.Lock()
	_, seen := idx.misses[label]
	if !seen {
		idx.misses[label] = struct{}{}
	}
	idx.mu.Unlock()
	if seen {
		return
	}
	idx.logger.Warn("no era track found, using fallback",
		logging.String(logging.FieldEra, label),
		logging.String("fallback", filepath.Base(idx.fallbackPath)))
}

// Misses returns the distinct era labels that fell back to the default
// track, sorted for stable diagnostics output.
func (idx *Index) Misses() []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]string, 0, len(idx.misses))
	for label := range idx.misses {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the default background track path.
func (idx *Index) Fallback() string {
	return idx.fallbackPath
}

// Len reports the number of indexed tracks.
func (idx *Index) Len() int {
	return len(idx.tracks)
}
