package era

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"lorestream/internal/textutil"
)

// DurationTable maps normalized era keys to display durations in seconds.
// Built once at load time, read-only afterwards.
type DurationTable struct {
	seconds map[string]float64
}

// LoadDurations reads the era duration file. The format is one
// "Era Label = seconds" entry per line; blank lines and lines starting with
// '#' are ignored. A missing file yields an empty table, not an error, so
// every era falls back to the default slide duration.
func LoadDurations(path string) (*DurationTable, error) {
	table := &DurationTable{seconds: make(map[string]float64)}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("open duration file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, found := strings.Cut(text, "=")
		if !found {
			return nil, fmt.Errorf("duration file %s: line %d: missing '='", path, line)
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("duration file %s: line %d: %w", path, line, err)
		}
		if secs <= 0 {
			return nil, fmt.Errorf("duration file %s: line %d: duration must be positive", path, line)
		}
		table.seconds[textutil.NormalizeKey(key)] = secs
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read duration file: %w", err)
	}
	return table, nil
}

// NewDurationTable builds a table from an in-memory mapping of era labels to
// seconds. Used by tests and callers that already parsed their own source.
func NewDurationTable(entries map[string]float64) *DurationTable {
	table := &DurationTable{seconds: make(map[string]float64, len(entries))}
	for label, secs := range entries {
		table.seconds[textutil.NormalizeKey(label)] = secs
	}
	return table
}

// Lookup returns the configured duration for an era label. The label is
// matched by normalized key, trying the label as written, then without a
// trailing date range, then with a leading "The " toggled.
func (t *DurationTable) Lookup(eraLabel string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	base := textutil.StripDateRange(eraLabel)
	candidates := []string{eraLabel, base}
	if strings.HasPrefix(base, "The ") {
		candidates = append(candidates, strings.TrimPrefix(base, "The "))
	} else if base != "" {
		candidates = append(candidates, "The "+base)
	}
	for _, candidate := range candidates {
		key := textutil.NormalizeKey(candidate)
		if key == "" {
			continue
		}
		if secs, ok := t.seconds[key]; ok {
			return secs, true
		}
	}
	return 0, false
}

// Len reports how many eras have explicit durations.
func (t *DurationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.seconds)
}
