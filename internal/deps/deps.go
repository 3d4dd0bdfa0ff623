// Package deps verifies the external pieces a stream run needs before any
// frame is rendered: the ffmpeg binary and the asset files the configuration
// points at.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"lorestream/internal/config"
)

// Requirement defines one external dependency of a stream run.
type Requirement struct {
	Name string
	// Command is a binary resolved via PATH; Path is a file or directory
	// checked on disk. Exactly one of the two is set.
	Command     string
	Path        string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Target      string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the preflight checklist from the configuration.
// Optional entries degrade gracefully at runtime (fallback fonts, silence,
// no overlay); required entries abort the run when absent.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "ffmpeg", Command: cfg.Encoder.Binary, Description: "video encoder and music decoder"},
		{Name: "dataset", Path: cfg.Paths.DatasetFile, Description: "chronological year records"},
		{Name: "duration table", Path: cfg.Paths.DurationFile, Description: "per-era slide durations", Optional: true},
		{Name: "music directory", Path: cfg.Paths.MusicDir, Description: "era-matched tracks", Optional: true},
		{Name: "fallback track", Path: cfg.Paths.DefaultMusic, Description: "background loop for unmatched eras", Optional: true},
		{Name: "semibold font", Path: cfg.Paths.FontSemibold, Description: "year and label text", Optional: true},
		{Name: "regular font", Path: cfg.Paths.FontRegular, Description: "fact panel text", Optional: true},
		{Name: "medium font", Path: cfg.Paths.FontMedium, Description: "era caption text", Optional: true},
		{Name: "promo directory", Path: cfg.Paths.PromoDir, Description: "promo overlay images", Optional: true},
		{Name: "sponsor directory", Path: cfg.Paths.SponsorDir, Description: "sponsor overlay images", Optional: true},
	}
}

// Check evaluates the requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

// Missing returns the non-optional requirements that failed, or nil when the
// run can proceed.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

func check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	switch {
	case strings.TrimSpace(req.Command) != "":
		command := strings.TrimSpace(req.Command)
		status.Target = command
		resolved, err := exec.LookPath(command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", command)
			return status
		}
		status.Target = resolved
		status.Available = true
	case strings.TrimSpace(req.Path) != "":
		path := strings.TrimSpace(req.Path)
		status.Target = path
		if _, err := os.Stat(path); err != nil {
			status.Detail = fmt.Sprintf("path %q not found", path)
			return status
		}
		status.Available = true
	default:
		status.Detail = "not configured"
	}
	return status
}
