package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains asset and state locations.
type Paths struct {
	DatasetFile  string `toml:"dataset_file"`
	DurationFile string `toml:"duration_file"`
	MusicDir     string `toml:"music_dir"`
	DefaultMusic string `toml:"default_music"`
	FontSemibold string `toml:"font_semibold"`
	FontRegular  string `toml:"font_regular"`
	FontMedium   string `toml:"font_medium"`
	PromoDir     string `toml:"promo_dir"`
	SponsorDir   string `toml:"sponsor_dir"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Stream contains the video timeline parameters.
type Stream struct {
	Width              int     `toml:"width"`
	Height             int     `toml:"height"`
	FPS                int     `toml:"fps"`
	SlideDuration      float64 `toml:"slide_duration"`
	SpecialMinDuration float64 `toml:"special_min_duration"`
	CrossfadeDuration  float64 `toml:"crossfade_duration"`
	IntroEnabled       bool    `toml:"intro_enabled"`
	OutroEnabled       bool    `toml:"outro_enabled"`
	CardDuration       float64 `toml:"card_duration"`
	IntroTitle         string  `toml:"intro_title"`
	IntroSubtitle      string  `toml:"intro_subtitle"`
	OutroTitle         string  `toml:"outro_title"`
	// Destination is either an rtmp:// endpoint or a local file path.
	Destination string `toml:"destination"`
}

// Encoder contains parameters handed to the ffmpeg subprocess.
type Encoder struct {
	Binary       string `toml:"binary"`
	VideoBitrate string `toml:"video_bitrate"`
	AudioBitrate string `toml:"audio_bitrate"`
	Preset       string `toml:"preset"`
	GOP          int    `toml:"gop"`
}

// Audio contains the raw PCM channel parameters.
type Audio struct {
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
	FifoPath   string `toml:"fifo_path"`
}

// Overlay contains the promo/sponsor corner overlay schedule and geometry.
type Overlay struct {
	Enabled       bool    `toml:"enabled"`
	EverySlides   int     `toml:"every_slides"`
	ShowSlides    int     `toml:"show_slides"`
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	X             int     `toml:"x"`
	Y             int     `toml:"y"`
	RotationDeg   float64 `toml:"rotation_deg"`
	HeadingText   string  `toml:"heading_text"`
	FactPanelOnly bool    `toml:"fact_panel_special_only"`
}

// Announce contains webhook announcement settings.
type Announce struct {
	WebhookURL     string `toml:"webhook_url"`
	Mode           string `toml:"mode"` // "all", "special", or "none"
	RequestTimeout int    `toml:"request_timeout"`
	QueueSize      int    `toml:"queue_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lorestream.
//
// Configuration sections by subsystem:
//   - Paths: dataset, music, font, and overlay assets plus state/log dirs
//   - Stream: resolution, frame rate, durations, crossfade, destination
//   - Encoder: ffmpeg bitrate/preset parameters
//   - Audio: PCM sample format and the named pipe location
//   - Overlay: promo/sponsor rotation schedule and geometry
//   - Announce: webhook announcements
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Stream   Stream   `toml:"stream"`
	Encoder  Encoder  `toml:"encoder"`
	Audio    Audio    `toml:"audio"`
	Overlay  Overlay  `toml:"overlay"`
	Announce Announce `toml:"announce"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lorestream/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("lorestream.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ResumeFile returns the path of the persisted next-slide-index file.
func (c *Config) ResumeFile() string {
	return filepath.Join(c.Paths.StateDir, "last_index.txt")
}

// JournalFile returns the path of the sqlite session journal.
func (c *Config) JournalFile() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LockFile returns the path of the single-instance lock file.
func (c *Config) LockFile() string {
	return filepath.Join(c.Paths.StateDir, "lorestream.lock")
}

// StreamsToFile reports whether the destination is a local file rather than
// a streaming endpoint.
func (c *Config) StreamsToFile() bool {
	return !strings.HasPrefix(strings.ToLower(c.Stream.Destination), "rtmp://")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
