package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStream()
	c.normalizeAnnounce()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.dataset_file", &c.Paths.DatasetFile},
		{"paths.duration_file", &c.Paths.DurationFile},
		{"paths.music_dir", &c.Paths.MusicDir},
		{"paths.default_music", &c.Paths.DefaultMusic},
		{"paths.font_semibold", &c.Paths.FontSemibold},
		{"paths.font_regular", &c.Paths.FontRegular},
		{"paths.font_medium", &c.Paths.FontMedium},
		{"paths.promo_dir", &c.Paths.PromoDir},
		{"paths.sponsor_dir", &c.Paths.SponsorDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	if strings.TrimSpace(c.Audio.FifoPath) == "" {
		c.Audio.FifoPath = defaultFifoPath
	}
	expanded, err := expandPath(c.Audio.FifoPath)
	if err != nil {
		return fmt.Errorf("audio.fifo_path: %w", err)
	}
	c.Audio.FifoPath = expanded
	return nil
}

func (c *Config) normalizeStream() {
	c.Stream.Destination = strings.TrimSpace(c.Stream.Destination)
	if c.Stream.Destination == "" {
		c.Stream.Destination = defaultDestination
	}
}

func (c *Config) normalizeAnnounce() {
	c.Announce.WebhookURL = strings.TrimSpace(c.Announce.WebhookURL)
	c.Announce.Mode = strings.ToLower(strings.TrimSpace(c.Announce.Mode))
	if c.Announce.Mode == "" {
		c.Announce.Mode = defaultAnnounceMode
	}
	if c.Announce.WebhookURL == "" {
		c.Announce.Mode = "none"
	}
	if c.Announce.RequestTimeout <= 0 {
		c.Announce.RequestTimeout = 10
	}
	if c.Announce.QueueSize <= 0 {
		c.Announce.QueueSize = 50
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
