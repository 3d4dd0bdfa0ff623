package config

import (
	"fmt"
	"strings"

	"lorestream/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStream(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateOverlay(); err != nil {
		return err
	}
	return c.validateAnnounce()
}

func (c *Config) validateStream() error {
	if c.Stream.Width <= 0 || c.Stream.Height <= 0 {
		return configErr("stream", fmt.Sprintf("resolution %dx%d is not positive", c.Stream.Width, c.Stream.Height))
	}
	if c.Stream.Width%2 != 0 || c.Stream.Height%2 != 0 {
		return configErr("stream", "width and height must be even for yuv420p output")
	}
	if c.Stream.FPS <= 0 {
		return configErr("stream", "fps must be positive")
	}
	if c.Stream.SlideDuration <= 0 {
		return configErr("stream", "slide_duration must be positive")
	}
	if c.Stream.SpecialMinDuration <= 0 {
		return configErr("stream", "special_min_duration must be positive")
	}
	if c.Stream.CrossfadeDuration < 0 {
		return configErr("stream", "crossfade_duration must not be negative")
	}
	if (c.Stream.IntroEnabled || c.Stream.OutroEnabled) && c.Stream.CardDuration <= 0 {
		return configErr("stream", "card_duration must be positive when intro or outro is enabled")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return configErr("audio", "sample_rate must be positive")
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return configErr("audio", "channels must be 1 or 2")
	}
	return nil
}

func (c *Config) validateOverlay() error {
	if !c.Overlay.Enabled {
		return nil
	}
	if c.Overlay.EverySlides <= 0 {
		return configErr("overlay", "every_slides must be positive")
	}
	if c.Overlay.ShowSlides <= 0 || c.Overlay.ShowSlides > c.Overlay.EverySlides {
		return configErr("overlay", "show_slides must be positive and not exceed every_slides")
	}
	if c.Overlay.Width <= 0 || c.Overlay.Height <= 0 {
		return configErr("overlay", "overlay dimensions must be positive")
	}
	return nil
}

func (c *Config) validateAnnounce() error {
	switch c.Announce.Mode {
	case "all", "special", "none":
		return nil
	default:
		return configErr("announce", fmt.Sprintf("mode %q is not one of all, special, none", c.Announce.Mode))
	}
}

func configErr(section, message string) error {
	return services.Wrap(services.ErrConfiguration, "config", strings.TrimSpace(section), message, nil)
}
