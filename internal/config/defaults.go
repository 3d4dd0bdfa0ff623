package config

const (
	defaultDatasetFile    = "~/.local/share/lorestream/assets/full_years.csv"
	defaultDurationFile   = "~/.local/share/lorestream/assets/era_durations.txt"
	defaultMusicDir       = "~/.local/share/lorestream/assets/era_music"
	defaultDefaultMusic   = "~/.local/share/lorestream/assets/background_loop.mp3"
	defaultFontSemibold   = "~/.local/share/lorestream/assets/fonts/Fredoka-SemiBold.ttf"
	defaultFontRegular    = "~/.local/share/lorestream/assets/fonts/Fredoka-Regular.ttf"
	defaultFontMedium     = "~/.local/share/lorestream/assets/fonts/Fredoka-Medium.ttf"
	defaultPromoDir       = "~/.local/share/lorestream/assets/overlay/promos"
	defaultSponsorDir     = "~/.local/share/lorestream/assets/overlay/sponsors"
	defaultStateDir       = "~/.local/share/lorestream/state"
	defaultLogDir         = "~/.local/share/lorestream/logs"
	defaultDestination    = "output.mp4"
	defaultFifoPath       = "/tmp/lorestream_audio.pcm"
	defaultIntroTitle     = "Earth Lore"
	defaultIntroSubtitle  = "- 4.5M Years Ranked Chronologically"
	defaultOutroTitle     = "Thanks for Watching"
	defaultOverlayHeading = "Canon Event of the Year"
	defaultAnnounceMode   = "all"
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatasetFile:  defaultDatasetFile,
			DurationFile: defaultDurationFile,
			MusicDir:     defaultMusicDir,
			DefaultMusic: defaultDefaultMusic,
			FontSemibold: defaultFontSemibold,
			FontRegular:  defaultFontRegular,
			FontMedium:   defaultFontMedium,
			PromoDir:     defaultPromoDir,
			SponsorDir:   defaultSponsorDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		Stream: Stream{
			Width:              1920,
			Height:             1080,
			FPS:                30,
			SlideDuration:      4.0,
			SpecialMinDuration: 5.0,
			CrossfadeDuration:  0.5,
			IntroEnabled:       true,
			OutroEnabled:       true,
			CardDuration:       6.0,
			IntroTitle:         defaultIntroTitle,
			IntroSubtitle:      defaultIntroSubtitle,
			OutroTitle:         defaultOutroTitle,
			Destination:        defaultDestination,
		},
		Encoder: Encoder{
			Binary:       "ffmpeg",
			VideoBitrate: "6000k",
			AudioBitrate: "192k",
			Preset:       "veryfast",
			GOP:          120,
		},
		Audio: Audio{
			SampleRate: 48000,
			Channels:   2,
			FifoPath:   defaultFifoPath,
		},
		Overlay: Overlay{
			Enabled:       true,
			EverySlides:   50,
			ShowSlides:    4,
			Width:         300,
			Height:        300,
			X:             1480,
			Y:             180,
			RotationDeg:   -12.0,
			HeadingText:   defaultOverlayHeading,
			FactPanelOnly: true,
		},
		Announce: Announce{
			Mode:           defaultAnnounceMode,
			RequestTimeout: 10,
			QueueSize:      50,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
