package render

import (
	"log/slog"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"lorestream/internal/config"
	"lorestream/internal/logging"
)

// Text sizes match the original stream layout.
const (
	yearFontSize    = 72
	labelFontSize   = 56
	eraFontSize     = 40
	headingFontSize = 32
	factMaxFontSize = 48
	factMinFontSize = 22
)

// FontSet holds the faces used by the compositor. Fonts that fail to load
// fall back to the embedded Go Regular face; a missing font asset is never
// fatal.
type FontSet struct {
	Year    font.Face
	Label   font.Face
	Era     font.Face
	Heading font.Face

	factSource *opentype.Font

	mu        sync.Mutex
	factFaces map[int]font.Face
}

// LoadFonts parses the configured font files. Each failure is logged and
// replaced with the embedded fallback so rendering always has usable faces.
func LoadFonts(paths config.Paths, logger *slog.Logger) *FontSet {
	logger = logging.NewComponentLogger(logger, "fonts")

	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		// The embedded face is known-good; a parse failure here means a
		// toolchain problem, not an asset problem.
		panic("parse embedded fallback font: " + err.Error())
	}

	semibold := parseFont(paths.FontSemibold, fallback, logger)
	regular := parseFont(paths.FontRegular, fallback, logger)
	medium := parseFont(paths.FontMedium, fallback, logger)

	return &FontSet{
		Year:       newFace(semibold, yearFontSize),
		Label:      newFace(semibold, labelFontSize),
		Era:        newFace(medium, eraFontSize),
		Heading:    newFace(regular, headingFontSize),
		factSource: regular,
		factFaces:  make(map[int]font.Face),
	}
}

// FactFace returns a face of the regular font at the given pixel size,
// cached because the auto-fit loop probes several sizes per fact.
func (s *FontSet) FactFace(size int) font.Face {
	if size < factMinFontSize {
		size = factMinFontSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if face, ok := s.factFaces[size]; ok {
		return face
	}
	face := newFace(s.factSource, float64(size))
	s.factFaces[size] = face
	return face
}

func parseFont(path string, fallback *opentype.Font, logger *slog.Logger) *opentype.Font {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("font unavailable, using embedded fallback",
			logging.String("path", path), logging.Error(err))
		return fallback
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		logger.Warn("font unreadable, using embedded fallback",
			logging.String("path", path), logging.Error(err))
		return fallback
	}
	return parsed
}

func newFace(src *opentype.Font, size float64) font.Face {
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// NewFace only fails on invalid options; fall back to the source
		// font at whatever metrics it yields.
		face, _ = opentype.NewFace(src, nil)
	}
	return face
}
