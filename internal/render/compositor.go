package render

import (
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"lorestream/internal/config"
	"lorestream/internal/dataset"
	"lorestream/internal/logging"
)

const (
	backgroundHex = "#0D3F84"

	topMargin    = 40
	titleGap     = 8
	eraGap       = 16
	textStrokePx = 4

	factPanelWidth   = 1200
	factPanelPadding = 32
	factPanelGap     = 12
	factPanelRadius  = 24
	factPanelMargin  = 40
	factLineGap      = 6
	factPanelAlpha   = 0.60
	eraOpacity       = 0.60
	headingOpacity   = 0.80
)

// Compositor renders slide stills at the configured output resolution.
type Compositor struct {
	width   int
	height  int
	fonts   *FontSet
	heading string
	// factSpecialOnly restricts the bottom fact panel to special records,
	// matching the original stream behavior.
	factSpecialOnly bool
	overlayX        int
	overlayY        int
	logger          *slog.Logger
}

// NewCompositor builds a compositor for the configured canvas.
func NewCompositor(cfg *config.Config, fonts *FontSet, logger *slog.Logger) *Compositor {
	return &Compositor{
		width:           cfg.Stream.Width,
		height:          cfg.Stream.Height,
		fonts:           fonts,
		heading:         cfg.Overlay.HeadingText,
		factSpecialOnly: cfg.Overlay.FactPanelOnly,
		overlayX:        cfg.Overlay.X,
		overlayY:        cfg.Overlay.Y,
		logger:          logging.NewComponentLogger(logger, "compositor"),
	}
}

// RenderSlide composites one dataset record. overlay, when non-nil, is a
// prepared corner badge pasted at the configured position. The background
// photo is cover-fit to the canvas height and centered; a missing or
// unreadable photo leaves the deep blue fallback background.
func (c *Compositor) RenderSlide(record dataset.Record, overlay image.Image) image.Image {
	dc := gg.NewContext(c.width, c.height)
	dc.SetHexColor(backgroundHex)
	dc.Clear()

	c.drawBackground(dc, record.ImageRef)
	c.drawTitleStack(dc, record)

	fact := strings.TrimSpace(record.Fact)
	if fact != "" && (record.IsSpecial || !c.factSpecialOnly) {
		c.drawFactPanel(dc, fact)
	}

	if overlay != nil {
		dc.DrawImage(overlay, c.overlayX, c.overlayY)
	}
	return dc.Image()
}

// RenderCard draws a centered one- or two-line title card on the fallback
// background, used for the intro and outro pseudo-slides.
func (c *Compositor) RenderCard(top, bottom string) image.Image {
	dc := gg.NewContext(c.width, c.height)
	dc.SetHexColor(backgroundHex)
	dc.Clear()

	topH := faceHeight(c.fonts.Year)
	totalH := topH
	if bottom != "" {
		totalH += titleGap + faceHeight(c.fonts.Label)
	}
	y := (float64(c.height) - totalH) / 2

	drawStroked(dc, c.fonts.Year, top, float64(c.width)/2, y, 1, 1, 1, 1, textStrokePx)
	if bottom != "" {
		y += topH + titleGap
		drawStroked(dc, c.fonts.Label, bottom, float64(c.width)/2, y, 1, 1, 1, 1, textStrokePx)
	}
	return dc.Image()
}

func (c *Compositor) drawBackground(dc *gg.Context, imageRef string) {
	if strings.TrimSpace(imageRef) == "" {
		return
	}
	candidates := []string{imageRef}
	if !strings.HasPrefix(imageRef, "/") {
		candidates = append(candidates, "assets/"+imageRef)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		img, err := imaging.Open(path)
		if err != nil {
			c.logger.Warn("background image unreadable, keeping fallback background",
				logging.String("path", path), logging.Error(err))
			return
		}
		// Cover-fit to canvas height, centered horizontally.
		resized := imaging.Resize(img, 0, c.height, imaging.Lanczos)
		xOff := (c.width - resized.Bounds().Dx()) / 2
		dc.DrawImage(resized, xOff, 0)
		return
	}
	c.logger.Warn("background image not found, keeping fallback background",
		logging.String("image", imageRef))
}

// drawTitleStack draws the literal "Year" heading, the record label, and the
// era caption below them.
func (c *Compositor) drawTitleStack(dc *gg.Context, record dataset.Record) {
	centerX := float64(c.width) / 2
	y := float64(topMargin)

	drawStroked(dc, c.fonts.Year, "Year", centerX, y, 1, 1, 1, 1, textStrokePx)
	y += faceHeight(c.fonts.Year)

	if label := strings.TrimSpace(record.Label); label != "" {
		y += titleGap
		drawStroked(dc, c.fonts.Label, label, centerX, y, 1, 1, 1, 1, textStrokePx)
		y += faceHeight(c.fonts.Label)
	}

	if era := strings.TrimSpace(record.Era); era != "" {
		y += eraGap
		drawStroked(dc, c.fonts.Era, era, centerX, y, 1, 1, 1, eraOpacity, textStrokePx)
	}
}

func (c *Compositor) drawFactPanel(dc *gg.Context, fact string) {
	panelX := float64(c.width-factPanelWidth) / 2
	contentW := float64(factPanelWidth - 2*factPanelPadding)

	face, lines := c.fitFact(dc, fact, contentW)
	lineH := faceHeight(face)
	contentH := float64(len(lines))*lineH + float64(len(lines)-1)*factLineGap
	headingH := faceHeight(c.fonts.Heading)
	panelH := 2*factPanelPadding + headingH + factPanelGap + contentH

	panelY := float64(c.height) - panelH - factPanelMargin
	dc.SetRGBA(0, 0, 0, factPanelAlpha)
	dc.DrawRoundedRectangle(panelX, panelY, factPanelWidth, panelH, factPanelRadius)
	dc.Fill()

	textX := panelX + factPanelPadding
	y := panelY + factPanelPadding
	drawStrokedLeft(dc, c.fonts.Heading, c.heading, textX, y, 1, 1, 1, headingOpacity, textStrokePx)
	y += headingH + factPanelGap
	for _, line := range lines {
		drawStrokedLeft(dc, face, line, textX, y, 1, 1, 1, 1, textStrokePx)
		y += lineH + factLineGap
	}
}

// fitFact word-wraps the fact text, shrinking the face from the maximum size
// until the longest wrapped line fits the panel width or the minimum size is
// reached.
func (c *Compositor) fitFact(dc *gg.Context, fact string, maxWidth float64) (font.Face, []string) {
	for size := factMaxFontSize; size >= factMinFontSize; size -= 2 {
		face := c.fonts.FactFace(size)
		dc.SetFontFace(face)
		lines := dc.WordWrap(fact, maxWidth)
		if len(lines) == 0 {
			lines = []string{""}
		}
		longest := 0.0
		for _, line := range lines {
			if w, _ := dc.MeasureString(line); w > longest {
				longest = w
			}
		}
		if longest <= maxWidth || size == factMinFontSize {
			return face, lines
		}
	}
	face := c.fonts.FactFace(factMinFontSize)
	dc.SetFontFace(face)
	return face, dc.WordWrap(fact, maxWidth)
}

// drawStroked draws horizontally centered text with a black outline.
func drawStroked(dc *gg.Context, face font.Face, text string, centerX, topY float64, r, g, b, a float64, stroke int) {
	dc.SetFontFace(face)
	w, _ := dc.MeasureString(text)
	drawOutlined(dc, text, centerX-w/2, topY+faceAscent(face), r, g, b, a, stroke)
}

// drawStrokedLeft draws left-aligned text with a black outline.
func drawStrokedLeft(dc *gg.Context, face font.Face, text string, x, topY float64, r, g, b, a float64, stroke int) {
	dc.SetFontFace(face)
	drawOutlined(dc, text, x, topY+faceAscent(face), r, g, b, a, stroke)
}

func drawOutlined(dc *gg.Context, text string, x, baselineY float64, r, g, b, a float64, stroke int) {
	dc.SetRGBA(0, 0, 0, a)
	for dy := -stroke; dy <= stroke; dy++ {
		for dx := -stroke; dx <= stroke; dx++ {
			if dx*dx+dy*dy > stroke*stroke {
				continue
			}
			dc.DrawString(text, x+float64(dx), baselineY+float64(dy))
		}
	}
	dc.SetRGBA(r, g, b, a)
	dc.DrawString(text, x, baselineY)
}

func faceHeight(face font.Face) float64 {
	metrics := face.Metrics()
	return float64(metrics.Height.Ceil())
}

func faceAscent(face font.Face) float64 {
	return float64(face.Metrics().Ascent.Ceil())
}
