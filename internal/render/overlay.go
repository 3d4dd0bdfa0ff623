package render

import (
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"lorestream/internal/config"
	"lorestream/internal/logging"
)

var overlayExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// Rotation schedules the promo/sponsor corner overlay. Blocks of show_slides
// consecutive slides begin every every_slides slides; successive blocks
// alternate between the promo and sponsor pools.
type Rotation struct {
	logger      *slog.Logger
	promos      []string
	sponsors    []string
	everySlides int
	showSlides  int
	width       int
	height      int
	rotationDeg float64

	mu        sync.Mutex
	cycle     int
	remaining int
	current   string
	image     image.Image
	prepared  map[string]image.Image
}

// NewRotation scans the promo and sponsor directories. A missing directory
// leaves its pool empty; the rotation is inert when both pools are empty or
// the overlay is disabled.
func NewRotation(cfg *config.Config, logger *slog.Logger) *Rotation {
	logger = logging.NewComponentLogger(logger, "overlay")
	rot := &Rotation{
		logger:      logger,
		everySlides: cfg.Overlay.EverySlides,
		showSlides:  cfg.Overlay.ShowSlides,
		width:       cfg.Overlay.Width,
		height:      cfg.Overlay.Height,
		rotationDeg: cfg.Overlay.RotationDeg,
		prepared:    make(map[string]image.Image),
	}
	if !cfg.Overlay.Enabled {
		logger.Info("overlay rotation disabled by configuration")
		return rot
	}
	rot.promos = listOverlayImages(cfg.Paths.PromoDir, logger)
	rot.sponsors = listOverlayImages(cfg.Paths.SponsorDir, logger)
	logger.Info("overlay rotation ready",
		logging.Int("promos", len(rot.promos)),
		logging.Int("sponsors", len(rot.sponsors)))
	return rot
}

func listOverlayImages(dir string, logger *slog.Logger) []string {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("overlay directory unreadable",
				logging.String("dir", dir), logging.Error(err))
		}
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := overlayExtensions[ext]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths
}

// Advance moves the schedule to the given 1-based slide number and returns
// the overlay to paste on that slide, or nil when no block is active. A new
// block starts on every slide where slideNo % every_slides == 1, except the
// very first slide of the run.
func (r *Rotation) Advance(slideNo int) image.Image {
	if len(r.promos) == 0 && len(r.sponsors) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.everySlides > 0 && slideNo != 1 && slideNo%r.everySlides == 1 {
		r.startBlock(slideNo)
	}
	if r.remaining == 0 {
		return nil
	}
	r.remaining--
	return r.image
}

// Current returns the asset path of the overlay shown on the most recent
// block, or "" before the first block.
func (r *Rotation) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Rotation) startBlock(slideNo int) {
	path := r.pick(r.cycle)
	r.cycle++
	if path == "" {
		r.remaining = 0
		return
	}
	img := r.prepare(path)
	if img == nil {
		r.remaining = 0
		return
	}
	r.current = path
	r.image = img
	r.remaining = r.showSlides
	r.logger.Info("overlay block started",
		logging.Int(logging.FieldSlideIndex, slideNo),
		logging.String("asset", filepath.Base(path)))
}

// pick alternates pools per block: even cycles walk the promo list in a
// loop, odd cycles step through the sponsor list and stay on the first
// sponsor once the list is exhausted. An empty pool borrows from the other.
func (r *Rotation) pick(cycle int) string {
	n := cycle / 2
	if cycle%2 == 0 {
		if len(r.promos) > 0 {
			return r.promos[n%len(r.promos)]
		}
		return r.sponsors[n%len(r.sponsors)]
	}
	if len(r.sponsors) > 0 {
		if n < len(r.sponsors) {
			return r.sponsors[n]
		}
		return r.sponsors[0]
	}
	return r.promos[n%len(r.promos)]
}

// prepare loads and shapes an overlay asset: fit inside the badge box,
// tilt by the configured angle, then center on a transparent canvas so the
// compositor can paste it at a fixed position.
func (r *Rotation) prepare(path string) image.Image {
	if img, ok := r.prepared[path]; ok {
		return img
	}
	src, err := imaging.Open(path)
	if err != nil {
		r.logger.Warn("overlay asset unreadable, skipping block",
			logging.String("path", path), logging.Error(err))
		r.prepared[path] = nil
		return nil
	}
	fitted := imaging.Fit(src, r.width, r.height, imaging.Lanczos)
	rotated := imaging.Rotate(fitted, r.rotationDeg, color.Transparent)
	if rotated.Bounds().Dx() > r.width || rotated.Bounds().Dy() > r.height {
		rotated = imaging.Fit(rotated, r.width, r.height, imaging.Lanczos)
	}
	canvas := imaging.New(r.width, r.height, color.Transparent)
	out := imaging.PasteCenter(canvas, rotated)
	r.prepared[path] = out
	return out
}
