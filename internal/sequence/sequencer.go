package sequence

import (
	"context"
	"image"
	"image/draw"
	"io"
	"log/slog"

	"lorestream/internal/logging"
	"lorestream/internal/services"
)

// Sequencer writes packed RGBA frames at a fixed geometry to the encoder's
// video input. It is not safe for concurrent use; the pipeline drives it
// from a single goroutine.
type Sequencer struct {
	writer io.Writer
	width  int
	height int
	logger *slog.Logger

	frames   int64
	blendBuf []byte
}

// NewSequencer wraps the encoder video input.
func NewSequencer(w io.Writer, width, height int, logger *slog.Logger) *Sequencer {
	return &Sequencer{
		writer: w,
		width:  width,
		height: height,
		logger: logging.NewComponentLogger(logger, "sequence"),
	}
}

// FramesWritten reports the total frames emitted so far.
func (s *Sequencer) FramesWritten() int64 {
	return s.frames
}

// WriteHold repeats one still for the given number of frames.
func (s *Sequencer) WriteHold(ctx context.Context, img image.Image, frames int) error {
	if frames <= 0 {
		return nil
	}
	pix := s.packed(img)
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeFrame(pix); err != nil {
			return err
		}
	}
	return nil
}

// WriteBlend emits a linear crossfade from one still into the next. The last
// blend frame lands on the incoming image so the successor's hold continues
// without a seam.
func (s *Sequencer) WriteBlend(ctx context.Context, from, to image.Image, frames int) error {
	if frames <= 0 {
		return nil
	}
	a := s.packed(from)
	b := s.packed(to)
	if len(s.blendBuf) != len(a) {
		s.blendBuf = make([]byte, len(a))
	}
	for f := 1; f <= frames; f++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for k := range a {
			va := int(a[k])
			s.blendBuf[k] = uint8(va + (int(b[k])-va)*f/frames)
		}
		if err := s.writeFrame(s.blendBuf); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequencer) writeFrame(pix []byte) error {
	if _, err := s.writer.Write(pix); err != nil {
		return services.Wrap(services.ErrEncoder, "sequence", "write_frame", "write raw frame to encoder", err)
	}
	s.frames++
	return nil
}

// packed returns the image as a tightly packed RGBA byte slice at the
// sequencer geometry, converting or re-drawing only when needed.
func (s *Sequencer) packed(img image.Image) []byte {
	bounds := image.Rect(0, 0, s.width, s.height)
	if rgba, ok := img.(*image.RGBA); ok &&
		rgba.Bounds() == bounds && rgba.Stride == 4*s.width {
		return rgba.Pix
	}
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, img.Bounds().Min, draw.Src)
	return dst.Pix
}
