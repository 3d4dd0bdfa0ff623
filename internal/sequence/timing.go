package sequence

import (
	"math"
	"time"
)

// Timing converts wall-clock durations to frame counts for a fixed-rate
// stream.
type Timing struct {
	FPS       int
	Crossfade float64 // seconds
}

// Counts splits one slide's screen time into hold and blend frames. The
// blend window comes out of the slide's own duration; a slide shorter than
// the crossfade spends its entire window blending. Slides that do not blend
// out (the final slide, or any slide followed by a hard cut) hold for the
// full duration.
func (t Timing) Counts(durationSeconds float64, blendsOut bool) (hold, blend int) {
	total := FrameCount(durationSeconds, t.FPS)
	if !blendsOut {
		return total, 0
	}
	blend = FrameCount(t.Crossfade, t.FPS)
	if blend >= total {
		return 0, total
	}
	return total - blend, blend
}

// FrameDuration is the wall-clock screen time of a whole number of frames.
// Audio cued against this, rather than against the scheduled seconds, stays
// aligned to the video actually emitted at every slide boundary.
func (t Timing) FrameDuration(frames int) time.Duration {
	if frames <= 0 || t.FPS <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(t.FPS)
}

// FrameCount rounds a duration in seconds to whole frames.
func FrameCount(seconds float64, fps int) int {
	if seconds <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(fps)))
}
