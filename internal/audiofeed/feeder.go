package audiofeed

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"lorestream/internal/logging"
	"lorestream/internal/services"
)

// fadeSeconds is the amplitude ramp applied when the music track changes.
const fadeSeconds = 1.0

const copyChunkBytes = 8192

// Cue schedules one slide's worth of audio.
type Cue struct {
	Track    string
	Era      string
	Duration time.Duration
	FadeIn   bool
	FadeOut  bool
}

// Feeder streams decoded PCM into the audio pipe, one cue at a time.
type Feeder struct {
	sink       io.WriteCloser
	binary     string
	sampleRate int
	channels   int
	logger     *slog.Logger

	cues chan Cue
	done chan struct{}

	mu      sync.Mutex
	runErr  error
	written int64

	scheduled time.Duration

	decoder      *exec.Cmd
	decoderOut   io.ReadCloser
	decoderTrack string
}

// NewFeeder binds a feeder to the pipe writer. binary is the ffmpeg used to
// decode music tracks; queueSize bounds how far cue production may run ahead
// of real-time playback.
func NewFeeder(sink io.WriteCloser, binary string, sampleRate, channels, queueSize int, logger *slog.Logger) *Feeder {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Feeder{
		sink:       sink,
		binary:     binary,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logging.NewComponentLogger(logger, "audiofeed"),
		cues:       make(chan Cue, queueSize),
		done:       make(chan struct{}),
	}
}

// Enqueue submits a cue, blocking when the queue is full.
func (f *Feeder) Enqueue(ctx context.Context, cue Cue) error {
	select {
	case f.cues <- cue:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-f.done:
		return f.Err()
	}
}

// Close signals end of cues and waits for the feeder to drain.
func (f *Feeder) Close() error {
	close(f.cues)
	<-f.done
	return f.Err()
}

// Err returns the first pipe write failure, if any.
func (f *Feeder) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runErr
}

// Run consumes cues until the queue closes or the context ends. Must be
// started exactly once, usually on its own goroutine.
func (f *Feeder) Run(ctx context.Context) {
	defer close(f.done)
	defer f.stopDecoder()
	defer f.sink.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case cue, ok := <-f.cues:
			if !ok {
				return
			}
			if err := f.play(ctx, cue); err != nil {
				f.mu.Lock()
				f.runErr = err
				f.mu.Unlock()
				return
			}
		}
	}
}

// play writes one cue's byte budget. The budget is the cumulative scheduled
// total minus everything already written, so per-cue rounding never drifts.
func (f *Feeder) play(ctx context.Context, cue Cue) error {
	f.scheduled += cue.Duration
	budget := PCMBudget(f.scheduled, f.sampleRate, f.channels) - f.written
	if budget <= 0 {
		return nil
	}

	reader := f.trackReader(cue.Track)
	fadeBytes := PCMBudget(time.Duration(fadeSeconds*float64(time.Second)), f.sampleRate, f.channels)
	if fadeBytes > budget/2 {
		fadeBytes = frameAlign(budget/2, f.channels)
	}

	buf := make([]byte, copyChunkBytes)
	var pos int64
	for pos < budget {
		if err := ctx.Err(); err != nil {
			return err
		}
		want := int64(len(buf))
		if remaining := budget - pos; remaining < want {
			want = remaining
		}
		chunk := buf[:want]

		if reader != nil {
			if _, err := io.ReadFull(reader, chunk); err != nil {
				f.logger.Warn("music decode ended early, padding with silence",
					logging.String("track", cue.Track), logging.Error(err))
				f.stopDecoder()
				reader = nil
				zero(chunk)
			}
		} else {
			zero(chunk)
		}

		ApplyFade(chunk, pos, budget, fadeBytes, cue.FadeIn, cue.FadeOut)

		if _, err := f.sink.Write(chunk); err != nil {
			return services.Wrap(services.ErrEncoder, "audiofeed", "write_pcm", "write PCM to audio pipe", err)
		}
		pos += want
		f.written += want
	}
	return nil
}

// trackReader returns decoded PCM for the cue's track, reusing the running
// decoder when the track is unchanged so playback continues instead of
// restarting. Decode failures fall back to silence for the cue.
func (f *Feeder) trackReader(track string) io.Reader {
	if track == "" {
		f.stopDecoder()
		return nil
	}
	if f.decoder != nil && f.decoderTrack == track {
		return f.decoderOut
	}
	f.stopDecoder()

	cmd := exec.Command(f.binary,
		"-hide_banner", "-loglevel", "error",
		"-stream_loop", "-1",
		"-i", track,
		"-f", "s16le",
		"-ar", strconv.Itoa(f.sampleRate),
		"-ac", strconv.Itoa(f.channels),
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		f.logger.Warn("music decoder failed to start, using silence",
			logging.String("track", track), logging.Error(err))
		return nil
	}
	f.decoder = cmd
	f.decoderOut = stdout
	f.decoderTrack = track
	f.logger.Info("music track started", logging.String("track", track))
	return stdout
}

func (f *Feeder) stopDecoder() {
	if f.decoder == nil {
		return
	}
	f.decoderOut.Close()
	if f.decoder.Process != nil {
		_ = f.decoder.Process.Kill()
	}
	_ = f.decoder.Wait()
	f.decoder = nil
	f.decoderOut = nil
	f.decoderTrack = ""
}

// PCMBudget converts a duration to whole sample frames of s16le bytes.
func PCMBudget(d time.Duration, sampleRate, channels int) int64 {
	if d <= 0 {
		return 0
	}
	samples := int64(math.Round(d.Seconds() * float64(sampleRate)))
	return samples * int64(channels) * 2
}

// ApplyFade scales samples in chunk by the fade envelope. pos is the chunk's
// byte offset within the cue, budget the cue's total bytes, and fadeBytes the
// ramp length at each affected end.
func ApplyFade(chunk []byte, pos, budget, fadeBytes int64, fadeIn, fadeOut bool) {
	if fadeBytes <= 0 || (!fadeIn && !fadeOut) {
		return
	}
	for i := 0; i+1 < len(chunk); i += 2 {
		at := pos + int64(i)
		gain := 1.0
		if fadeIn && at < fadeBytes {
			gain = float64(at) / float64(fadeBytes)
		}
		if fadeOut {
			if fromEnd := budget - at; fromEnd < fadeBytes {
				if g := float64(fromEnd) / float64(fadeBytes); g < gain {
					gain = g
				}
			}
		}
		if gain >= 1.0 {
			continue
		}
		sample := int16(binary.LittleEndian.Uint16(chunk[i : i+2]))
		scaled := int16(float64(sample) * gain)
		binary.LittleEndian.PutUint16(chunk[i:i+2], uint16(scaled))
	}
}

func frameAlign(bytes int64, channels int) int64 {
	frame := int64(channels) * 2
	return bytes - bytes%frame
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
