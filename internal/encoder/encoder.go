package encoder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"lorestream/internal/config"
	"lorestream/internal/logging"
	"lorestream/internal/services"
)

// Encoder wraps one running ffmpeg child process.
type Encoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *os.File
	logger *slog.Logger
}

// BuildArgs assembles the ffmpeg argument list for the configured stream.
// Split out from Start so the command line is testable without an ffmpeg
// binary present.
func BuildArgs(cfg *config.Config) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-y",

		// Raw video on stdin. -re throttles ffmpeg's reads to the frame
		// rate; the blocked stdin writes pace the whole pipeline.
		"-re",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Stream.Width, cfg.Stream.Height),
		"-r", strconv.Itoa(cfg.Stream.FPS),
		"-i", "pipe:0",

		// Raw PCM from the named pipe.
		"-f", "s16le",
		"-ar", strconv.Itoa(cfg.Audio.SampleRate),
		"-ac", strconv.Itoa(cfg.Audio.Channels),
		"-i", cfg.Audio.FifoPath,

		"-c:v", "libx264",
		"-preset", cfg.Encoder.Preset,
		"-b:v", cfg.Encoder.VideoBitrate,
		"-maxrate", cfg.Encoder.VideoBitrate,
		"-bufsize", doubleRate(cfg.Encoder.VideoBitrate),
		"-g", strconv.Itoa(cfg.Encoder.GOP),
		"-pix_fmt", "yuv420p",

		"-c:a", "aac",
		"-b:a", cfg.Encoder.AudioBitrate,

		"-shortest",
	}
	if !cfg.StreamsToFile() {
		args = append(args, "-f", "flv")
	}
	return append(args, cfg.Stream.Destination)
}

// doubleRate doubles a bitrate like "6000k" for the VBV buffer. Values that
// do not parse are passed through unchanged.
func doubleRate(rate string) string {
	trimmed := strings.TrimSpace(rate)
	suffix := ""
	digits := trimmed
	if len(trimmed) > 0 {
		last := trimmed[len(trimmed)-1]
		if last < '0' || last > '9' {
			suffix = trimmed[len(trimmed)-1:]
			digits = trimmed[:len(trimmed)-1]
		}
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return rate
	}
	return strconv.Itoa(value*2) + suffix
}

// Start launches ffmpeg. The child's stderr goes to encoder.log in the log
// directory so stream warnings survive the run.
func Start(cfg *config.Config, logger *slog.Logger) (*Encoder, error) {
	logger = logging.NewComponentLogger(logger, "encoder")
	args := BuildArgs(cfg)

	cmd := exec.Command(cfg.Encoder.Binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrEncoder, "encoder", "start", "open encoder stdin", err)
	}

	var stderr *os.File
	if cfg.Paths.LogDir != "" {
		path := filepath.Join(cfg.Paths.LogDir, "encoder.log")
		stderr, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Warn("encoder log unavailable, discarding ffmpeg stderr",
				logging.String("path", path), logging.Error(err))
		} else {
			cmd.Stderr = stderr
		}
	}

	if err := cmd.Start(); err != nil {
		if stderr != nil {
			stderr.Close()
		}
		return nil, services.Wrap(services.ErrEncoder, "encoder", "start",
			fmt.Sprintf("launch %s", cfg.Encoder.Binary), err)
	}
	logger.Info("encoder started",
		logging.Int("pid", cmd.Process.Pid),
		logging.String("destination", cfg.Stream.Destination))

	return &Encoder{cmd: cmd, stdin: stdin, stderr: stderr, logger: logger}, nil
}

// VideoInput returns the writer for raw RGBA frames.
func (e *Encoder) VideoInput() io.Writer {
	return e.stdin
}

// CloseInput signals end of video by closing the encoder's stdin, letting
// ffmpeg flush and finalize the output.
func (e *Encoder) CloseInput() error {
	return e.stdin.Close()
}

// Wait blocks until the child exits. A non-zero exit is an encoder failure.
func (e *Encoder) Wait() error {
	err := e.cmd.Wait()
	if e.stderr != nil {
		e.stderr.Close()
	}
	if err != nil {
		return services.Wrap(services.ErrEncoder, "encoder", "wait", "encoder exited abnormally", err)
	}
	e.logger.Info("encoder finished")
	return nil
}

// Kill force-stops the child, used when the pipeline fails and the encoder
// must not be left running.
func (e *Encoder) Kill() {
	if e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
}
