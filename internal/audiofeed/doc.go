// Package audiofeed supplies the encoder's PCM input through a named pipe.
//
// A feeder goroutine consumes per-slide cues, decodes the cue's music track
// with an ffmpeg child process looping the file endlessly, and writes
// exactly the cue's byte budget of signed 16-bit samples into the pipe.
// Budgets are derived from the cumulative scheduled duration so rounding
// drift cancels at every slide boundary instead of accumulating. Era
// changes ramp amplitude down and back up; a track that fails to decode is
// replaced by silence for the remainder of its cue.
package audiofeed
