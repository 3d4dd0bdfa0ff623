// Package pipeline drives one stream run end to end.
//
// The driver loads the dataset and assets, attaches the encoder and the
// audio feeder, then walks the slide loop: render, emit hold and crossfade
// frames, cue the era music, journal progress, and commit the resume point
// after every slide. It owns the run lifecycle (init, streaming, draining)
// and reports a terminal status the command layer maps to an exit code:
// done, failed (the supervisor restarts), or interrupted (it does not).
package pipeline
