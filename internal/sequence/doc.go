// Package sequence turns per-slide durations into frame counts and streams
// raw RGBA frames to the encoder.
//
// Crossfade frames are charged against the outgoing slide's duration: a
// slide emits hold frames followed by blend frames into its successor, and
// the final slide of the run holds for its full duration. The sequencer
// itself is a thin writer; timing decisions live in Timing so they can be
// tested without an encoder attached.
package sequence
