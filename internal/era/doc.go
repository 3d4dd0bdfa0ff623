// Package era owns per-era display durations.
//
// The duration table is loaded once from a key=value text file and consulted
// through a pure policy function, so slide timing is deterministic and
// testable without the pipeline.
package era
