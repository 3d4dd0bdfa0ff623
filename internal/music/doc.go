// Package music resolves era labels to background music assets.
//
// The index over the music directory is built exactly once per run;
// resolution is deterministic for the lifetime of the process. Misses fall
// back to the default background track and are recorded for diagnostics.
package music
