// Package logging assembles the structured slog loggers used across the
// streaming pipeline.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can automatically tag
// log lines with the session ID, slide index, and driver stage. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
