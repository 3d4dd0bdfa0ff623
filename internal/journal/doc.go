// Package journal keeps a SQLite record of stream sessions for diagnostics.
//
// Each run writes one session row plus a row per slide played and the era
// labels that had no matching music track. The journal is an observer: the
// pipeline logs and continues when a journal write fails, and a missing or
// unwritable journal never blocks streaming.
package journal
