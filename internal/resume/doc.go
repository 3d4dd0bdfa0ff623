// Package resume persists the next slide index so an interrupted run picks
// up where the previous one stopped.
//
// The ledger stores the index of the next slide to play, committed after a
// slide completes. Writes go through a temp file and rename so a crash mid
// write leaves the previous value intact, and commits never move the index
// backwards within a process.
package resume
