// Package services holds the error taxonomy and context plumbing shared by
// the pipeline components.
//
// Errors are tagged with sentinel markers so the driver can classify a
// failure (fatal data problem, recoverable asset miss, encoder failure,
// ignorable announcement error) without string matching. Context helpers
// carry the session ID, slide index, and stage name so loggers can tag
// every line emitted while a slide is in flight.
package services
