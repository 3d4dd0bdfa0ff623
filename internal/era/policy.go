package era

import (
	"time"

	"lorestream/internal/dataset"
)

// Policy computes per-slide display durations. Pure function of the record
// and the loaded table; no hidden state.
type Policy struct {
	Table             *DurationTable
	DefaultSeconds    float64
	SpecialMinSeconds float64
}

// DurationFor returns the display duration for a record. Base duration comes
// from the era table, else the default; special records are held at least
// SpecialMinSeconds regardless of the table value.
func (p Policy) DurationFor(record dataset.Record) time.Duration {
	secs := p.DefaultSeconds
	if tableSecs, ok := p.Table.Lookup(record.Era); ok {
		secs = tableSecs
	}
	if record.IsSpecial && secs < p.SpecialMinSeconds {
		secs = p.SpecialMinSeconds
	}
	return time.Duration(secs * float64(time.Second))
}
