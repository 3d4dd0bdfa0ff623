// Package dataset loads the ordered slide dataset from CSV.
//
// Dataset order is authoritative chronological order; rows are never
// deduplicated or re-sorted by year.
package dataset
