// Package textutil provides the text normalization helpers shared by the
// era music resolver and the duration table.
//
// Era labels arrive from three uncoordinated sources (the dataset CSV, the
// duration file, and music filenames), so matching is done on a normalized
// key rather than the raw strings.
package textutil
