// Package render composites slide stills.
//
// The compositor draws one finished frame image per dataset record:
// background photo cover-fit to the canvas, the year/label/era text stack,
// the fact panel for special records, and the promo/sponsor corner overlay
// when the rotation schedule has an active window. It performs no I/O beyond
// reading the assets it is asked to draw and returns plain image.Image
// values for the sequencer to stream.
package render
