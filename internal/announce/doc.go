// Package announce posts slide events to a configured webhook.
//
// Announcements carry the slide's year, label, and era plus a JPEG snapshot
// of the rendered frame as a multipart upload. Delivery runs on a background
// worker behind a bounded queue: a slow or dead webhook drops announcements
// with a log line instead of stalling the stream. When no webhook is
// configured, a noop implementation is returned.
package announce
