// Package encoder runs the external ffmpeg process that turns the raw video
// and audio feeds into the output stream.
//
// Video arrives as packed RGBA frames on the encoder's stdin; audio arrives
// as signed 16-bit PCM through the named pipe. The encoder owns the child
// process lifecycle: start, drain (stdin close), and wait. RTMP destinations
// get an explicit flv container; file destinations let ffmpeg infer the
// container from the extension.
package encoder
