// Command lorestream renders a chronological year dataset into a continuous
// video stream with era-matched music, pushed to an RTMP endpoint or a local
// file through ffmpeg.
package main
