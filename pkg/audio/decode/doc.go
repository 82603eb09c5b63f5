// ABOUTME: Package documentation for audio decoders
// ABOUTME: Streaming codecs behind one Source interface
//
// Package decode opens audio files as streaming sources of interleaved
// float32 samples. Supported containers: WAV, MP3, FLAC, Ogg Vorbis
// and Ogg Opus, selected by file extension.
package decode
