// ABOUTME: Package documentation for audio types
// ABOUTME: Shared sample format between decoders, ring buffers and JACK
//
// Package audio defines the sample format jacktape moves between its
// components: 32-bit little-endian float samples, interleaved by channel.
// Decoders produce it, the ring buffers carry it as raw bytes, and the
// reactor copies it into JACK period buffers.
package audio
