// ABOUTME: Audio type definitions
// ABOUTME: Defines the wire sample format and conversion helpers
package audio

import (
	"encoding/binary"
	"math"
)

// SampleSize is the byte width of one sample on the ring buffers
// (32-bit float, little-endian).
const SampleSize = 4

// Format describes a PCM stream
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// PutSample encodes a float32 sample into b, which must hold at
// least SampleSize bytes.
func PutSample(b []byte, s float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(s))
}

// ReadSample decodes a float32 sample from b.
func ReadSample(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// SampleToInt16 converts a float sample in [-1,1] to int16 with clamping
func SampleToInt16(s float32) int16 {
	v := s * 32767
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// SampleFromInt converts an integer PCM sample of the given bit depth
// to a float32 in [-1,1].
func SampleFromInt(v int, bitDepth int) float32 {
	return float32(v) / float32(int64(1)<<(bitDepth-1))
}
