// ABOUTME: Ogg Opus audio source
// ABOUTME: Streams Opus files through hraban/opus's stream decoder
package decode

import (
	"io"

	opus "gopkg.in/hraban/opus.v2"
)

const (
	// Opus streams always decode at 48kHz. The stream decoder does
	// not expose its channel count, so stereo is assumed.
	opusSampleRate = 48000
	opusChannels   = 2
)

type opusSource struct {
	stream *opus.Stream
}

// NewOpus creates a source for an Ogg Opus stream.
func NewOpus(r io.Reader) (Source, error) {
	stream, err := opus.NewStream(r)
	if err != nil {
		return nil, err
	}
	return &opusSource{stream: stream}, nil
}

func (s *opusSource) SampleRate() int { return opusSampleRate }
func (s *opusSource) Channels() int { return opusChannels }
func (s *opusSource) TotalFrames() uint64 { return 0 }
func (s *opusSource) Close() error { return nil }

func (s *opusSource) ReadSamples(dst []float32) (int, error) {
	// ReadFloat32 reports frames decoded, not samples
	n, err := s.stream.ReadFloat32(dst)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	return n * opusChannels, err
}
