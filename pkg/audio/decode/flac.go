// ABOUTME: FLAC audio source
// ABOUTME: Streams FLAC files frame by frame through mewkiz/flac
package decode

import (
	"io"

	"github.com/mewkiz/flac"

	"github.com/jacktape/jacktape/pkg/audio"
)

type flacSource struct {
	stream  *flac.Stream
	bits    int
	pending []float32
}

// NewFLAC creates a source for a FLAC stream.
func NewFLAC(r io.Reader) (Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, err
	}
	return &flacSource{
		stream: stream,
		bits:   int(stream.Info.BitsPerSample),
	}, nil
}

func (s *flacSource) SampleRate() int { return int(s.stream.Info.SampleRate) }
func (s *flacSource) Channels() int { return int(s.stream.Info.NChannels) }
func (s *flacSource) TotalFrames() uint64 { return s.stream.Info.NSamples }
func (s *flacSource) Close() error { return s.stream.Close() }

func (s *flacSource) ReadSamples(dst []float32) (int, error) {
	for len(s.pending) == 0 {
		frame, err := s.stream.ParseNext()
		if err != nil {
			return 0, err // io.EOF at stream end
		}

		// Subframes carry one channel each; interleave them
		channels := len(frame.Subframes)
		if channels == 0 {
			continue
		}
		block := len(frame.Subframes[0].Samples)
		for i := 0; i < block; i++ {
			for c := 0; c < channels; c++ {
				v := int(frame.Subframes[c].Samples[i])
				s.pending = append(s.pending, audio.SampleFromInt(v, s.bits))
			}
		}
	}

	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}
