// ABOUTME: WAV audio source
// ABOUTME: Streams PCM WAV files through go-audio's decoder
package decode

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jacktape/jacktape/pkg/audio"
)

type wavSource struct {
	dec    *wav.Decoder
	buf    *goaudio.IntBuffer
	bits   int
	frames uint64
}

// NewWAV creates a source for a PCM WAV stream.
func NewWAV(r io.ReadSeeker) (Source, error) {
	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	var frames uint64
	if dur, err := dec.Duration(); err == nil {
		frames = uint64(dur.Seconds() * float64(dec.SampleRate))
	}

	return &wavSource{
		dec:    dec,
		bits:   int(dec.BitDepth),
		frames: frames,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: int(dec.NumChans),
				SampleRate:  int(dec.SampleRate),
			},
		},
	}, nil
}

func (s *wavSource) SampleRate() int { return int(s.dec.SampleRate) }
func (s *wavSource) Channels() int { return int(s.dec.NumChans) }
func (s *wavSource) TotalFrames() uint64 { return s.frames }
func (s *wavSource) Close() error { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		dst[i] = audio.SampleFromInt(s.buf.Data[i], s.bits)
	}
	return n, err
}
