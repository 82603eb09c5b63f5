// ABOUTME: MP3 audio source
// ABOUTME: Streams MP3 files through go-mp3's 16-bit PCM output
package decode

import (
	"encoding/binary"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/jacktape/jacktape/pkg/audio"
)

type mp3Source struct {
	dec    *mp3.Decoder
	buf    []byte
	frames uint64
}

// NewMP3 creates a source for an MP3 stream. go-mp3 always outputs
// 16-bit little-endian stereo.
func NewMP3(r io.Reader) (Source, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	var frames uint64
	if l := dec.Length(); l > 0 {
		frames = uint64(l) / 4 // 2 bytes per sample, 2 channels
	}

	return &mp3Source{
		dec:    dec,
		buf:    make([]byte, 8192),
		frames: frames,
	}, nil
}

func (s *mp3Source) SampleRate() int { return s.dec.SampleRate() }
func (s *mp3Source) Channels() int { return 2 }
func (s *mp3Source) TotalFrames() uint64 { return s.frames }
func (s *mp3Source) Close() error { return nil }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	needed := len(dst) * 2
	if cap(s.buf) < needed {
		s.buf = make([]byte, needed)
	}
	s.buf = s.buf[:needed]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = audio.SampleFromInt(int(v), 16)
	}
	return samples, err
}
