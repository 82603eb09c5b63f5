// ABOUTME: Ogg Vorbis audio source
// ABOUTME: Streams Vorbis files through jfreymuth/oggvorbis
package decode

import (
	"io"

	"github.com/jfreymuth/oggvorbis"
)

type oggSource struct {
	dec *oggvorbis.Reader
}

// NewOgg creates a source for an Ogg Vorbis stream. Vorbis decodes to
// float32 natively, so samples pass through unscaled. The total length
// is unknown for non-seekable streams.
func NewOgg(r io.Reader) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &oggSource{dec: dec}, nil
}

func (s *oggSource) SampleRate() int { return s.dec.SampleRate() }
func (s *oggSource) Channels() int { return s.dec.Channels() }
func (s *oggSource) TotalFrames() uint64 { return 0 }
func (s *oggSource) Close() error { return nil }

func (s *oggSource) ReadSamples(dst []float32) (int, error) {
	return s.dec.Read(dst)
}
