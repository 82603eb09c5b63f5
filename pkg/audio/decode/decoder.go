// ABOUTME: Decoder interface and codec selection
// ABOUTME: Opens audio files as streaming float32 sources
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is a streaming decoded audio stream.
type Source interface {
	SampleRate() int
	Channels() int

	// TotalFrames is the stream length in frames, 0 when unknown.
	TotalFrames() uint64

	// ReadSamples fills dst with interleaved float32 samples in
	// [-1,1] and returns the number of samples written. io.EOF marks
	// the end of the stream.
	ReadSamples(dst []float32) (int, error)

	Close() error
}

// Open decodes the file at path, selecting the codec by extension.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening %s: %w", path, err)
	}

	var src Source
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		src, err = NewWAV(f)
	case ".mp3":
		src, err = NewMP3(f)
	case ".flac":
		src, err = NewFLAC(f)
	case ".ogg":
		src, err = NewOgg(f)
	case ".opus":
		src, err = NewOpus(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio format: %s", path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed decoding %s: %w", path, err)
	}
	return &fileSource{Source: src, f: f}, nil
}

// fileSource ties the file's lifetime to the source's.
type fileSource struct {
	Source
	f *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}
