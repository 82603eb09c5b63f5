// ABOUTME: Tests for the capture sink
// ABOUTME: Round-trips pushed samples through the WAV encoder
package tape

import (
	"path/filepath"
	"testing"

	"github.com/jacktape/jacktape/pkg/audio"
	"github.com/jacktape/jacktape/pkg/audio/decode"
)

func pushFrames(t *testing.T, w *Writer, samples ...float32) {
	t.Helper()

	b := make([]byte, audio.SampleSize)
	for _, s := range samples {
		audio.PutSample(b, s)
		if _, err := w.Buffer().Write(b); err != nil {
			t.Fatalf("ring write failed: %v", err)
		}
	}
}

func TestWriterEncodesPushedSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	format := audio.Format{SampleRate: 8000, Channels: 2}

	w, err := NewWriter(path, format, 0, 1024)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	w.Start()
	pushFrames(t, w, 0.5, -0.5, 0.25, -0.25)
	w.Wake()

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if w.FramesWritten() != 2 {
		t.Errorf("expected 2 frames written, got %d", w.FramesWritten())
	}

	src, err := decode.Open(path)
	if err != nil {
		t.Fatalf("reopening recording: %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 8000 || src.Channels() != 2 {
		t.Errorf("unexpected format: %dHz %dch", src.SampleRate(), src.Channels())
	}

	got := make([]float32, 8)
	n, _ := src.ReadSamples(got)
	if n != 4 {
		t.Fatalf("expected 4 samples back, got %d", n)
	}
	want := []float32{0.5, -0.5, 0.25, -0.25}
	for i := range want {
		diff := got[i] - want[i]
		if diff < 0 {
			diff = -diff
		}
		// 16-bit quantization
		if diff > 1.0/32000 {
			t.Errorf("sample %d: got %v, expected about %v", i, got[i], want[i])
		}
	}
}

func TestWriterStopsAtRecordingTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.wav")
	format := audio.Format{SampleRate: 8000, Channels: 1}

	w, err := NewWriter(path, format, 2, 1024)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if w.FramesNeeded() != 2 {
		t.Errorf("expected 2 frames needed, got %d", w.FramesNeeded())
	}

	w.Start()
	pushFrames(t, w, 0.1, 0.2, 0.3, 0.4)
	w.Wake()

	waitFor(t, "recording target", w.Finished)

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if w.FramesWritten() != 2 {
		t.Errorf("expected exactly 2 frames written, got %d", w.FramesWritten())
	}

	src, err := decode.Open(path)
	if err != nil {
		t.Fatalf("reopening recording: %v", err)
	}
	defer src.Close()

	if src.TotalFrames() != 2 {
		t.Errorf("expected a 2 frame file, got %d", src.TotalFrames())
	}
}
