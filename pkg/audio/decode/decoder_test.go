// ABOUTME: Tests for the decode package
// ABOUTME: Round-trips a generated WAV file and covers selection errors
package decode

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, rate, channels int, samples []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalizing wav: %v", err)
	}
}

func readAll(t *testing.T, src Source) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, 64)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples: %v", err)
		}
		if n == 0 {
			return out
		}
	}
}

func TestOpenWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	// Two channels, four frames
	pcm := []int{0, 16384, -16384, 8192, 16384, 0, -8192, -16384}
	writeTestWAV(t, path, 48000, 2, pcm)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 48000 {
		t.Errorf("expected 48000Hz, got %d", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("expected 2 channels, got %d", src.Channels())
	}
	if src.TotalFrames() != 4 {
		t.Errorf("expected 4 frames, got %d", src.TotalFrames())
	}

	got := readAll(t, src)
	if len(got) != len(pcm) {
		t.Fatalf("expected %d samples, got %d", len(pcm), len(got))
	}
	for i, want := range pcm {
		expected := float32(want) / 32768.0
		if math.Abs(float64(got[i]-expected)) > 1e-6 {
			t.Errorf("sample %d: got %v, expected %v", i, got[i], expected)
		}
	}
}

func TestOpenUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestOpenRejectsCorruptWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("RIFFxxxxJUNK"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("expected an error for a corrupt WAV file")
	}
}
