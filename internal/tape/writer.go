// ABOUTME: File capture sink
// ABOUTME: Drains the reactor's capture ring buffer into a 16-bit PCM WAV file
package tape

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/smallnest/ringbuffer"

	"github.com/jacktape/jacktape/pkg/audio"
)

// Writer drains the capture ring buffer into a WAV file. The reactor
// pushes samples on the real-time thread; the pump goroutine encodes
// them whenever a wake notification reports new data.
type Writer struct {
	f   *os.File
	enc *wav.Encoder
	rb  *ringbuffer.RingBuffer

	channels int
	needed   uint64

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	finished atomic.Bool
	written  atomic.Uint64

	raw []byte
	buf *goaudio.IntBuffer
}

// NewWriter creates the WAV file at path. frames limits the recording
// length, 0 meaning record until externally stopped. queueBytes sizes
// the capture queue per channel.
func NewWriter(path string, format audio.Format, frames uint64, queueBytes int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed creating %s: %w", path, err)
	}
	return &Writer{
		f:        f,
		enc:      wav.NewEncoder(f, format.SampleRate, 16, format.Channels, 1),
		rb:       ringbuffer.New(queueBytes * format.Channels),
		channels: format.Channels,
		needed:   frames,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		raw:      make([]byte, chunkSamples*audio.SampleSize),
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: format.Channels,
				SampleRate:  format.SampleRate,
			},
			SourceBitDepth: 16,
		},
	}, nil
}

func (w *Writer) ChannelCount() int { return w.channels }

// FramesNeeded is the requested recording length in frames, 0 when
// unbounded.
func (w *Writer) FramesNeeded() uint64 { return w.needed }

// Finished reports that the recording target has been written. Read
// from the real-time thread; once true the reactor drops capture.
func (w *Writer) Finished() bool { return w.finished.Load() }

func (w *Writer) Buffer() *ringbuffer.RingBuffer { return w.rb }

// Wake notifies the pump that new data arrived. Called from the
// real-time thread, so it never blocks.
func (w *Writer) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// FramesWritten reports encoding progress for the UI.
func (w *Writer) FramesWritten() uint64 { return w.written.Load() }

// Start launches the drain goroutine.
func (w *Writer) Start() {
	go w.pump()
}

func (w *Writer) pump() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
		if w.finished.Load() {
			return
		}
	}
}

// drain encodes every complete frame currently in the ring, stopping
// at the recording target.
func (w *Writer) drain() {
	frameBytes := w.channels * audio.SampleSize
	for !w.finished.Load() {
		avail := w.rb.Length() / frameBytes * frameBytes
		if avail == 0 {
			return
		}
		n := min(avail, len(w.raw)/frameBytes*frameBytes)
		read, err := w.rb.Read(w.raw[:n])
		if err != nil || read == 0 {
			return
		}

		samples := read / audio.SampleSize
		if w.needed != 0 {
			remaining := (w.needed - w.written.Load()) * uint64(w.channels)
			if uint64(samples) > remaining {
				samples = int(remaining)
			}
		}

		if cap(w.buf.Data) < samples {
			w.buf.Data = make([]int, samples)
		}
		w.buf.Data = w.buf.Data[:samples]
		for i := 0; i < samples; i++ {
			w.buf.Data[i] = int(audio.SampleToInt16(audio.ReadSample(w.raw[i*audio.SampleSize:])))
		}
		if err := w.enc.Write(w.buf); err != nil {
			log.Printf("Writer: encode failed: %v", err)
			w.finished.Store(true)
			return
		}

		frames := w.written.Add(uint64(samples) / uint64(w.channels))
		if w.needed != 0 && frames >= w.needed {
			log.Printf("Writer: recording target of %d frames reached", w.needed)
			w.finished.Store(true)
		}
	}
}

// Close drains what remains, finalizes the WAV header and closes the
// file.
func (w *Writer) Close() error {
	close(w.stop)
	<-w.done
	err := w.enc.Close()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}
