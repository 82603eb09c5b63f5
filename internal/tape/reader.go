// ABOUTME: File playback feed
// ABOUTME: Pumps a decoded audio file into the reactor's playback ring buffer
package tape

import (
	"io"
	"log"
	"sync/atomic"

	"github.com/smallnest/ringbuffer"

	"github.com/jacktape/jacktape/pkg/audio"
	"github.com/jacktape/jacktape/pkg/audio/decode"
)

const chunkSamples = 4096

// Reader decodes an audio file and keeps the playback ring buffer
// full. The reactor pulls samples on the real-time thread; the pump
// goroutine refills whenever a wake notification reports freed space.
type Reader struct {
	src decode.Source
	rb  *ringbuffer.RingBuffer

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	finished atomic.Bool
	pumped   atomic.Uint64

	chunk []float32
	raw   []byte
}

// NewReader opens and prepares the file at path. queueBytes sizes the
// playback queue per channel.
func NewReader(path string, queueBytes int) (*Reader, error) {
	src, err := decode.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		src:   src,
		rb:    ringbuffer.New(queueBytes * src.Channels()),
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		chunk: make([]float32, chunkSamples),
		raw:   make([]byte, chunkSamples*audio.SampleSize),
	}, nil
}

// Format reports the decoded stream format.
func (r *Reader) Format() audio.Format {
	return audio.Format{SampleRate: r.src.SampleRate(), Channels: r.src.Channels()}
}

func (r *Reader) ChannelCount() int { return r.src.Channels() }

// FramesNeeded is the total length of the file in frames, 0 when the
// codec cannot tell.
func (r *Reader) FramesNeeded() uint64 { return r.src.TotalFrames() }

// Finished reports that the whole stream has been pushed into the
// ring buffer. Read from the real-time thread.
func (r *Reader) Finished() bool { return r.finished.Load() }

func (r *Reader) Buffer() *ringbuffer.RingBuffer { return r.rb }

// Wake notifies the pump that ring space was freed. Called from the
// real-time thread, so it never blocks.
func (r *Reader) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// FramesPumped reports feed progress for the UI.
func (r *Reader) FramesPumped() uint64 { return r.pumped.Load() }

// Start prefills the ring buffer synchronously, then keeps it full
// from a goroutine until the stream ends or Close is called.
func (r *Reader) Start() {
	r.fill()
	go r.pump()
}

func (r *Reader) pump() {
	defer close(r.done)
	for !r.finished.Load() {
		select {
		case <-r.wake:
			r.fill()
		case <-r.stop:
			return
		}
	}
}

// fill pushes decoded samples until the ring is full or the stream
// ends. Only whole samples are written; free space cannot shrink
// underneath the producer.
func (r *Reader) fill() {
	channels := r.src.Channels()
	for {
		free := r.rb.Free() / audio.SampleSize
		if free == 0 {
			return
		}
		n, err := r.src.ReadSamples(r.chunk[:min(free, len(r.chunk))])
		if n > 0 {
			for i := 0; i < n; i++ {
				audio.PutSample(r.raw[i*audio.SampleSize:], r.chunk[i])
			}
			if _, werr := r.rb.Write(r.raw[:n*audio.SampleSize]); werr != nil {
				log.Printf("Reader: ring write failed: %v", werr)
			}
			r.pumped.Add(uint64(n) / uint64(channels))
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("Reader: decode error: %v", err)
			}
			r.finished.Store(true)
			return
		}
		if n == 0 {
			return
		}
	}
}

// Close stops the pump and releases the decoder.
func (r *Reader) Close() error {
	close(r.stop)
	<-r.done
	return r.src.Close()
}
