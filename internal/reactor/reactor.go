// ABOUTME: Real-time audio I/O dispatcher
// ABOUTME: Bridges the server's period callback with reader/writer ring buffers
package reactor

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/smallnest/ringbuffer"

	"github.com/jacktape/jacktape/pkg/audio"
)

// NullOutput marks a playback channel that is processed but never
// routed to a destination port. Its samples are still consumed from
// the ring buffer each frame so channel interleaving stays aligned.
const NullOutput = "-"

// Server is the narrow audio server capability the reactor consumes.
type Server interface {
	Name() string
	RegisterPort(name string, input bool) (Port, error)
	UnregisterPort(p Port) error
	Connect(src, dst string) error
	Disconnect(src, dst string) error
	SetProcess(cb func(nframes uint32) int) error
	OnShutdown(cb func())
	Activate() error
	Deactivate() error
}

// Port is one registered channel endpoint on the server.
type Port interface {
	Name() string
	// Buffer returns the raw sample buffer for the current period, or
	// nil if it cannot be obtained.
	Buffer(nframes uint32) []float32
}

// Reader feeds playback. It owns the ring buffer the reactor pulls
// samples from and reports its own progress.
type Reader interface {
	ChannelCount() int
	// FramesNeeded is the total frame count the reader wants played,
	// 0 meaning unbounded.
	FramesNeeded() uint64
	// Finished reports that the producer has pushed its whole stream.
	Finished() bool
	// Wake notifies the producer that ring buffer space was freed.
	Wake()
	Buffer() *ringbuffer.RingBuffer
}

// Writer drains capture. Symmetric to Reader.
type Writer interface {
	ChannelCount() int
	FramesNeeded() uint64
	Finished() bool
	Wake()
	Buffer() *ringbuffer.RingBuffer
}

// Stats are the final counters of a run.
type Stats struct {
	Frames    uint64
	Underruns uint64
	Overruns  uint64
}

// Config collects the reactor's construction parameters.
type Config struct {
	Server Server
	// Inputs are capture source port names, one per writer channel.
	Inputs []string
	// Outputs are playback destination port names, one per reader
	// channel; NullOutput entries stay unrouted.
	Outputs   []string
	Reader    Reader
	Writer    Writer
	Unbounded bool
}

// live enforces the one-reactor-per-process rule and lets the
// shutdown triggers reach the completion signal of whichever instance
// is current.
var live atomic.Pointer[Completion]

var interceptSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

// Reactor multiplexes server period buffers into the writer's ring
// buffer and demultiplexes the reader's ring buffer into server period
// buffers, once per period on the server's real-time thread. It owns
// the registered ports and the global shutdown path.
type Reactor struct {
	server Server
	reader Reader
	writer Writer

	inputTargets  []string
	outputTargets []string
	inputs        []Port
	outputs       []Port // nil entries are null outputs
	inBufs        [][]float32
	outBufs       [][]float32

	// needed is fixed at construction; done, underruns and overruns
	// are written only from the process callback and read after
	// deactivation.
	needed    uint64
	done      uint64
	underruns uint64
	overruns  uint64

	finished  *Completion
	activated bool
	closed    bool

	scratch [audio.SampleSize]byte

	sigCh   chan os.Signal
	sigDone chan struct{}
}

// New registers ports, installs the process, shutdown and OS signal
// hooks, activates processing and connects ports to their peers, in
// that order. Any failure leaves no half-activated state behind.
func New(cfg Config) (*Reactor, error) {
	if cfg.Server == nil {
		return nil, fmt.Errorf("reactor: no server")
	}
	if cfg.Reader == nil && cfg.Writer == nil {
		return nil, fmt.Errorf("reactor: neither reader nor writer configured")
	}
	if cfg.Writer != nil && len(cfg.Inputs) != cfg.Writer.ChannelCount() {
		return nil, fmt.Errorf("reactor: %d input ports for %d writer channels",
			len(cfg.Inputs), cfg.Writer.ChannelCount())
	}
	if cfg.Reader != nil && len(cfg.Outputs) != cfg.Reader.ChannelCount() {
		return nil, fmt.Errorf("reactor: %d output ports for %d reader channels",
			len(cfg.Outputs), cfg.Reader.ChannelCount())
	}

	r := &Reactor{
		server:        cfg.Server,
		reader:        cfg.Reader,
		writer:        cfg.Writer,
		inputTargets:  cfg.Inputs,
		outputTargets: cfg.Outputs,
		finished:      NewCompletion(),
		sigCh:         make(chan os.Signal, 1),
		sigDone:       make(chan struct{}),
	}
	if !cfg.Unbounded {
		var rn, wn uint64
		if cfg.Reader != nil {
			rn = cfg.Reader.FramesNeeded()
		}
		if cfg.Writer != nil {
			wn = cfg.Writer.FramesNeeded()
		}
		r.needed = max(rn, wn)
	}
	if r.needed != 0 {
		log.Printf("Reactor: processing at most %d frames", r.needed)
	} else {
		log.Printf("Reactor: processing until explicitly terminated")
	}

	if !live.CompareAndSwap(nil, r.finished) {
		return nil, ErrInstancePresent
	}

	if err := r.registerPorts(); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.server.SetProcess(r.onProcess); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed installing process callback: %w", err)
	}
	r.server.OnShutdown(r.onServerShutdown)
	signal.Notify(r.sigCh, interceptSignals...)
	go r.watchSignals()
	if err := r.activate(); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.connectPorts(); err != nil {
		log.Printf("Reactor: error while connecting ports, deactivating: %v", err)
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reactor) registerPorts() error {
	if r.writer != nil {
		r.inputs = make([]Port, 0, len(r.inputTargets))
		for i := range r.inputTargets {
			name := fmt.Sprintf("input_%d", i)
			p, err := r.server.RegisterPort(name, true)
			if err != nil {
				return &PortRegistrationError{Port: name, Err: err}
			}
			r.inputs = append(r.inputs, p)
		}
		r.inBufs = make([][]float32, len(r.inputTargets))
	}
	if r.reader != nil {
		r.outputs = make([]Port, 0, len(r.outputTargets))
		for i, target := range r.outputTargets {
			if target == NullOutput {
				r.outputs = append(r.outputs, nil)
				continue
			}
			name := fmt.Sprintf("output_%d", i)
			p, err := r.server.RegisterPort(name, false)
			if err != nil {
				return &PortRegistrationError{Port: name, Err: err}
			}
			r.outputs = append(r.outputs, p)
		}
		r.outBufs = make([][]float32, len(r.outputTargets))
	}
	return nil
}

func (r *Reactor) connectPorts() error {
	if r.writer != nil {
		for i, p := range r.inputs {
			if err := r.server.Connect(r.inputTargets[i], p.Name()); err != nil {
				return &PortConnectionError{Source: r.inputTargets[i], Dest: p.Name(), Err: err}
			}
		}
	}
	if r.reader != nil {
		for i, p := range r.outputs {
			if p == nil {
				// Null output, leave disconnected
				continue
			}
			if err := r.server.Connect(p.Name(), r.outputTargets[i]); err != nil {
				return &PortConnectionError{Source: p.Name(), Dest: r.outputTargets[i], Err: err}
			}
		}
	}
	return nil
}

func (r *Reactor) activate() error {
	if r.activated {
		panic("reactor: activate on an activated reactor")
	}
	if err := r.server.Activate(); err != nil {
		return &ActivationError{Err: err}
	}
	log.Printf("Reactor: client activated")
	r.activated = true
	return nil
}

// deactivate asks the server to stop invoking the process callback.
// Only the first call after activation has effect.
func (r *Reactor) deactivate() {
	if r.activated {
		_ = r.server.Deactivate()
		log.Printf("Reactor: client deactivated")
		r.activated = false
	}
}

func (r *Reactor) watchSignals() {
	select {
	case sig := <-r.sigCh:
		log.Printf("Reactor: stopping on signal %v", sig)
		r.finished.Fire(nil)
	case <-r.sigDone:
	}
}

func (r *Reactor) onServerShutdown() {
	log.Printf("Reactor: stopping on server shutdown")
	r.finished.Fire(nil)
}

// onProcess runs on the server's real-time thread once per period. It
// must not block and must not allocate.
func (r *Reactor) onProcess(nframes uint32) int {
	defer func() {
		if p := recover(); p != nil {
			r.fault(fmt.Errorf("panic in process callback: %v", p))
		}
	}()
	if r.reader != nil {
		if err := r.playback(nframes); err != nil {
			r.fault(err)
			return 0
		}
	}
	if r.writer != nil {
		if err := r.capture(nframes); err != nil {
			r.fault(err)
			return 0
		}
	}
	r.done += uint64(nframes)
	if r.needed != 0 && r.done >= r.needed {
		if r.finished.Fire(nil) {
			log.Printf("Reactor: frame budget reached after %d frames", r.done)
		}
	}
	return 0
}

// fault delivers an error out of the process callback. Once the
// completion signal has already fired nobody is left to observe the
// error, so it escalates to a crash.
func (r *Reactor) fault(err error) {
	if !r.finished.Fire(&ProcessingFault{Err: err}) {
		panic(err)
	}
}

// playback demultiplexes the reader's ring buffer into the output
// period buffers. On underrun the remainder of the period is muted.
func (r *Reactor) playback(nframes uint32) error {
	channels := r.reader.ChannelCount()
	rb := r.reader.Buffer()
	for c, p := range r.outputs {
		if p == nil {
			continue
		}
		buf := p.Buffer(nframes)
		if buf == nil {
			return &BufferAcquisitionError{Port: p.Name()}
		}
		r.outBufs[c] = buf
	}
	frames := int(nframes)
	var n int
sweep:
	for n = 0; n < frames; n++ {
		for c := 0; c < channels; c++ {
			// Only this side consumes from the ring, so the length
			// check guarantees the following read returns one whole
			// sample. Null channels still consume theirs.
			if rb.Length() < audio.SampleSize {
				if !r.reader.Finished() {
					log.Printf("Reactor: ring buffer empty during playback, UNDERRUN")
					r.underruns++
				}
				break sweep
			}
			_, _ = rb.Read(r.scratch[:])
			if r.outputs[c] != nil {
				r.outBufs[c][n] = audio.ReadSample(r.scratch[:])
			}
		}
	}
	if !r.reader.Finished() {
		r.reader.Wake()
	}
	// Mute the remaining frames on underrun or stream end
	if n != frames {
		for c := range r.outputs {
			if r.outputs[c] == nil {
				continue
			}
			clear(r.outBufs[c][n:frames])
		}
	}
	return nil
}

// capture multiplexes the input period buffers into the writer's ring
// buffer. On overrun the rest of the period is dropped.
func (r *Reactor) capture(nframes uint32) error {
	if r.writer.Finished() {
		// Recording target reached, drop the period entirely
		return nil
	}
	channels := r.writer.ChannelCount()
	rb := r.writer.Buffer()
	for c, p := range r.inputs {
		buf := p.Buffer(nframes)
		if buf == nil {
			return &BufferAcquisitionError{Port: p.Name()}
		}
		r.inBufs[c] = buf
	}
	frames := int(nframes)
sweep:
	for n := 0; n < frames; n++ {
		for c := 0; c < channels; c++ {
			if rb.Free() < audio.SampleSize {
				if !r.writer.Finished() {
					log.Printf("Reactor: ring buffer full during capture, OVERRUN")
					r.overruns++
				}
				break sweep
			}
			audio.PutSample(r.scratch[:], r.inBufs[c][n])
			_, _ = rb.Write(r.scratch[:])
		}
	}
	if !r.writer.Finished() {
		r.writer.Wake()
	}
	return nil
}

// Stop requests a graceful stop, as if an OS signal had arrived.
func (r *Reactor) Stop() {
	r.finished.Fire(nil)
}

// Done exposes the completion channel for select loops.
func (r *Reactor) Done() <-chan struct{} {
	return r.finished.Done()
}

// WaitFinished blocks until a completion trigger fires, stops the
// process callback, and reports the final counters. Counters are read
// only after deactivation, when the server guarantees the callback is
// no longer running.
func (r *Reactor) WaitFinished() (Stats, error) {
	err := r.finished.Wait()
	r.deactivate()
	stats := Stats{Frames: r.done, Underruns: r.underruns, Overruns: r.overruns}
	log.Printf("Reactor: done processing %d frames (underruns: %d, overruns: %d)",
		stats.Frames, stats.Underruns, stats.Overruns)
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// Close tears the reactor down: deactivate, restore signal
// dispositions, disconnect and unregister every registered port, and
// release the instance slot. Disconnect errors are ignored so teardown
// cannot fail partway. Safe to call repeatedly and after a partially
// failed construction.
func (r *Reactor) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.deactivate()
	signal.Stop(r.sigCh)
	close(r.sigDone)
	for i, p := range r.inputs {
		_ = r.server.Disconnect(r.inputTargets[i], p.Name())
		_ = r.server.UnregisterPort(p)
	}
	for i, p := range r.outputs {
		if p == nil {
			continue
		}
		_ = r.server.Disconnect(p.Name(), r.outputTargets[i])
		_ = r.server.UnregisterPort(p)
	}
	r.inputs = nil
	r.outputs = nil
	live.CompareAndSwap(r.finished, nil)
}
