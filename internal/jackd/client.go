// ABOUTME: Thin wrapper around the go-jack client handle
// ABOUTME: Adapts JACK registration, routing and callbacks to the reactor's server capability
package jackd

import (
	"fmt"
	"unsafe"

	"github.com/hairlesshobo/go-jack"

	"github.com/jacktape/jacktape/internal/reactor"
)

// Client owns one named JACK client handle. It implements
// reactor.Server; status codes returned by JACK are carried inside the
// wrapped errors.
type Client struct {
	client *jack.Client
}

// Open connects to a running JACK server under the given client name.
// The server is never auto-started.
func Open(name string) (*Client, error) {
	client, status := jack.ClientOpen(name, jack.NoStartServer)
	if client == nil {
		return nil, fmt.Errorf("failed opening JACK client %q (status %#x)", name, status)
	}
	return &Client{client: client}, nil
}

// Name returns the actual client name assigned by the server.
func (c *Client) Name() string {
	return c.client.GetName()
}

// SampleRate returns the server's sample rate in Hz.
func (c *Client) SampleRate() int {
	return int(c.client.GetSampleRate())
}

// BufferSize returns the server's period size in frames.
func (c *Client) BufferSize() int {
	return int(c.client.GetBufferSize())
}

// RegisterPort creates a new audio port on this client. The returned
// port name is fully qualified (client:port).
func (c *Client) RegisterPort(name string, input bool) (reactor.Port, error) {
	flags := uint64(jack.PortIsOutput)
	if input {
		flags = uint64(jack.PortIsInput)
	}
	port := c.client.PortRegister(name, jack.DEFAULT_AUDIO_TYPE, flags, 0)
	if port == nil {
		return nil, fmt.Errorf("server refused port %q", name)
	}
	return &Port{port: port}, nil
}

// UnregisterPort removes a port registered on this client.
func (c *Client) UnregisterPort(p reactor.Port) error {
	port, ok := p.(*Port)
	if !ok {
		return fmt.Errorf("port %q does not belong to this client", p.Name())
	}
	if code := c.client.PortUnregister(port.port); code != 0 {
		return fmt.Errorf("failed unregistering port %q (error %d)", p.Name(), code)
	}
	return nil
}

// Connect routes the named source port into the named destination
// port. Both names must be fully qualified.
func (c *Client) Connect(src, dst string) error {
	if code := c.client.Connect(src, dst); code != 0 {
		return fmt.Errorf("jack error %d", code)
	}
	return nil
}

// Disconnect removes the route between two fully qualified port names.
func (c *Client) Disconnect(src, dst string) error {
	if code := c.client.Disconnect(src, dst); code != 0 {
		return fmt.Errorf("jack error %d", code)
	}
	return nil
}

// SetProcess installs the per-period callback. JACK invokes it on its
// real-time thread.
func (c *Client) SetProcess(cb func(nframes uint32) int) error {
	if code := c.client.SetProcessCallback(jack.ProcessCallback(cb)); code != 0 {
		return fmt.Errorf("jack error %d", code)
	}
	return nil
}

// OnShutdown installs the server shutdown notification callback.
func (c *Client) OnShutdown(cb func()) {
	c.client.OnShutdown(cb)
}

// Activate asks the server to start invoking the process callback.
func (c *Client) Activate() error {
	if code := c.client.Activate(); code != 0 {
		return fmt.Errorf("jack error %d", code)
	}
	return nil
}

// Deactivate asks the server to stop invoking the process callback.
// It returns only after the callback is no longer running.
func (c *Client) Deactivate() error {
	if code := c.client.Deactivate(); code != 0 {
		return fmt.Errorf("jack error %d", code)
	}
	return nil
}

// Close releases the client handle. Ports must be unregistered first.
func (c *Client) Close() error {
	if code := c.client.Close(); code != 0 {
		return fmt.Errorf("failed closing JACK client (error %d)", code)
	}
	return nil
}

// Port wraps one registered JACK port.
type Port struct {
	port *jack.Port
}

// Name returns the fully qualified port name.
func (p *Port) Name() string {
	return p.port.GetName()
}

// Buffer returns the period sample buffer as []float32.
// jack.AudioSample is a float32 under a named type, so the slice
// header is recast in place rather than copied; the process callback
// must not allocate.
func (p *Port) Buffer(nframes uint32) []float32 {
	buf := p.port.GetBuffer(nframes)
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&buf[0])), len(buf))
}
