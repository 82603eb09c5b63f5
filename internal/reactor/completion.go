// ABOUTME: One-shot completion signal
// ABOUTME: First-fire-wins success/error notification across goroutines
package reactor

import "sync"

// Completion is a one-shot cross-goroutine signal carrying either
// success (nil) or an error. It may be fired concurrently from the
// process callback, the server shutdown callback and the OS signal
// watcher; exactly one attempt takes effect.
type Completion struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewCompletion creates an unfired signal.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Fire delivers the outcome. It reports whether this call was the one
// that fired the signal; later calls are no-ops.
func (c *Completion) Fire(err error) bool {
	fired := false
	c.once.Do(func() {
		c.err = err
		fired = true
		close(c.done)
	})
	return fired
}

// Wait blocks until the signal fires and returns the carried error.
func (c *Completion) Wait() error {
	<-c.done
	return c.err
}

// Done exposes the signal channel for select loops.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}
