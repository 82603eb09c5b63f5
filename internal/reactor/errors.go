// ABOUTME: Reactor error taxonomy
// ABOUTME: Typed errors for registration, connection, activation and processing
package reactor

import (
	"errors"
	"fmt"
)

// ErrInstancePresent is returned when constructing a reactor while
// another one is live. Only one reactor may exist per process.
var ErrInstancePresent = errors.New("reactor instance is already present")

// PortRegistrationError means the server refused to create a port.
type PortRegistrationError struct {
	Port string
	Err  error
}

func (e *PortRegistrationError) Error() string {
	return fmt.Sprintf("failed creating port %s: %v", e.Port, e.Err)
}

func (e *PortRegistrationError) Unwrap() error { return e.Err }

// PortConnectionError means the server refused to connect two ports.
type PortConnectionError struct {
	Source string
	Dest   string
	Err    error
}

func (e *PortConnectionError) Error() string {
	return fmt.Sprintf("failed connecting port %s to %s: %v", e.Source, e.Dest, e.Err)
}

func (e *PortConnectionError) Unwrap() error { return e.Err }

// ActivationError means the server refused to start invoking the
// process callback.
type ActivationError struct {
	Err error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("failed activating client: %v", e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// BufferAcquisitionError means a period buffer could not be obtained
// inside the process callback. It is fatal for the run.
type BufferAcquisitionError struct {
	Port string
}

func (e *BufferAcquisitionError) Error() string {
	return fmt.Sprintf("unable to obtain period buffer for port %s", e.Port)
}

// ProcessingFault carries any error that escaped the process callback.
type ProcessingFault struct {
	Err error
}

func (e *ProcessingFault) Error() string {
	return fmt.Sprintf("processing fault: %v", e.Err)
}

func (e *ProcessingFault) Unwrap() error { return e.Err }
