package wsrpc

import (
	"errors"
	"fmt"
)

// ErrClosed is returned for operations attempted on, or interrupted by, a
// torn-down connection.
var ErrClosed = errors.New("connection closed")

// ErrSkipDecoder is returned by a Decoder that does not recognize a
// frame's vocabulary, so the Registry moves on to the next decoder.
var ErrSkipDecoder = errors.New("frame not recognized by this decoder")

var (
	errNoEncoder = errors.New("no encoder registered for message type")
	errNoDecoder = errors.New("no decoder accepted the frame")
)

// ConnectError is used when establishing the underlying transport fails.
type ConnectError struct {
	URL   string
	Cause error
}

func (err ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %q: %s", err.URL, err.Cause)
}

// EncodeError is used when an outbound message cannot be serialized. It
// surfaces synchronously to the sender.
type EncodeError struct {
	Type  string
	Cause error
}

func (err EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %q message: %s", err.Type, err.Cause)
}

// DecodeError is used when an inbound frame cannot be parsed by any
// registered decoder. Decode failures are reported through the package
// logger and dropped; they never fail the connection.
type DecodeError struct {
	Cause error
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("failed to decode frame: %s", err.Cause)
}

// IOError is used when the transport fails to carry a frame. It fails the
// in-flight operation; the connection is not retried.
type IOError struct {
	Op    string
	Cause error
}

func (err IOError) Error() string {
	return fmt.Sprintf("transport %s failed: %s", err.Op, err.Cause)
}

// TimeoutError is used when no reply arrived within the caller's window.
// The caller may retry with a fresh identifier.
type TimeoutError struct {
	ID   string
	Type string
}

func (err TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for reply to %q request (id %q)", err.Type, err.ID)
}

// DuplicateIDError is a programming error: a correlation identifier was
// reused while still outstanding.
type DuplicateIDError struct {
	ID string
}

func (err DuplicateIDError) Error() string {
	return fmt.Sprintf("request id %q is already outstanding", err.ID)
}

// DuplicateHandlerError is used when a handler is registered twice for
// the same message type.
type DuplicateHandlerError struct {
	Type string
}

func (err DuplicateHandlerError) Error() string {
	return fmt.Sprintf("handler already registered for type %q", err.Type)
}
