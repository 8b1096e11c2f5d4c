package wsrpc

import (
	"context"
	"sync"
)

// Transport carries opaque frames over an established bidirectional
// session. The ws subpackages provide websocket-backed implementations;
// Pipe provides an in-memory pair.
type Transport interface {
	// ReadFrame blocks until the next inbound frame arrives.
	ReadFrame() ([]byte, error)
	// WriteFrame hands one outbound frame to the transport.
	WriteFrame(frame []byte) error
	// Close releases the underlying session.
	Close() error
}

// Sent is the completion handle of an asynchronous send. Done is closed
// once the frame has been handed to the transport or the send failed.
type Sent struct {
	done chan struct{}
	err  error
}

func newSent() *Sent {
	return &Sent{done: make(chan struct{})}
}

func (s *Sent) complete(err error) {
	s.err = err
	close(s.done)
}

// Done returns a channel closed when the send has completed.
func (s *Sent) Done() <-chan struct{} { return s.done }

// Err returns the send's outcome. Valid only after Done is closed.
func (s *Sent) Err() error { return s.err }

// Wait blocks until the send completes or ctx ends.
func (s *Sent) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Conn owns one Transport exclusively and frames typed messages through a
// codec Registry. Writes are serialized so concurrent senders never
// interleave frames; Close is idempotent and safe to race with in-flight
// sends.
type Conn struct {
	transport Transport
	registry  *Registry

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func NewConn(transport Transport, registry *Registry) *Conn {
	return &Conn{
		transport: transport,
		registry:  registry,
		closed:    make(chan struct{}),
	}
}

// Send encodes msg and hands the frame to the transport, blocking until
// the write completes. After Close it fails with ErrClosed instead of
// blocking.
func (c *Conn) Send(msg Message) error {
	frame, err := c.registry.Encode(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	if err := c.transport.WriteFrame(frame); err != nil {
		return IOError{Op: "write", Cause: err}
	}
	return nil
}

// SendAsync issues the send on its own goroutine and returns immediately
// with a completion handle.
func (c *Conn) SendAsync(msg Message) *Sent {
	sent := newSent()
	go func() {
		sent.complete(c.Send(msg))
	}()
	return sent
}

// next reads frames until one decodes. Decode failures are reported
// through the package logger and the frame dropped; only transport
// failure or close ends the loop.
func (c *Conn) next() (Message, error) {
	for {
		frame, err := c.transport.ReadFrame()
		if err != nil {
			select {
			case <-c.closed:
				return nil, ErrClosed
			default:
			}
			return nil, IOError{Op: "read", Cause: err}
		}
		msg, err := c.registry.Decode(frame)
		if err != nil {
			logger.Warningf("dropping undecodable frame: %s", err)
			continue
		}
		return msg, nil
	}
}

// Close releases the transport exactly once, even when called repeatedly
// or concurrently with in-flight sends.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.transport.Close()
	})
	return err
}
