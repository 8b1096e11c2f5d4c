package wsrpc

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/pborman/uuid"
)

// IDSource produces correlation identifiers for outgoing requests. Every
// identifier must be unique among the connection's outstanding requests.
type IDSource interface {
	NextID() string
}

// SequenceSource issues monotonically increasing identifiers. This is the
// default source.
type SequenceSource struct {
	id int64
}

func (s *SequenceSource) NextID() string {
	return strconv.FormatInt(atomic.AddInt64(&s.id, 1), 10)
}

// UUIDSource issues random identifiers, for callers that need ids unique
// across connections or restarts.
type UUIDSource struct{}

func (UUIDSource) NextID() string {
	return uuid.NewRandom().String()
}

// New returns a Client over an established transport with the given codec
// registry. The caller runs the read loop on its own goroutine:
//
//	client := wsrpc.New(transport, registry)
//	go client.Serve()
func New(transport Transport, registry *Registry) *Client {
	return &Client{
		conn: NewConn(transport, registry),
		IDs:  &SequenceSource{},
	}
}

// Client is the application-facing endpoint: request/reply calls, one-way
// notifications and unsolicited subscriptions over one connection.
type Client struct {
	// IDs produces the correlation identifiers stamped on requests. It
	// may be replaced before the first Call.
	IDs IDSource

	conn       *Conn
	calls      calls
	dispatcher Dispatcher
}

// Serve reads inbound messages until the transport fails or the client is
// closed. A message whose id matches a pending call resolves that call;
// everything else, including replies that no longer match, is routed by
// type to the registered handler. On exit all outstanding calls fail with
// ErrClosed, so no caller blocks past connection teardown.
func (c *Client) Serve() error {
	for {
		msg, err := c.conn.next()
		if err != nil {
			c.teardown()
			if err == ErrClosed {
				return nil
			}
			return err
		}
		if id := msg.ID(); id != "" && c.calls.Resolve(id, msg) {
			continue
		}
		if !c.dispatcher.Dispatch(msg) {
			logger.Debugf("dropping unhandled %q message (id %q)", msg.Type(), msg.ID())
		}
	}
}

// Call sends req and suspends until the matching reply arrives or ctx
// ends. The correlation identifier is generated here and stamped on req
// before sending; the reply is matched by that identifier alone. Deadline
// expiry is reported as TimeoutError, explicit cancellation as the
// context's error; either way the pending entry is removed and a late
// reply is treated as unsolicited.
func (c *Client) Call(ctx context.Context, req Request) (Message, error) {
	id := c.IDs.NextID()
	req.SetID(id)
	call, err := c.calls.Register(id, req.Type())
	if err != nil {
		return nil, err
	}
	if err := c.conn.Send(req); err != nil {
		c.calls.Cancel(id)
		return nil, err
	}
	return c.calls.Await(ctx, id, call)
}

// Send sends msg synchronously without correlation tracking.
func (c *Client) Send(msg Message) error {
	return c.conn.Send(msg)
}

// Notify sends msg without correlation tracking. The returned handle
// reports when the frame reached the transport.
func (c *Client) Notify(msg Message) *Sent {
	return c.conn.SendAsync(msg)
}

// On subscribes handler to unsolicited messages of msgType. The handler
// runs on a goroutine owned by the client, never on the transport read
// loop and never on a caller of Call. Registering a type twice is
// rejected with DuplicateHandlerError.
func (c *Client) On(msgType string, handler Handler) error {
	return c.dispatcher.On(msgType, handler)
}

// Close tears down the connection. Every pending call fails promptly with
// ErrClosed and subsequent calls fail immediately. Close is idempotent
// and safe to invoke concurrently with in-flight sends and awaits.
func (c *Client) Close() error {
	err := c.conn.Close()
	c.calls.FailAll(ErrClosed)
	c.dispatcher.Close()
	return err
}

func (c *Client) teardown() {
	c.conn.Close()
	c.calls.FailAll(ErrClosed)
	c.dispatcher.Close()
}
