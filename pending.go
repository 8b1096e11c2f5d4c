package wsrpc

import (
	"context"
	"sync"
)

// pendingCall is the single-resolution slot for one outstanding request.
// Both channels are buffered so the resolving side never blocks.
type pendingCall struct {
	reqType string
	msgChan chan Message
	errChan chan error
}

// calls is the correlation table. It maps outstanding request identifiers
// to their waiters; whichever of resolve, timeout, cancel or fail removes
// the entry from the map is the one that wins for that id.
type calls struct {
	mu      sync.Mutex
	failed  error
	pending map[string]pendingCall
}

// Register inserts a waiter under id. It fails with DuplicateIDError
// while id is still outstanding, and with the terminal error after the
// table has been failed by FailAll.
func (c *calls) Register(id, reqType string) (pendingCall, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed != nil {
		return pendingCall{}, c.failed
	}
	if c.pending == nil {
		c.pending = map[string]pendingCall{}
	}
	if _, ok := c.pending[id]; ok {
		return pendingCall{}, DuplicateIDError{ID: id}
	}
	call := pendingCall{
		reqType: reqType,
		msgChan: make(chan Message, 1),
		errChan: make(chan error, 1),
	}
	c.pending[id] = call
	return call, nil
}

// Resolve removes the waiter under id and delivers msg to it. It reports
// whether a waiter was found; false means the request already timed out,
// was cancelled, or never existed.
func (c *calls) Resolve(id string, msg Message) bool {
	c.mu.Lock()
	call, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	call.msgChan <- msg
	return true
}

// Cancel removes the waiter under id without delivering anything,
// reporting whether the entry was still there. A reply arriving
// afterwards no longer matches and is treated as unsolicited.
func (c *calls) Cancel(id string) bool {
	c.mu.Lock()
	_, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	return ok
}

// Await suspends until the waiter is resolved, failed, or ctx ends.
// Removal from the table decides the race: on ctx expiry Await only
// reports a timeout if it removed the entry itself, so a resolver that
// already claimed the call still delivers. Deadline expiry is reported as
// TimeoutError, explicit cancellation as the context's own error.
func (c *calls) Await(ctx context.Context, id string, call pendingCall) (Message, error) {
	select {
	case msg := <-call.msgChan:
		return msg, nil
	case err := <-call.errChan:
		return nil, err
	case <-ctx.Done():
		if c.Cancel(id) {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, TimeoutError{ID: id, Type: call.reqType}
			}
			return nil, ctx.Err()
		}
		// Resolve or FailAll already claimed the call; its delivery is
		// imminent.
		select {
		case msg := <-call.msgChan:
			return msg, nil
		case err := <-call.errChan:
			return nil, err
		}
	}
}

// FailAll removes every outstanding waiter and fails it with err, and
// marks the table so later registrations fail with err too. Used on close
// and transport loss so no waiter leaks past teardown.
func (c *calls) FailAll(err error) {
	c.mu.Lock()
	if c.failed == nil {
		c.failed = err
	}
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, call := range pending {
		call.errChan <- err
	}
}

// Len reports the number of outstanding requests.
func (c *calls) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
