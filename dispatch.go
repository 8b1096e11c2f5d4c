package wsrpc

import "sync"

// Handler consumes unsolicited messages of one type.
type Handler func(msg Message)

// handlerQueueDepth bounds how many undelivered messages a handler may
// have queued before further ones are dropped.
const handlerQueueDepth = 16

// Dispatcher routes inbound messages by type to registered handlers. Each
// handler runs on its own goroutine fed by a bounded queue, so a slow
// handler cannot stall the transport read loop or delivery to the other
// handlers.
type Dispatcher struct {
	mu       sync.Mutex
	closed   bool
	handlers map[string]chan Message
	running  sync.WaitGroup
}

// On registers handler for messages of msgType. Registering the same type
// twice is rejected with DuplicateHandlerError.
func (d *Dispatcher) On(msgType string, handler Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.handlers == nil {
		d.handlers = map[string]chan Message{}
	}
	if _, ok := d.handlers[msgType]; ok {
		return DuplicateHandlerError{Type: msgType}
	}
	queue := make(chan Message, handlerQueueDepth)
	d.handlers[msgType] = queue
	d.running.Add(1)
	go func() {
		defer d.running.Done()
		for msg := range queue {
			handler(msg)
		}
	}()
	return nil
}

// Dispatch routes msg to the handler registered for its type, reporting
// whether one was found. If the handler's queue is full the message is
// dropped with a diagnostic. The enqueue happens under the lock so it
// cannot race a concurrent Close of the queue.
func (d *Dispatcher) Dispatch(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	queue, ok := d.handlers[msg.Type()]
	if !ok {
		return false
	}
	select {
	case queue <- msg:
	default:
		logger.Warningf("dropping %q message (id %q): handler queue full", msg.Type(), msg.ID())
	}
	return true
}

// Close stops every handler goroutine once its queued messages drain.
// Close is idempotent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	handlers := d.handlers
	d.mu.Unlock()
	for _, queue := range handlers {
		close(queue)
	}
	d.running.Wait()
}
