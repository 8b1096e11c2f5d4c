package wsrpc

import (
	"io"
	"sync"
)

// Pipe returns two connected in-memory Transports: frames written to one
// side arrive at the other. Closing either side unblocks both. Useful for
// testing endpoints without a network.
func Pipe() (Transport, Transport) {
	p := &pipe{done: make(chan struct{})}
	ab := make(chan []byte)
	ba := make(chan []byte)
	return &pipeTransport{pipe: p, in: ba, out: ab},
		&pipeTransport{pipe: p, in: ab, out: ba}
}

type pipe struct {
	once sync.Once
	done chan struct{}
}

func (p *pipe) close() {
	p.once.Do(func() {
		close(p.done)
	})
}

type pipeTransport struct {
	pipe *pipe
	in   <-chan []byte
	out  chan<- []byte
}

func (t *pipeTransport) ReadFrame() ([]byte, error) {
	select {
	case frame := <-t.in:
		return frame, nil
	case <-t.pipe.done:
		return nil, io.EOF
	}
}

func (t *pipeTransport) WriteFrame(frame []byte) error {
	select {
	case t.out <- frame:
		return nil
	case <-t.pipe.done:
		return io.EOF
	}
}

func (t *pipeTransport) Close() error {
	t.pipe.close()
	return nil
}
