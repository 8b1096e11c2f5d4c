package gobwas

import (
	"context"
	"io"
	"net"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/wsrpc/wsrpc"
)

// Dial connects to url and returns a client-side Transport over the
// websocket.
func Dial(ctx context.Context, url string) (wsrpc.Transport, error) {
	conn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, wsrpc.ConnectError{URL: url, Cause: err}
	}
	return clientTransport(conn), nil
}

func clientTransport(conn net.Conn) wsrpc.Transport {
	return &transport{
		conn:  conn,
		read:  wsutil.ReadServerData,
		write: wsutil.WriteClientMessage,
	}
}

func serverTransport(conn net.Conn) wsrpc.Transport {
	return &transport{
		conn:  conn,
		read:  wsutil.ReadClientData,
		write: wsutil.WriteServerMessage,
	}
}

var _ wsrpc.Transport = &transport{}

type transport struct {
	conn  net.Conn
	read  func(io.ReadWriter) ([]byte, ws.OpCode, error)
	write func(io.Writer, ws.OpCode, []byte) error
}

func (t *transport) ReadFrame() ([]byte, error) {
	frame, _, err := t.read(t.conn)
	return frame, err
}

func (t *transport) WriteFrame(frame []byte) error {
	return t.write(t.conn, ws.OpText, frame)
}

func (t *transport) Close() error {
	return t.conn.Close()
}

// Upgrader upgrades an HTTP request to a websocket session and returns
// the server-side transport.
type Upgrader struct {
	Upgrader ws.HTTPUpgrader
}

func (u *Upgrader) Upgrade(r *http.Request, w http.ResponseWriter) (wsrpc.Transport, error) {
	conn, _, _, err := u.Upgrader.Upgrade(r, w)
	if err != nil {
		return nil, err
	}
	return serverTransport(conn), nil
}
