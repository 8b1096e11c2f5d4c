// Websocket transport implementation using Gorilla's Websocket library
package gorilla

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/wsrpc/wsrpc"
)

// Dial connects to url and returns a Transport that carries one frame per
// websocket text message.
func Dial(ctx context.Context, url string) (wsrpc.Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, wsrpc.ConnectError{URL: url, Cause: err}
	}
	return &transport{conn: conn}, nil
}

var _ wsrpc.Transport = &transport{}

type transport struct {
	muWrite sync.Mutex
	muRead  sync.Mutex
	conn    *websocket.Conn
}

func (t *transport) ReadFrame() ([]byte, error) {
	t.muRead.Lock()
	defer t.muRead.Unlock()
	_, frame, err := t.conn.ReadMessage()
	return frame, err
}

func (t *transport) WriteFrame(frame []byte) error {
	t.muWrite.Lock()
	defer t.muWrite.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, frame)
}

func (t *transport) Close() error {
	return t.conn.Close()
}

// Handler upgrades inbound HTTP requests and passes the resulting
// server-side transport to serve. The connection closes when serve
// returns.
func Handler(serve func(wsrpc.Transport)) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error from %s: %s", r.RemoteAddr, err)
			return
		}
		defer conn.Close()
		serve(&transport{conn: conn})
	}
}
