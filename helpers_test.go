package wsrpc

import (
	"testing"
)

type echoRequest struct {
	RPCMessage
	Payload string `json:"payload"`
}

func newEchoRequest(payload string) *echoRequest {
	return &echoRequest{
		RPCMessage: RPCMessage{MessageType: "echo"},
		Payload:    payload,
	}
}

type echoReply struct {
	RPCMessage
	Payload string `json:"payload"`
}

type chatMessage struct {
	RPCMessage
	From string `json:"from"`
	Text string `json:"text"`
}

type noticeMessage struct {
	RPCMessage
	Text string `json:"text"`
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := &Registry{}
	factories := map[string]func() Message{
		"echo":       func() Message { return &echoRequest{} },
		"echo-reply": func() Message { return &echoReply{} },
		"chat":       func() Message { return &chatMessage{} },
		"notice":     func() Message { return &noticeMessage{} },
	}
	for msgType, factory := range factories {
		if err := r.AddCodec(msgType, JSONCodec{MsgType: msgType, New: factory}); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

// echoPeer serves the far side of a transport: every "echo" request is
// answered with an "echo-reply" carrying the same id and payload.
func echoPeer(t *testing.T, transport Transport) *Client {
	t.Helper()
	peer := New(transport, testRegistry(t))
	err := peer.On("echo", func(msg Message) {
		req := msg.(*echoRequest)
		reply := &echoReply{
			RPCMessage: RPCMessage{MessageType: "echo-reply", MessageID: req.ID()},
			Payload:    req.Payload,
		}
		if err := peer.Send(reply); err != nil && err != ErrClosed {
			t.Errorf("echo peer send failed: %s", err)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	go peer.Serve()
	return peer
}
