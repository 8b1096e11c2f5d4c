package wsrpc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestClientCall(t *testing.T) {
	near, far := Pipe()
	peer := echoPeer(t, far)
	defer peer.Close()

	client := New(near, testRegistry(t))
	defer client.Close()
	go client.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := client.Call(ctx, newEchoRequest("x"))
	if err != nil {
		t.Fatal(err)
	}
	echo, ok := reply.(*echoReply)
	if !ok {
		t.Fatalf("got: %T; want *echoReply", reply)
	}
	if got, want := echo.Payload, "x"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
	if got, want := echo.ID(), "1"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
	if got, want := client.calls.Len(), 0; got != want {
		t.Errorf("got: %d; want %d", got, want)
	}

	// Identifiers advance per request.
	reply, err = client.Call(ctx, newEchoRequest("y"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := reply.ID(), "2"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
}

func TestClientCallTimeout(t *testing.T) {
	near, far := Pipe()
	// The peer serves the connection but has no echo handler, so requests
	// go unanswered.
	peer := New(far, testRegistry(t))
	defer peer.Close()
	go peer.Serve()

	client := New(near, testRegistry(t))
	defer client.Close()
	go client.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Call(ctx, newEchoRequest("x"))
	elapsed := time.Since(start)

	if _, ok := err.(TimeoutError); !ok {
		t.Fatalf("got: %T (%v); want TimeoutError", err, err)
	}
	if elapsed < 100*time.Millisecond || elapsed > time.Second {
		t.Errorf("timed out after %s; want ~100ms", elapsed)
	}
	if got, want := client.calls.Len(), 0; got != want {
		t.Errorf("got: %d; want %d", got, want)
	}
}

func TestClientLateReply(t *testing.T) {
	near, far := Pipe()

	peer := New(far, testRegistry(t))
	defer peer.Close()
	err := peer.On("echo", func(msg Message) {
		time.Sleep(300 * time.Millisecond)
		req := msg.(*echoRequest)
		peer.Send(&echoReply{
			RPCMessage: RPCMessage{MessageType: "echo-reply", MessageID: req.ID()},
			Payload:    req.Payload,
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	go peer.Serve()

	client := New(near, testRegistry(t))
	defer client.Close()
	late := make(chan Message, 1)
	if err := client.On("echo-reply", func(msg Message) { late <- msg }); err != nil {
		t.Fatal(err)
	}
	go client.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := client.Call(ctx, newEchoRequest("x")); err == nil {
		t.Fatal("expected the call to time out before the reply")
	}

	// The reply that arrives after the timeout no longer matches a
	// pending call and is routed as unsolicited.
	select {
	case msg := <-late:
		if got, want := msg.(*echoReply).Payload, "x"; got != want {
			t.Errorf("got: %q; want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("late reply never surfaced")
	}
	if got, want := client.calls.Len(), 0; got != want {
		t.Errorf("got: %d; want %d", got, want)
	}
}

func TestClientCloseFailsPending(t *testing.T) {
	near, far := Pipe()
	peer := New(far, testRegistry(t))
	defer peer.Close()
	go peer.Serve()

	client := New(near, testRegistry(t))
	go client.Serve()

	var g errgroup.Group
	for i := 0; i < 5; i++ {
		g.Go(func() error {
			_, err := client.Call(context.Background(), newEchoRequest("x"))
			if err != ErrClosed {
				return fmt.Errorf("got: %v; want ErrClosed", err)
			}
			return nil
		})
	}

	// Give the calls time to register before tearing down.
	time.Sleep(50 * time.Millisecond)
	if err := client.Close(); err != nil {
		t.Error(err)
	}
	if err := g.Wait(); err != nil {
		t.Error(err)
	}

	// The closed client fails new calls immediately.
	if _, err := client.Call(context.Background(), newEchoRequest("x")); err != ErrClosed {
		t.Errorf("got: %v; want ErrClosed", err)
	}
}

func TestClientTransportLossFailsPending(t *testing.T) {
	near, far := Pipe()
	client := New(near, testRegistry(t))
	go client.Serve()

	done := make(chan error, 1)
	go func() {
		_, err := client.Call(context.Background(), newEchoRequest("x"))
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	far.Close()

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Errorf("got: %v; want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending call leaked past transport loss")
	}
}

func TestClientUnsolicited(t *testing.T) {
	near, far := Pipe()
	peer := New(far, testRegistry(t))
	defer peer.Close()
	go peer.Serve()

	client := New(near, testRegistry(t))
	defer client.Close()

	chatCh := make(chan Message, 1)
	noticeCh := make(chan Message, 1)
	if err := client.On("chat", func(msg Message) { chatCh <- msg }); err != nil {
		t.Fatal(err)
	}
	if err := client.On("notice", func(msg Message) { noticeCh <- msg }); err != nil {
		t.Fatal(err)
	}
	go client.Serve()

	if err := peer.Send(&chatMessage{RPCMessage: RPCMessage{MessageType: "chat"}, From: "fausto", Text: "hello"}); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-chatCh:
		if got, want := msg.(*chatMessage).Text, "hello"; got != want {
			t.Errorf("got: %q; want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("chat handler never ran")
	}

	select {
	case msg := <-noticeCh:
		t.Errorf("notice handler received %q message", msg.Type())
	default:
	}
}

func TestClientNotify(t *testing.T) {
	near, far := Pipe()
	peer := New(far, testRegistry(t))
	defer peer.Close()

	seen := make(chan Message, 1)
	if err := peer.On("chat", func(msg Message) { seen <- msg }); err != nil {
		t.Fatal(err)
	}
	go peer.Serve()

	client := New(near, testRegistry(t))
	defer client.Close()
	go client.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sent := client.Notify(&chatMessage{RPCMessage: RPCMessage{MessageType: "chat"}, Text: "fire and forget"})
	if err := sent.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-seen:
		if got, want := msg.(*chatMessage).Text, "fire and forget"; got != want {
			t.Errorf("got: %q; want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification never arrived")
	}
}

func TestClientDuplicateHandler(t *testing.T) {
	near, _ := Pipe()
	client := New(near, testRegistry(t))
	defer client.Close()

	if err := client.On("chat", func(Message) {}); err != nil {
		t.Fatal(err)
	}
	if _, ok := client.On("chat", func(Message) {}).(DuplicateHandlerError); !ok {
		t.Error("expected duplicate handler registration to be rejected")
	}
}

func TestClientUUIDSource(t *testing.T) {
	var ids UUIDSource
	a, b := ids.NextID(), ids.NextID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty identifiers")
	}
	if a == b {
		t.Errorf("expected distinct identifiers, got %q twice", a)
	}
}
