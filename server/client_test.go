package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// connPair returns the server and client ends of one websocket connection
func connPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { peer.Close() })

	select {
	case conn := <-conns:
		t.Cleanup(func() { conn.Close() })
		return conn, peer
	case <-time.After(2 * time.Second):
		t.Fatal("server side never upgraded")
	}
	return nil, nil
}

func TestSendBinaryQueuesFrame(t *testing.T) {
	conn, _ := connPair(t)
	c := NewClient(nil, conn, "127.0.0.1", nil, "watcher")

	c.SendBinary([]byte{1, 2, 3})

	if len(c.send) != 1 {
		t.Fatalf("queue length = %d, want 1", len(c.send))
	}
	msg := <-c.send
	if msg[0] != binaryMarker || string(msg[1:]) != "\x01\x02\x03" {
		t.Errorf("queued message = %v", msg)
	}
	if c.slow.Load() {
		t.Error("client should not be marked slow")
	}
}

func TestSendBinarySlowObserverClosedOnce(t *testing.T) {
	conn, peer := connPair(t)
	c := NewClient(nil, conn, "127.0.0.1", nil, "watcher")
	for i := 0; i < sendBufSize; i++ {
		c.send <- []byte{binaryMarker}
	}

	done := make(chan struct{})
	go func() {
		// every frame after the overflow is discarded without blocking
		for i := 0; i < 100; i++ {
			c.SendBinary([]byte{byte(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SendBinary blocked on a full queue")
	}

	if !c.slow.Load() {
		t.Error("overflowing client should be marked slow")
	}
	if len(c.send) != sendBufSize {
		t.Errorf("queue length = %d, want %d", len(c.send), sendBufSize)
	}

	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := peer.ReadMessage()
	if err == nil {
		t.Fatal("peer should see the connection closed")
	}
	if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
		t.Error("connection was not closed, read timed out")
	}
}
