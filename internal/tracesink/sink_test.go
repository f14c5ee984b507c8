package tracesink

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialSink(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestWriteBroadcastsToConnectedClients(t *testing.T) {
	s := NewSink()
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dialSink(t, srv)
	defer conn.Close()

	// Give the server goroutine a moment to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", s.ClientCount())
	}

	n, err := s.Write([]byte("1-0-0::READ (P) => (42)"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("1-0-0::READ (P) => (42)") {
		t.Errorf("Write returned n=%d, want full length", n)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(msg) != "1-0-0::READ (P) => (42)" {
		t.Errorf("received %q, want the written trace line", msg)
	}
}

func TestWriteWithNoClientsSucceeds(t *testing.T) {
	s := NewSink()
	n, err := s.Write([]byte("no one listening"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("no one listening") {
		t.Errorf("n = %d, want full length", n)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	s := NewSink()
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dialSink(t, srv)
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Errorf("expected the connection to be closed by the server")
	}
}
