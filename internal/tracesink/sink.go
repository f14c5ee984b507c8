// Package tracesink is a websocket-backed io.Writer: every byte slice
// written to it (the expression runtime's Debug-mode trace output) is
// broadcast as a text frame to every currently connected client.
//
// Grounded on the WebSocketServer/WebSocketConn shape and
// WebSocketListen/WebSocketBroadcast logic in
// internal/network/websocket.go and websocket_server.go - adapted from
// a general-purpose connection registry down to the one thing a trace
// sink needs: accept connections, fan a byte stream out to all of them.
package tracesink

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is a single connected trace viewer.
type client struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// Sink is an io.Writer that broadcasts everything written to it to
// every websocket client connected via ServeHTTP. Create one with
// NewSink; the zero value has a nil client map and cannot register
// clients.
type Sink struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[string]*client
}

// NewSink returns a Sink with an upgrader that accepts any origin, the
// same permissive policy WebSocketListen uses.
func NewSink() *Sink {
	return &Sink{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a websocket connection and
// registers it as a trace viewer. Mount it at whatever path the caller
// wants Debug-mode viewers to connect to.
func (s *Sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{
		id:   time.Now().Format("20060102T150405.000000000"),
		conn: conn,
	}

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	go s.drainClient(c)
}

// drainClient discards inbound frames (a trace viewer has nothing to
// say back) until the connection closes, then deregisters it - mirrors
// WebSocketConn.readMessages's role of keeping the read side pumped so
// the connection's close is noticed.
func (s *Sink) drainClient(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.conn.Close()
}

// Write implements io.Writer by broadcasting p as a single text frame
// to every connected client. Always reports len(p), nil: a client that
// failed to receive the frame is simply marked closed and skipped by
// later writes (it leaves the client set once its read side fails in
// drainClient), without interrupting the trace in progress - a
// Debug-mode trace must never stall execution waiting on a slow or dead
// viewer.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		if !c.closed {
			if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
				c.closed = true
			}
		}
		c.mu.Unlock()
	}
	return len(p), nil
}

// Close disconnects every client.
func (s *Sink) Close() error {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for id, c := range s.clients {
		clients = append(clients, c)
		delete(s.clients, id)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		c.closed = true
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
		c.mu.Unlock()
	}
	return nil
}

// ClientCount reports how many viewers are currently connected.
func (s *Sink) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
