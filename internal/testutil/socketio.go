package testutil

import (
	"net/http/httptest"
	"sync"
	"testing"

	socketserver "github.com/zishang520/socket.io/v2/socket"
)

// SocketIOServer is an in-process Socket.IO server that records every
// payload received for one event and, unless told otherwise, acknowledges it.
type SocketIOServer struct {
	// URL is the engine.io endpoint, e.g. http://127.0.0.1:1234/socket.io/.
	URL string

	mu       sync.Mutex
	payloads []map[string]any
	noAck    bool
}

// NewSocketIOServer starts a server listening for event on the default
// namespace. It is shut down when the test finishes.
func NewSocketIOServer(t *testing.T, event string) *SocketIOServer {
	t.Helper()

	s := &SocketIOServer{}
	io := socketserver.NewServer(nil, nil)
	io.On("connection", func(clients ...any) {
		client := clients[0].(*socketserver.Socket)
		client.On(event, func(args ...any) {
			var ack socketserver.Ack
			if len(args) > 0 {
				if a, ok := args[len(args)-1].(socketserver.Ack); ok {
					ack = a
					args = args[:len(args)-1]
				}
			}

			s.mu.Lock()
			if len(args) > 0 {
				if payload, ok := args[0].(map[string]any); ok {
					s.payloads = append(s.payloads, payload)
				}
			}
			noAck := s.noAck
			s.mu.Unlock()

			if ack != nil && !noAck {
				ack([]any{"ok"}, nil)
			}
		})
	})

	ts := httptest.NewServer(io.ServeHandler(nil))
	s.URL = ts.URL + "/socket.io/"
	t.Cleanup(func() {
		io.Close(nil)
		ts.Close()
	})
	return s
}

// WithoutAck makes the server record events without acknowledging them.
func (s *SocketIOServer) WithoutAck() *SocketIOServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noAck = true
	return s
}

// Payloads returns a copy of the payloads received so far.
func (s *SocketIOServer) Payloads() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.payloads...)
}
