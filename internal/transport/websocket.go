// SPDX-License-Identifier: MIT
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"eqlab/internal/log"

	"github.com/gorilla/websocket"
)

const (
	// WebSocketPath is where clients connect.
	WebSocketPath = "/ws"

	broadcastQueueSize = 256
	writeWait          = 5 * time.Second
)

// WebSocketTransport broadcasts every message as JSON to all clients
// connected on /ws. Send never blocks: when the queue is full the message is
// dropped and counted.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex

	broadcast chan any
	done      chan struct{}
	sendMu    sync.RWMutex // guards closed and the broadcast channel
	closed    bool
	dropped   atomic.Uint64

	listener net.Listener
	server   *http.Server
}

// NewWebSocketTransport listens on addr and starts serving WebSocket clients.
// Use "127.0.0.1:0" to let the OS pick a port; Addr reports the result.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen on %q: %w", addr, err)
	}

	wst := newWebSocketTransport()
	wst.listener = ln
	wst.server = &http.Server{
		Handler:           wst.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("WebSocketTransport: serving on ws://%s%s", ln.Addr(), WebSocketPath)
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("WebSocketTransport: server error: %v", err)
		}
	}()
	return wst, nil
}

func newWebSocketTransport() *WebSocketTransport {
	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local visualisers are served from anywhere
			},
		},
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan any, broadcastQueueSize),
		done:      make(chan struct{}),
	}
	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, wst.handleWebSocket)
	return mux
}

// Addr is the address the server is listening on, or "" when the transport
// was not created with a listener.
func (wst *WebSocketTransport) Addr() string {
	if wst.listener == nil {
		return ""
	}
	return wst.listener.Addr().String()
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wst.sendMu.RLock()
	closed := wst.closed
	wst.sendMu.RUnlock()
	if closed {
		http.Error(w, "transport closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketTransport: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.sendMu.RLock()
	closed = wst.closed
	wst.sendMu.RUnlock()
	if closed {
		wst.clientsMu.Unlock()
		conn.Close()
		return
	}
	wst.clients[conn] = struct{}{}
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Infof("WebSocketTransport: client %s connected, total: %d", conn.RemoteAddr(), total)

	// Clients never send anything useful; reading keeps control frames
	// flowing and tells us when they go away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.removeClient(conn)
	}()
}

func (wst *WebSocketTransport) removeClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()

	if ok {
		conn.Close()
		log.Infof("WebSocketTransport: client disconnected, total: %d", total)
	}
}

func (wst *WebSocketTransport) handleBroadcasts() {
	defer close(wst.done)
	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.WriteJSON(data); err != nil {
				log.Warnf("WebSocketTransport: error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Dropped returns how many messages were discarded because the queue was
// full.
func (wst *WebSocketTransport) Dropped() uint64 {
	return wst.dropped.Load()
}

// WaitForClients blocks until at least n clients are connected or ctx is
// done.
func (wst *WebSocketTransport) WaitForClients(ctx context.Context, n int) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if wst.ClientCount() >= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("transport: waiting for %d clients: %w", n, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Send queues data for broadcast to all connected clients.
func (wst *WebSocketTransport) Send(data any) error {
	wst.sendMu.RLock()
	defer wst.sendMu.RUnlock()
	if wst.closed {
		return ErrClosed
	}

	select {
	case wst.broadcast <- data:
	default:
		if n := wst.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Warnf("WebSocketTransport: broadcast queue full, %d messages dropped", n)
		}
	}
	return nil
}

// Close flushes queued messages, disconnects every client and stops the
// server. Calling it more than once is a no-op.
func (wst *WebSocketTransport) Close() error {
	wst.sendMu.Lock()
	if wst.closed {
		wst.sendMu.Unlock()
		return nil
	}
	wst.closed = true
	close(wst.broadcast)
	wst.sendMu.Unlock()

	<-wst.done
	log.Infof("WebSocketTransport: closing server")

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]struct{})
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}
