package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/telemetry"
)

// Message types pushed to clients.
const (
	TypeState = "state"
	TypeShare = "share"
	TypeCall  = "call"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SharePayload carries the text the client should place on its share sheet.
type SharePayload struct {
	Text string `json:"text"`
}

// CallPayload asks the client to open its dialer.
type CallPayload struct {
	Number string `json:"number"`
	URI    string `json:"uri"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// WSManager fans published states out to connected browsers and relays the
// share and call actions to them.
type WSManager struct {
	reconciler     ports.Reconciler
	allowedOrigins []string
	upgrader       websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

var (
	_ ports.StateObserver = (*WSManager)(nil)
	_ ports.Sharer        = (*WSManager)(nil)
	_ ports.Dialer        = (*WSManager)(nil)
)

// NewWSManager creates a manager. Requests without an Origin header are always accepted.
func NewWSManager(reconciler ports.Reconciler, allowedOrigins []string) *WSManager {
	m := &WSManager{
		reconciler:     reconciler,
		allowedOrigins: allowedOrigins,
		clients:        make(map[*client]struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}
	return m
}

func (m *WSManager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(m.allowedOrigins, origin) {
		return true
	}
	slog.Warn("WebSocket: rejected origin", "origin", origin)
	return false
}

// HandleWebSocket upgrades the request and immediately sends the current state.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	// Registration and the initial frame share the lock with broadcast, so a
	// publish racing the connect is queued after the state read here.
	m.mu.Lock()
	m.clients[c] = struct{}{}
	if data, err := encode(TypeState, m.reconciler.State().View()); err == nil {
		c.send <- data
	}
	count := len(m.clients)
	m.mu.Unlock()
	telemetry.WSClients.Set(float64(count))

	slog.Info("WebSocket connected", "remote", r.RemoteAddr, "clients", count)

	go m.writeLoop(c)
	go m.readLoop(c, r.RemoteAddr)
}

func (m *WSManager) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			m.remove(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (m *WSManager) readLoop(c *client, remote string) {
	defer func() {
		m.remove(c)
		slog.Info("WebSocket disconnected", "remote", remote)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *WSManager) remove(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(c)
}

func (m *WSManager) removeLocked(c *client) {
	if _, ok := m.clients[c]; !ok {
		return
	}
	delete(m.clients, c)
	close(c.send)
	telemetry.WSClients.Set(float64(len(m.clients)))
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Close disconnects every client.
func (m *WSManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		m.removeLocked(c)
	}
}

// OnStateChanged pushes the state to every client without blocking; clients
// whose buffers are full are dropped.
func (m *WSManager) OnStateChanged(ctx context.Context, state domain.ViewState) {
	data, err := encode(TypeState, state.View())
	if err != nil {
		slog.Error("WebSocket: encode state", "error", err)
		return
	}
	m.broadcast(data)
}

// Share sends the share text to connected clients.
func (m *WSManager) Share(ctx context.Context, text string) error {
	return m.deliver(TypeShare, SharePayload{Text: text})
}

// Dial asks connected clients to open the dialer for number.
func (m *WSManager) Dial(ctx context.Context, number string) error {
	return m.deliver(TypeCall, CallPayload{Number: number, URI: domain.TelURI(number)})
}

func (m *WSManager) deliver(kind string, payload interface{}) error {
	data, err := encode(kind, payload)
	if err != nil {
		return err
	}
	if m.broadcast(data) == 0 {
		return domain.ErrNoClients
	}
	return nil
}

func (m *WSManager) broadcast(data []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	delivered := 0
	for c := range m.clients {
		select {
		case c.send <- data:
			delivered++
		default:
			slog.Warn("WebSocket: client too slow, dropping")
			m.removeLocked(c)
		}
	}
	return delivered
}

func encode(kind string, payload interface{}) ([]byte, error) {
	return json.Marshal(WSMessage{Type: kind, Payload: payload})
}
