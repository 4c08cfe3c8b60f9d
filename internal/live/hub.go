// Package live pushes committed match states to websocket scoreboard
// clients. Every frame is a full state snapshot, never a diff, so a client
// that drops frames or reconnects is always one message away from current.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"padel-score-service/internal/domain/match"
	"padel-score-service/internal/logging"
	"padel-score-service/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 8
)

// EventMatchState labels every frame the hub writes.
const EventMatchState = "MATCH_STATE"

// Event is the JSON envelope written to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload match.State `json:"payload"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans committed match states out to connected websocket clients. It
// remembers the latest frame and replays it to newcomers, so a scoreboard is
// live immediately after connecting.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Recorder

	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	clients map[*client]bool
	last    []byte
}

// NewHub returns a hub that accepts connections from the given origins. Call
// Run in its own goroutine before serving connections.
func NewHub(logger *slog.Logger, recorder *metrics.Recorder, allowedOrigins []string) *Hub {
	return &Hub{
		logger:  logger,
		metrics: recorder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		clients:    make(map[*client]bool),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			allowAll = true
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		return set[origin]
	}
}

// Run owns the client set until Stop. Send channels are closed only here,
// under the lock, so a broadcast never hits a closed channel.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			last := h.last
			count := len(h.clients)
			h.mu.Unlock()

			h.metrics.WSClientConnected()
			logging.Debug(h.logger, "scoreboard client connected", logging.FieldCount, count)
			if last != nil {
				select {
				case c.send <- last:
				default:
				}
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.metrics.WSClientDisconnected()
			logging.Debug(h.logger, "scoreboard client disconnected", logging.FieldCount, count)

		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
				h.metrics.WSClientDisconnected()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// BroadcastState encodes st and hands it to every connected client. A client
// whose send buffer is full misses the frame; the next one carries the full
// state anyway. Safe to call from the scoring path: it never blocks.
func (h *Hub) BroadcastState(st match.State) {
	payload, err := json.Marshal(Event{Type: EventMatchState, Payload: st})
	if err != nil {
		logging.Error(h.logger, "live frame not encodable", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = payload
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			logging.Debug(h.logger, "live frame dropped, client backed up")
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(h.logger, "websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames; the feed is one-way and reads exist only
// to notice disconnects and answer pings.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
