package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/weather"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Spectators only send control frames.
	maxMessageSize = 512

	sendBuffer      = 64
	broadcastBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StepMessage is what spectators receive after every step.
type StepMessage struct {
	Type    string            `json:"type"`
	Day     int               `json:"day"`
	Phase   engine.Phase      `json:"phase"`
	Weather weather.Kind      `json:"weather"`
	Hazard  string            `json:"hazard,omitempty"`
	Alive   int               `json:"alive"`
	Fallen  []string          `json:"fallen,omitempty"`
	Logs    []engine.LogEntry `json:"logs"`
	Winner  string            `json:"winner,omitempty"`
}

// NewStepMessage describes the step from prev to next: the log lines it
// added and the tributes it killed.
func NewStepMessage(prev, next *engine.GameState) StepMessage {
	m := StepMessage{
		Type:    "step",
		Day:     next.Day,
		Phase:   next.Phase,
		Weather: next.Weather,
		Alive:   next.AliveCount(),
		Logs:    []engine.LogEntry{},
	}
	if next.Hazard != nil {
		m.Hazard = next.Hazard.Kind.String()
	}
	if len(next.Logs) > len(prev.Logs) {
		m.Logs = next.Logs[len(prev.Logs):]
	}
	for _, tr := range next.Tributes {
		if before := prev.Tribute(tr.ID); !tr.Alive && before != nil && before.Alive {
			m.Fallen = append(m.Fallen, tr.Name)
		}
	}
	if w := next.Winner(); w != nil {
		m.Winner = w.Name
	}
	return m
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans step messages out to connected spectators.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	mu    sync.Mutex
	count int
}

// NewHub initializes an idle hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Run handles registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.setCount()
			slog.Info("stream hub stopped")
			return
		case c := <-h.register:
			h.clients[c] = true
			h.setCount()
			slog.Info("spectator connected", "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.setCount()
				slog.Info("spectator disconnected", "clients", len(h.clients))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.setCount()
		}
	}
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// Broadcast queues a message for every spectator. It drops the message
// rather than block a full queue.
func (h *Hub) Broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode stream message", "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		slog.Warn("stream queue full, message dropped")
	}
}

// Observe is a runner step hook.
func (h *Hub) Observe(prev, next *engine.GameState) {
	h.Broadcast(NewStepMessage(prev, next))
}

// serve upgrades the request and pumps messages until the peer leaves.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, hello any) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if payload, err := json.Marshal(hello); err == nil {
		c.send <- payload
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

// readPump drains control frames so pongs and closes are seen.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("spectator read error", "error", err)
			}
			return
		}
	}
}

// writePump sends queued messages, one per frame, and keeps the peer alive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
