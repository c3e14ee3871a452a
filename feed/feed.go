// Package feed streams race events to spectators over websockets.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/milk9111/crashthatcar/ecs/system"
	"github.com/milk9111/crashthatcar/logger"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	readTimeout  = 90 * time.Second
	pingInterval = 20 * time.Second
)

// Envelope is the wire format of every message sent to a spectator.
type Envelope struct {
	Type     string        `json:"type"`
	ServerMS int64         `json:"server_ms"`
	Event    *system.Event `json:"event,omitempty"`
	Message  string        `json:"message,omitempty"`
}

type inbound struct {
	Type string `json:"type"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected spectator. Slow spectators drop
// messages rather than stall the game loop.
type Hub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func New(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler serves /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

// ListenAndServe serves the hub on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.log.Infow("event feed listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Publish sends each event to every spectator.
func (h *Hub) Publish(events []system.Event) {
	if len(events) == 0 {
		return
	}
	now := time.Now().UTC().UnixMilli()
	payloads := make([][]byte, 0, len(events))
	for i := range events {
		payload, err := json.Marshal(Envelope{Type: "event", ServerMS: now, Event: &events[i]})
		if err != nil {
			h.log.Warnw("marshal event", "kind", events[i].Kind, "error", err)
			continue
		}
		payloads = append(payloads, payload)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		for _, payload := range payloads {
			select {
			case c.send <- payload:
			default:
			}
		}
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": h.Clients()})
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	h.log.Infow("spectator connected", "remote", r.RemoteAddr)
	h.reply(c, Envelope{Type: "welcome", Message: "connected"})

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) reply(c *client, env Envelope) {
	env.ServerMS = time.Now().UTC().UnixMilli()
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugw("spectator read", "error", err)
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			h.reply(c, Envelope{Type: "error", Message: "bad_payload"})
			continue
		}
		switch in.Type {
		case "ping":
			h.reply(c, Envelope{Type: "pong"})
		default:
			h.reply(c, Envelope{Type: "error", Message: "unsupported_message_type"})
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
	h.log.Infow("spectator disconnected")
}
