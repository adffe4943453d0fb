// Package monitor serves a websocket feed of mapper activity.
//
// Messages are JSON text frames with an envelope {type, ts, data}. A client
// receives "state_init" on connect, then "config_switched" and "action"
// messages as they happen. Slow clients are disconnected when their send
// buffer fills so the mapper never blocks on the feed.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/output"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second
)

// State is the "state_init" payload.
type State struct {
	Device  string   `json:"device"`
	Active  string   `json:"active"`
	Configs []string `json:"configs"`
}

type configSwitched struct {
	Path string `json:"path"`
}

type actionData struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`
}

type envelope struct {
	Type string     `json:"type"`
	Ts   *time.Time `json:"ts,omitempty"`
	Data any        `json:"data,omitempty"`
}

// Config sizes the hub queues. Zero values pick defaults.
type Config struct {
	SendBuf      int
	BroadcastBuf int
}

// Hub tracks connected clients and fans messages out to them. It satisfies
// mapping.Observer; observer calls never block.
type Hub struct {
	logger    *slog.Logger
	broadcast chan []byte
	sendBuf   int

	mu      sync.Mutex
	clients map[*client]struct{}
	state   State
}

func NewHub(logger *slog.Logger, cfg Config) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SendBuf <= 0 {
		cfg.SendBuf = 32
	}
	if cfg.BroadcastBuf <= 0 {
		cfg.BroadcastBuf = 128
	}
	return &Hub{
		logger:    logger,
		broadcast: make(chan []byte, cfg.BroadcastBuf),
		sendBuf:   cfg.SendBuf,
		clients:   make(map[*client]struct{}),
	}
}

// SetState replaces the snapshot sent to new clients.
func (h *Hub) SetState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run fans out broadcasts until ctx is canceled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case msg := <-h.broadcast:
			var slow []*client
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()
			for _, c := range slow {
				h.remove(c, "slow client")
			}
		}
	}
}

func (h *Hub) remove(c *client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Info("monitor client disconnected", "remote_addr", c.remoteAddr, "reason", reason, "clients", n)
	}
}

func (h *Hub) publish(typ string, data any) {
	now := time.Now().UTC()
	msg, err := json.Marshal(envelope{Type: typ, Ts: &now, Data: data})
	if err != nil {
		h.logger.Warn("monitor marshal failed", "type", typ, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("monitor broadcast queue full, dropping message", "type", typ)
	}
}

func (h *Hub) OnEvent(input.Event) {}

func (h *Hub) OnAction(a output.Action) {
	h.publish("action", actionData{Kind: a.Kind().String(), Action: a.String()})
}

func (h *Hub) OnConfigSwitch(path string) {
	h.mu.Lock()
	h.state.Active = path
	h.mu.Unlock()
	h.publish("config_switched", configSwitched{Path: path})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades the request, registers the client and queues state_init.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("monitor upgrade failed", "error", err)
		return
	}
	c := &client{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, h.sendBuf),
		remoteAddr: r.RemoteAddr,
	}

	now := time.Now().UTC()
	h.mu.Lock()
	init, err := json.Marshal(envelope{Type: "state_init", Ts: &now, Data: h.state})
	if err == nil {
		c.send <- init
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("monitor client connected", "remote_addr", c.remoteAddr, "clients", n)

	// The request context ends when this handler returns; the pumps live
	// until the connection fails or the hub closes it.
	go c.writePump()
	go c.readPump()
}

// ListenAndServe serves the feed on addr at /ws until ctx is canceled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	h.logger.Info("monitor listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	closeOnce  sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.remove(c, "write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.remove(c, "ping error")
				return
			}
		}
	}
}

// readPump discards client messages and unregisters on disconnect.
func (c *client) readPump() {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.hub.remove(c, "closed")
			return
		}
	}
}
