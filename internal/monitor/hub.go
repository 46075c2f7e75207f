package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/banshee-data/pathviz/internal/session"
	"github.com/banshee-data/pathviz/internal/timeutil"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Hub fans playback frames out to websocket subscribers. It implements
// session.FramePublisher; Publish never blocks, and a subscriber that falls
// behind loses frames.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	origins []string
	closed  bool
	clock   timeutil.Clock
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	ping timeutil.Ticker
}

// NewHub returns a hub accepting websocket connections from the given origin
// patterns. Same-origin connections are always accepted. Keepalive pings are
// paced by clock; nil means the wall clock.
func NewHub(clock timeutil.Clock, originPatterns ...string) *Hub {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Hub{
		clients: make(map[string]*client),
		origins: originPatterns,
		clock:   clock,
	}
}

var _ session.FramePublisher = (*Hub)(nil)

// Publish implements session.FramePublisher.
func (h *Hub) Publish(ev session.FrameEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		opsf("marshal frame: %v", err)
		return
	}
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			tracef("client %s send buffer full, dropping frame %d", c.id, ev.Cursor)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams frames until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		opsf("websocket accept: %v", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		ping: h.clock.NewTicker(pingPeriod),
	}
	if !h.register(c) {
		c.ping.Stop()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.unregister(c)
	diagf("client %s connected from %s", c.id, r.RemoteAddr)

	// Subscribers never send; CloseRead handles control frames and cancels
	// ctx when the peer closes.
	ctx := conn.CloseRead(r.Context())
	c.writePump(ctx)
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	diagf("client %s disconnected", c.id)
}

func (c *client) writePump(ctx context.Context) {
	defer func() {
		c.ping.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				tracef("client %s write: %v", c.id, err)
				return
			}
		case <-c.ping.C():
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				tracef("client %s ping: %v", c.id, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
