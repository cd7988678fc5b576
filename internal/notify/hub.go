// Package notify implements the real-time fan-out mechanism: a process-wide
// WebSocket hub attached to the HTTP server. Mutating REST handlers call
// Broadcast after their change has committed; the hub serializes the event
// once and writes it to every currently open socket.
//
// The hub is deliberately not a pub/sub system. There is no subscription
// topic, no delivery confirmation, no queuing, no ordering and no retry: a
// slow or dead client receives nothing, and a client that connects after an
// event never learns about it except by re-fetching the authoritative list.
// Consumers are expected to treat any event of interest as a cache
// invalidation signal, not as a source of truth.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Event is the wire envelope written to every open socket.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types emitted by the REST mutation handlers.
const (
	EventNewPrayer            = "new_prayer"
	EventPrayerSupport        = "prayer_support"
	EventPrayerSupportRemoved = "prayer_support_removed"
	EventNewComment           = "new_comment"
)

// Socket lifecycle. Only open sockets are eligible to receive a broadcast;
// closed is terminal.
const (
	stateConnecting int32 = iota
	stateOpen
	stateClosed
)

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_current",
			Help: "Current number of registered WebSocket connections.",
		},
	)
	wsBroadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_broadcasts_total",
			Help: "Total number of broadcast events by type.",
		},
		[]string{"type"},
	)
	wsDrops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_broadcast_drops_total",
			Help: "Total number of per-socket broadcast writes that failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsBroadcasts, wsDrops)
}

// client wraps one WebSocket connection. writeMu serializes broadcast and
// ping writes on the same underlying conn; state gates broadcast eligibility.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	state   atomic.Int32
}

func (c *client) close() {
	if c.state.Swap(stateClosed) != stateClosed {
		_ = c.conn.Close()
	}
}

// Options configures hub timing and limits.
type Options struct {
	// WriteTimeout is the per-socket write deadline applied to each
	// broadcast and ping write. Values <= 0 default to 5s.
	WriteTimeout time.Duration
	// PingInterval is the cadence of server pings used to detect dead
	// peers. Values <= 0 default to 30s.
	PingInterval time.Duration
	// MaxConnections caps the registry size; 0 disables the cap.
	MaxConnections int
}

// Hub owns the live connection registry and fans events out to it.
//
// The registry is an owned object passed by reference to every mutation
// handler rather than a module-level singleton, so tests can run multiple
// independent hubs. All methods are safe for concurrent use.
type Hub struct {
	opts     Options
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub constructs a Hub ready to accept connections.
func NewHub(opts Options) *Hub {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	return &Hub{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The endpoint is unauthenticated by design; origin checks
			// would only give a false sense of access control here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Len returns the number of registered connections (any state).
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast serializes {type, data} once and writes it to every open socket.
//
// It never blocks the caller beyond the per-socket write deadline and never
// returns an error: a failed write marks that socket closed, drops it from
// the registry, and moves on. Handlers call this after their mutation has
// committed, so the triggering HTTP response is unaffected by any outcome
// here.
func (h *Hub) Broadcast(eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("broadcast marshal failed")
		return
	}
	wsBroadcasts.WithLabelValues(eventType).Inc()

	for _, c := range h.snapshot() {
		if c.state.Load() != stateOpen {
			continue
		}
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
		err := c.conn.WriteMessage(websocket.TextMessage, payload)
		c.writeMu.Unlock()
		if err != nil {
			wsDrops.Inc()
			log.Debug().Err(err).Str("event_type", eventType).Msg("dropping dead socket")
			h.unregister(c)
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and keeps it
// registered until the peer disconnects. Inbound messages are logged and
// otherwise ignored; the steady state is server-to-client only.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.opts.MaxConnections > 0 && h.Len() >= h.opts.MaxConnections {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn}
	c.state.Store(stateConnecting)
	h.register(c)
	c.state.Store(stateOpen)
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("websocket connected")

	done := make(chan struct{})
	go h.pingLoop(c, done)
	h.readLoop(c)
	close(done)

	h.unregister(c)
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("websocket disconnected")
}

// readLoop drains inbound frames until the connection dies. The application
// protocol expects nothing from clients, so payloads are only logged.
func (h *Hub) readLoop(c *client) {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		log.Debug().Bytes("payload", msg).Msg("ignoring inbound websocket message")
	}
}

// pingLoop pings the peer on a fixed cadence so dead connections are
// detected even when no broadcasts occur.
func (h *Hub) pingLoop(c *client, done <-chan struct{}) {
	t := time.NewTicker(h.opts.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.close()
				return
			}
		case <-done:
			return
		}
	}
}

// Close tears down every registered connection. Used on shutdown and in tests.
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	wsConnections.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if ok {
		wsConnections.Dec()
	}
	c.close()
}

// snapshot copies the registry so Broadcast can iterate without holding the
// lock across socket writes.
func (h *Hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}
