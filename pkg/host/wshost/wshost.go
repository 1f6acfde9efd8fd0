// Package wshost implements host.Host over a WebSocket connection to a
// browser thin client. The thin client forwards location changes
// (intercepted link clicks, popstate) as JSON messages; push/replace
// commands flow back so the browser history stays the source of truth.
package wshost

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wayfind-dev/wayfind/pkg/host"
)

// Message is the wire format in both directions.
//
// Inbound types: "current" (seed location after connect), "navigate"
// (intercepted link click), "pop" (history traversal). Outbound types:
// "push", "replace".
type Message struct {
	Type  string          `json:"type"`
	URL   string          `json:"url"`
	State json.RawMessage `json:"state,omitempty"`
}

// Config configures a WebSocket host.
type Config struct {
	// ReadTimeout bounds each read from the client. Default: 60s.
	ReadTimeout time.Duration

	// WriteTimeout bounds each write to the client. Default: 10s.
	WriteTimeout time.Duration

	// Logger is the diagnostic logger. Default: slog.Default().
	Logger *slog.Logger
}

// Option configures a WebSocket host.
type Option func(*Config)

// WithReadTimeout sets the per-read deadline.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.ReadTimeout = d }
}

// WithWriteTimeout sets the per-write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) { c.WriteTimeout = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// Host drives a router from a browser over one WebSocket connection.
//
// All callbacks are delivered on the ReadLoop goroutine, which is the
// single goroutine the attached router must be driven from. Push and
// Replace are expected to be called from that goroutine too (they are,
// when navigation happens inside handlers).
type Host struct {
	conn   *websocket.Conn
	config Config

	current   host.Location
	listeners map[int]func(host.Location)
	nextID    int
}

// New wraps an accepted WebSocket connection. The initial location is
// "/" until the client's "current" message arrives.
func New(conn *websocket.Conn, opts ...Option) *Host {
	config := Config{
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Host{
		conn:      conn,
		config:    config,
		current:   host.Parse("/"),
		listeners: map[int]func(host.Location){},
	}
}

// Location returns the last location reported by, or sent to, the
// client.
func (h *Host) Location() host.Location {
	return h.current
}

// Push records url as current and tells the client to pushState it.
func (h *Host) Push(url string) {
	h.current = host.Parse(url)
	h.send(Message{Type: "push", URL: url})
}

// Replace records url as current and tells the client to replaceState it.
func (h *Host) Replace(url string) {
	h.current = host.Parse(url)
	h.send(Message{Type: "replace", URL: url})
}

// Listen registers fn for client-initiated location changes.
func (h *Host) Listen(fn func(host.Location)) (stop func()) {
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

// ReadLoop reads client messages until the connection closes or a read
// fails. It blocks; run the router from the callbacks it delivers.
func (h *Host) ReadLoop() error {
	for {
		h.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))

		_, raw, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.config.Logger.Error("wshost: read error", "error", err)
				return err
			}
			return nil
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.config.Logger.Error("wshost: message decode error", "error", err)
			continue
		}

		h.handle(msg)
	}
}

// handle applies one inbound message.
func (h *Host) handle(msg Message) {
	switch msg.Type {
	case "current":
		// Seed only; the client reports where it already is.
		h.current = locationFrom(msg)

	case "navigate", "pop":
		h.current = locationFrom(msg)
		for _, fn := range h.listeners {
			fn(h.current)
		}

	default:
		h.config.Logger.Warn("wshost: unknown message type", "type", msg.Type)
	}
}

// locationFrom builds a Location, decoding the state payload if present.
func locationFrom(msg Message) host.Location {
	loc := host.Parse(msg.URL)
	if len(msg.State) > 0 {
		var state any
		if err := json.Unmarshal(msg.State, &state); err == nil {
			loc.State = state
		}
	}
	return loc
}

// send writes one outbound message, logging failures. A broken
// connection surfaces through ReadLoop; navigation itself never fails on
// a write error.
func (h *Host) send(msg Message) {
	h.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	if err := h.conn.WriteJSON(msg); err != nil {
		h.config.Logger.Error("wshost: write error", "type", msg.Type, "error", err)
	}
}
