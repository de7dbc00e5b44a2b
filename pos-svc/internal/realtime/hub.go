package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrUnknownConnection = errors.New("unknown connection")

type TokenVerifier interface {
	Verify(token string) (domain.Actor, error)
}

type Options struct {
	SendBuffer   int
	PingInterval time.Duration
	WriteWait    time.Duration
	ReadLimit    int64

	// AllowedOrigins lists browser origins allowed to connect. Empty or "*"
	// allows any; requests without an Origin header are native terminals.
	AllowedOrigins []string
}

func DefaultOptions() Options {
	return Options{
		SendBuffer:   64,
		PingInterval: 30 * time.Second,
		WriteWait:    10 * time.Second,
		ReadLimit:    4096,
	}
}

// Hub fans committed events out to the websocket terminals of one tenant.
// A terminal only ever receives events of the tenant named in its token.
type Hub struct {
	verifier TokenVerifier
	upgrader websocket.Upgrader
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	tenants map[string]map[string]*Conn
	conns   map[string]*Conn
}

func NewHub(verifier TokenVerifier, opts Options, logger *zap.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	def := DefaultOptions()
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = def.PingInterval
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = def.WriteWait
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = def.ReadLimit
	}
	return &Hub{
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		opts:    opts,
		logger:  logger,
		metrics: m,
		tenants: make(map[string]map[string]*Conn),
		conns:   make(map[string]*Conn),
	}
}

// Conn is one terminal connection.
type Conn struct {
	ID       string
	TenantID string
	StaffID  string

	ws        *websocket.Conn
	send      chan []byte
	alive     atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// ServeHTTP verifies the identity token before upgrading. The token comes
// from the Authorization header or, for browsers, the token query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearer(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	actor, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	c := &Conn{
		ID:       uuid.NewString(),
		TenantID: actor.TenantID,
		StaffID:  actor.StaffID,
		ws:       ws,
		send:     make(chan []byte, h.opts.SendBuffer),
		done:     make(chan struct{}),
	}
	c.alive.Store(true)
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.ToLower(origin)]
	}
}

func bearer(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (h *Hub) register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.tenants[c.TenantID]
	if !ok {
		set = make(map[string]*Conn)
		h.tenants[c.TenantID] = set
	}
	set[c.ID] = c
	h.conns[c.ID] = c
	h.metrics.HubConnections.Inc()
	h.logger.Info("terminal connected",
		zap.String("tenant_id", c.TenantID), zap.String("staff_id", c.StaffID), zap.String("conn_id", c.ID))
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	if _, ok := h.conns[c.ID]; ok {
		delete(h.conns, c.ID)
		if set := h.tenants[c.TenantID]; set != nil {
			delete(set, c.ID)
			if len(set) == 0 {
				delete(h.tenants, c.TenantID)
			}
		}
		h.metrics.HubConnections.Dec()
		h.logger.Info("terminal disconnected", zap.String("tenant_id", c.TenantID), zap.String("conn_id", c.ID))
	}
	h.mu.Unlock()
	c.close()
}

// readPump only watches for pongs and disconnects; terminals do not send
// commands over the socket.
func (h *Hub) readPump(c *Conn) {
	defer h.unregister(c)
	c.ws.SetReadLimit(h.opts.ReadLimit)
	c.ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns all writes on the socket. A connection that has not
// answered the previous ping by the next tick is dropped.
func (h *Hub) writePump(c *Conn) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer func() {
		ticker.Stop()
		h.unregister(c)
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if !c.alive.Swap(false) {
				h.logger.Info("terminal missed heartbeat", zap.String("conn_id", c.ID))
				return
			}
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.opts.WriteWait)); err != nil {
				return
			}
		}
	}
}

// Publish broadcasts to the tenant's terminals. It never blocks on a slow
// terminal.
func (h *Hub) Publish(_ context.Context, tenantID string, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Name, err)
	}
	h.BroadcastRaw(tenantID, data)
	return nil
}

// Broadcast returns how many terminals the event was queued for.
func (h *Hub) Broadcast(tenantID string, event domain.Event) (int, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("marshal event %s: %w", event.Name, err)
	}
	return h.BroadcastRaw(tenantID, data), nil
}

// BroadcastRaw queues an encoded event. Terminals whose buffer is full are
// disconnected; they resync on reconnect.
func (h *Hub) BroadcastRaw(tenantID string, data []byte) int {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.tenants[tenantID]))
	for _, c := range h.tenants[tenantID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	queued := 0
	for _, c := range targets {
		if h.enqueue(c, data) {
			queued++
		}
	}
	return queued
}

func (h *Hub) SendToConnection(connID string, event domain.Event) error {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return ErrUnknownConnection
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Name, err)
	}
	if !h.enqueue(c, data) {
		return fmt.Errorf("connection %s: send buffer full", connID)
	}
	return nil
}

func (h *Hub) enqueue(c *Conn, data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		h.logger.Warn("dropping slow terminal", zap.String("tenant_id", c.TenantID), zap.String("conn_id", c.ID))
		go h.unregister(c)
		return false
	}
}

func (h *Hub) Connections(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tenants[tenantID])
}

// Close disconnects every terminal.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.unregister(c)
	}
}
