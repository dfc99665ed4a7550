// Package transport is the /ws HTTP upgrade adapter (spec.md §6.2).
// Grounded on the teacher's internal/api/websocket.go connection-limiting
// and origin-check shape, but the wire itself is binary and per-client:
// there is no broadcast hub, because every client's UPDATE frame differs
// (its own visible set). The orchestrator pushes frames directly into
// each session's Send channel; this package only drains them onto the
// socket and decodes inbound frames back into session state.
package transport

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"losgame/internal/api"
	"losgame/internal/broadcast"
	"losgame/internal/engine"
	"losgame/internal/session"
)

const (
	// MaxConnectionsTotal mirrors the teacher's DoS-protection ceiling.
	MaxConnectionsTotal = 500
	// MaxConnectionsPerIP mirrors the teacher's per-IP ceiling.
	MaxConnectionsPerIP = 10

	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if api.IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("websocket connection rejected from origin: %s", origin)
		api.RecordConnectionRejected("origin")
		return false
	},
}

// Handler wires the /ws endpoint to a running Orchestrator.
type Handler struct {
	orchestrator *engine.Orchestrator
	limiter      *api.WebSocketRateLimiter

	connMu sync.Mutex
	total  int
}

// New builds a transport Handler bound to orchestrator.
func New(orchestrator *engine.Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		limiter:      api.NewWebSocketRateLimiter(MaxConnectionsPerIP),
	}
}

// ServeHTTP upgrades the request, registers a session with the
// orchestrator, and runs that connection's reader/writer loops until the
// socket closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := api.GetClientIP(r)

	h.connMu.Lock()
	total := h.total
	h.connMu.Unlock()
	if total >= MaxConnectionsTotal {
		log.Printf("websocket connection rejected: total limit reached (%d)", total)
		api.RecordConnectionRejected("ws_total_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.limiter.Allow(ip) {
		log.Printf("websocket connection rejected from %s: per-IP limit reached", ip)
		api.RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		h.limiter.Release(ip)
		return
	}

	h.connMu.Lock()
	h.total++
	h.connMu.Unlock()

	sess, cfgFrame, err := h.orchestrator.Connect()
	if err != nil {
		log.Printf("session setup failed for %s: %v", ip, err)
		conn.Close()
		h.release(ip)
		return
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, cfgFrame); err != nil {
		log.Printf("failed to send CONFIG to %s: %v", ip, err)
		h.teardown(conn, sess, ip)
		return
	}

	go h.writeLoop(conn, sess, ip)
	h.readLoop(conn, sess, ip)
}

// writeLoop drains the session's outbound frame channel onto the socket.
// It exits when the session is closed by readLoop.
func (h *Handler) writeLoop(conn *websocket.Conn, sess *session.ClientSession, ip string) {
	for frame := range sess.Send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}

// readLoop decodes inbound INPUT/SHOOT/TOGGLE_MODE frames and applies
// them to the session until the socket closes, then tears the session
// down immediately (spec.md §5: teardown on close is immediate).
func (h *Handler) readLoop(conn *websocket.Conn, sess *session.ClientSession, ip string) {
	defer h.teardown(conn, sess, ip)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		switch data[0] {
		case broadcast.TypeInput:
			intent, err := broadcast.DecodeInput(data)
			if err != nil {
				continue
			}
			sess.SetMoveIntent(intent)
		case broadcast.TypeShoot:
			shooting, err := broadcast.DecodeShoot(data)
			if err != nil {
				continue
			}
			sess.SetShooting(shooting)
		case broadcast.TypeToggleMode:
			losMode, err := broadcast.DecodeToggleMode(data)
			if err != nil {
				continue
			}
			sess.SetLOSMode(losMode)
		}
	}
}

// teardown is invoked exactly once per connection: from readLoop's defer,
// or directly from ServeHTTP when the CONFIG write fails.
// Disconnect takes the orchestrator lock before removing the session from
// its map, which is the same lock tick() holds while iterating sessions to
// send frames - so by the time Disconnect returns, no further send to
// sess.Send can race with closing it here, which in turn lets writeLoop
// exit instead of leaking a goroutine blocked on an empty channel.
func (h *Handler) teardown(conn *websocket.Conn, sess *session.ClientSession, ip string) {
	h.orchestrator.Disconnect(sess.ID)
	close(sess.Send)
	conn.Close()
	h.release(ip)
}

func (h *Handler) release(ip string) {
	h.limiter.Release(ip)
	h.connMu.Lock()
	h.total--
	h.connMu.Unlock()
}
