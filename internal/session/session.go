// Package session owns the per-connection ClientSession: the mutable
// state a transport adapter and the tick orchestrator share for exactly
// one connected player (spec.md §3). Sessions are created on connect and
// destroyed on disconnect; nothing outlives the connection.
package session

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"losgame/internal/sim"
	"losgame/internal/world"
)

// ClientSession is the mutable per-connection state the orchestrator
// reads every tick. The transport adapter mutates MoveIntent, Shooting
// and LOSMode from inbound frames; the orchestrator mutates GraceMap and
// LastShotMilli and owns writing to Send.
type ClientSession struct {
	ID           uuid.UUID
	Entity       *world.Entity
	LOSMode      bool
	ViewDistance float64

	mu            sync.Mutex
	MoveIntent    sim.MoveIntent
	Shooting      bool
	LastShotMilli int64

	// GraceMap tracks entityId -> ticksRemaining for the visibility grace
	// window (spec.md §4.3). Owned exclusively by the broadcast package;
	// the orchestrator never reads it directly.
	GraceMap map[uint32]int

	// Send is the outbound frame channel the transport adapter drains.
	// Buffered to 1: the orchestrator never blocks on a slow client, it
	// drops the stale frame and writes the newest one instead. Closed by
	// the transport adapter on disconnect, after the orchestrator has
	// removed the session from its map.
	Send chan []byte
}

// New creates a session wrapping a freshly spawned entity. viewDistance
// defaults to config.ViewDistance by convention of the caller.
func New(entity *world.Entity, viewDistance float64) *ClientSession {
	return &ClientSession{
		ID:           uuid.New(),
		Entity:       entity,
		ViewDistance: viewDistance,
		GraceMap:     make(map[uint32]int),
		Send:         make(chan []byte, 1),
	}
}

// SetMoveIntent records the last received INPUT message (spec.md §4.5).
// Non-finite movement becomes zero movement; a non-finite yaw or pitch
// keeps the previously recorded orientation.
func (s *ClientSession) SetMoveIntent(intent sim.MoveIntent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clean := intent.Sanitize()
	if math.IsNaN(intent.Yaw) || math.IsInf(intent.Yaw, 0) {
		clean.Yaw = s.MoveIntent.Yaw
	}
	if math.IsNaN(intent.Pitch) || math.IsInf(intent.Pitch, 0) {
		clean.Pitch = s.MoveIntent.Pitch
	}
	s.MoveIntent = clean
}

// Intent returns the last recorded movement intent.
func (s *ClientSession) Intent() sim.MoveIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.MoveIntent
}

// SetShooting records the client's held SHOOT state.
func (s *ClientSession) SetShooting(shooting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Shooting = shooting
}

// IsShooting reports whether SHOOT is currently held.
func (s *ClientSession) IsShooting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Shooting
}

// SetLOSMode toggles the client's visibility mode (TOGGLE_MODE).
func (s *ClientSession) SetLOSMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LOSMode = on
}

// Mode reports the client's current visibility mode.
func (s *ClientSession) Mode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LOSMode
}

// TrySend pushes an encoded frame to the client without blocking. If the
// channel already holds an unsent frame, it is dropped in favor of the
// newer one: a client slow enough to fall a tick behind gets the freshest
// state rather than a growing backlog (spec.md §5 "no tick-internal
// operation may block").
func (s *ClientSession) TrySend(frame []byte) {
	select {
	case s.Send <- frame:
		return
	default:
	}
	select {
	case <-s.Send:
	default:
	}
	select {
	case s.Send <- frame:
	default:
	}
}
